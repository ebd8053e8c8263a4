// internal/infra/vision/gemini.go
package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const riskPrompt = `You are a disaster expert. Analyze this image.
1. Is there a disaster risk (Flood, Drought, Landslide)?
2. If yes, how severe is it (Low, Medium, Critical)?
3. Give 1 sentence of safety advice.
If it's just a random photo, say "I don't see any climate risks here."`

// ErrEmptyImage is returned before any API call when there is nothing to analyze.
var ErrEmptyImage = errors.New("image is empty")

// GeminiAnalyzer describes disaster risk in a photo with a Gemini vision model.
type GeminiAnalyzer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, modelName string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: client.GenerativeModel(modelName)}, nil
}

// AnalyzeImage returns the model's plain-text assessment of the image.
func (g *GeminiAnalyzer) AnalyzeImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(riskPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned from AI")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("response part is not text, received %T", resp.Candidates[0].Content.Parts[0])
	}
	return out, nil
}

// Close releases the underlying client.
func (g *GeminiAnalyzer) Close() error {
	return g.client.Close()
}
