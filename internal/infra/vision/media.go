// internal/infra/vision/media.go
package vision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxMediaBytes caps downloads; WhatsApp images are well below this.
const maxMediaBytes = 10 << 20

// MediaFetcher downloads inbound media from the messaging provider, using basic
// auth when credentials are configured (Twilio media URLs require them).
type MediaFetcher struct {
	username   string
	password   string
	httpClient *http.Client
}

func NewMediaFetcher(username, password string, timeout time.Duration) *MediaFetcher {
	return &MediaFetcher{
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the body and content type of the media at url.
func (f *MediaFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("media request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media download failed: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read media: %w", err)
	}
	if len(data) > maxMediaBytes {
		return nil, "", fmt.Errorf("media larger than %d bytes", maxMediaBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
