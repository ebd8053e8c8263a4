// internal/app/chat_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geoguard/internal/domain/risk"
	"geoguard/internal/domain/sign"
	"geoguard/internal/domain/zone"
	"geoguard/internal/infra/observability"

	"github.com/sirupsen/logrus"
)

const chatWelcomeText = "🌍 *Welcome to GeoGuard Bot*\n\n" +
	"I can help you analyze risks.\n" +
	"📸 *Send me a photo* of a river, farm, or crack to analyze flood/drought risk.\n" +
	"📍 Or name your area (e.g. \"Kisumu\") for the live weather status.\n\n" +
	"Or type:\n" +
	"1️⃣ for Weather Forecast\n" +
	"2️⃣ for Asili Smart Info"

const (
	chatHelpText       = "I didn't catch that. Type *Hello* to start or send a Photo! 📸"
	visionFallbackText = "⚠️ Sorry, the AI is having a nap. Please try again in 1 minute."
	visionDisabledText = "📸 Photo analysis is switched off right now. Type *Hello* to see what I can do."
	visionTimeout      = 45 * time.Second
)

var greetingWords = []string{"hello", "hi", "hey", "start", "menu", "habari", "jambo"}

// markdownEscaper neutralizes user text echoed into a Telegram Markdown reply.
var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// MediaLoader fetches the attachment of an inbound message lazily, so text-only
// messages never touch the network.
type MediaLoader func(ctx context.Context) (data []byte, mimeType string, err error)

// InboundMessage is a channel-neutral chat message.
type InboundMessage struct {
	Body   string
	Sender string
	Media  MediaLoader // nil when the message carries no attachment
}

// ImageAnalyzer describes climate risk visible in a photo.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, mimeType string, data []byte) (string, error)
}

// ChatService answers free-form messages from the WhatsApp webhook and the Telegram bot.
type ChatService struct {
	registry    *zone.Registry
	glossary    *sign.Glossary
	forecasts   *ForecastService
	analyzer    ImageAnalyzer // nil disables photo analysis
	defaultZone zone.Zone
	location    *time.Location
	metrics     *observability.Metrics
	log         *logrus.Entry
}

func NewChatService(
	registry *zone.Registry,
	glossary *sign.Glossary,
	forecasts *ForecastService,
	analyzer ImageAnalyzer,
	defaultZone zone.ID,
	location *time.Location,
	metrics *observability.Metrics,
	log *logrus.Entry,
) (*ChatService, error) {
	z, ok := registry.Lookup(defaultZone)
	if !ok {
		return nil, fmt.Errorf("default chat zone %q is not in the registry", defaultZone)
	}
	if location == nil {
		location = time.UTC
	}
	return &ChatService{
		registry:    registry,
		glossary:    glossary,
		forecasts:   forecasts,
		analyzer:    analyzer,
		defaultZone: z,
		location:    location,
		metrics:     metrics,
		log:         log,
	}, nil
}

// Reply returns the text to send back. Failures are turned into friendly text, never errors.
func (s *ChatService) Reply(ctx context.Context, msg InboundMessage) string {
	logCtx := s.log.WithField("sender", msg.Sender)

	if msg.Media != nil {
		s.route("media")
		return s.analyzeMedia(ctx, msg.Media, logCtx)
	}

	text := strings.TrimSpace(msg.Body)
	normalized := zone.Normalize(text)

	if isGreeting(normalized) {
		s.route("greeting")
		return chatWelcomeText
	}

	matchedSign, hasSign := s.glossary.Match(text)
	if z, ok := s.registry.MatchAlias(text); ok {
		s.route("zone")
		if hasSign {
			return signPrefix(matchedSign) + s.forecastText(ctx, z, matchedSign.Hazard)
		}
		return s.forecastText(ctx, z, z.PrimaryHazard())
	}

	// Without a place the sign is checked against the default zone.
	if hasSign {
		s.route("sign")
		return signPrefix(matchedSign) + s.forecastText(ctx, s.defaultZone, matchedSign.Hazard) +
			fmt.Sprintf("\n\n📍 Name your area (e.g. \"%s in Kisumu\") to check it there.", strings.ToLower(matchedSign.Name))
	}

	switch text {
	case "1":
		s.route("menu")
		return s.forecastText(ctx, s.defaultZone, s.defaultZone.PrimaryHazard())
	case "2":
		s.route("menu")
		return s.glossaryText()
	}

	s.route("help")
	return chatHelpText
}

// ForecastFor answers the Telegram /forecast command. The reply is Telegram Markdown.
func (s *ChatService) ForecastFor(ctx context.Context, query string) string {
	if strings.TrimSpace(query) == "" {
		return s.forecastText(ctx, s.defaultZone, s.defaultZone.PrimaryHazard())
	}
	z, ok := s.registry.MatchAlias(query)
	if !ok {
		return fmt.Sprintf("I don't monitor a zone called \"%s\" yet. Try a county or town name such as Kisumu or Turkana.",
			markdownEscaper.Replace(strings.TrimSpace(query)))
	}
	return s.forecastText(ctx, z, z.PrimaryHazard())
}

func (s *ChatService) analyzeMedia(ctx context.Context, load MediaLoader, logCtx *logrus.Entry) string {
	if s.analyzer == nil {
		return visionDisabledText
	}
	ctx, cancel := context.WithTimeout(ctx, visionTimeout)
	defer cancel()

	data, mimeType, err := load(ctx)
	if err != nil {
		s.vision("error")
		logCtx.WithError(err).Error("Failed to download inbound media")
		return visionFallbackText
	}
	analysis, err := s.analyzer.AnalyzeImage(ctx, mimeType, data)
	if err != nil {
		s.vision("error")
		logCtx.WithError(err).Error("Vision analysis failed")
		return visionFallbackText
	}
	s.vision("success")
	logCtx.WithField("bytes", len(data)).Info("Image analyzed")
	return "🤖 *GeoGuard AI Vision*\n\n" + analysis
}

func (s *ChatService) forecastText(ctx context.Context, z zone.Zone, hazard zone.Hazard) string {
	fc, err := s.forecasts.Lookup(ctx, z, hazard)
	if err != nil {
		return fmt.Sprintf("No live data yet for %s. Please try again later.", z.DisplayName)
	}

	obs := fc.Observation
	reply := fmt.Sprintf("🌦 *%s Forecast* (%s):\nTemp: %s°C | Rain: %smm\nStatus: %s",
		z.DisplayName,
		obs.ObservedAt.In(s.location).Format("03:04PM"),
		risk.FormatNumber(obs.TemperatureC),
		risk.FormatNumber(obs.Rainfall1hMm),
		fc.Classification.Label.Text(),
	)
	if fc.Classification.Label.IsAlert() {
		reply += "\n⚠️ " + fc.Classification.Reason
	}
	return reply
}

func signPrefix(sg sign.Sign) string {
	return fmt.Sprintf("🌿 You reported %s: %s\n\n", sg.Name, sg.Meaning)
}

func (s *ChatService) glossaryText() string {
	var b strings.Builder
	b.WriteString("🌿 *Asili Smart*\nLook for:")
	for _, sg := range s.glossary.Signs() {
		fmt.Fprintf(&b, "\n- %s (%s)", sg.Name, hazardHint(sg.Hazard))
	}
	return b.String()
}

func hazardHint(h zone.Hazard) string {
	switch h {
	case zone.HazardFlood:
		return "Rain"
	case zone.HazardDrought:
		return "Drought"
	default:
		return "Landslide"
	}
}

func isGreeting(normalized string) bool {
	padded := " " + normalized + " "
	for _, w := range greetingWords {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

func (s *ChatService) route(name string) {
	if s.metrics != nil {
		s.metrics.ChatMessages.WithLabelValues(name).Inc()
	}
}

func (s *ChatService) vision(outcome string) {
	if s.metrics != nil {
		s.metrics.VisionRequests.WithLabelValues(outcome).Inc()
	}
}
