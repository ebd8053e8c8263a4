// internal/infra/httpapi/whatsapp_handler.go
package httpapi

import (
	"context"
	"encoding/xml"
	"net/http"
	"strconv"

	"geoguard/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChatResponder answers one inbound chat message.
type ChatResponder interface {
	Reply(ctx context.Context, msg app.InboundMessage) string
}

// MediaFetcher downloads a provider-hosted attachment.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// WhatsAppHandler serves the Twilio messaging webhook and answers in TwiML.
type WhatsAppHandler struct {
	chat   ChatResponder
	media  MediaFetcher
	logger *logrus.Entry
}

func NewWhatsAppHandler(chat ChatResponder, media MediaFetcher, logger *logrus.Entry) *WhatsAppHandler {
	return &WhatsAppHandler{chat: chat, media: media, logger: logger}
}

func (h *WhatsAppHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/whatsapp", h.HandleMessage)
}

func (h *WhatsAppHandler) HandleMessage(c *gin.Context) {
	msg := app.InboundMessage{
		Body:   c.PostForm("Body"),
		Sender: c.PostForm("From"),
	}

	numMedia, _ := strconv.Atoi(c.PostForm("NumMedia"))
	mediaURL := c.PostForm("MediaUrl0")
	if numMedia > 0 && mediaURL != "" {
		declaredType := c.PostForm("MediaContentType0")
		msg.Media = func(ctx context.Context) ([]byte, string, error) {
			data, contentType, err := h.media.Fetch(ctx, mediaURL)
			if err != nil {
				return nil, "", err
			}
			if declaredType != "" {
				contentType = declaredType
			}
			return data, contentType, nil
		}
	}
	h.logger.WithFields(logrus.Fields{"sender": msg.Sender, "num_media": numMedia}).Debug("WhatsApp message received")

	c.XML(http.StatusOK, twimlResponse{Message: h.chat.Reply(c.Request.Context(), msg)})
}
