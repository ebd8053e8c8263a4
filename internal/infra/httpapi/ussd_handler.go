// internal/infra/httpapi/ussd_handler.go
package httpapi

import (
	"context"
	"net/http"

	"geoguard/internal/app"

	"github.com/gin-gonic/gin"
)

// SessionHandler answers one USSD callback.
type SessionHandler interface {
	Handle(ctx context.Context, req app.SessionRequest) string
}

// USSDHandler serves the gateway callback (Africa's Talking form encoding).
type USSDHandler struct {
	sessions SessionHandler
}

func NewUSSDHandler(sessions SessionHandler) *USSDHandler {
	return &USSDHandler{sessions: sessions}
}

func (h *USSDHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/ussd", h.HandleCallback)
}

// HandleCallback always answers 200 with a CON/END body; gateways treat anything else as a dropped session.
func (h *USSDHandler) HandleCallback(c *gin.Context) {
	reply := h.sessions.Handle(c.Request.Context(), app.SessionRequest{
		SessionID:   c.PostForm("sessionId"),
		ServiceCode: c.PostForm("serviceCode"),
		PhoneNumber: c.PostForm("phoneNumber"),
		Text:        c.PostForm("text"),
	})
	c.String(http.StatusOK, reply)
}
