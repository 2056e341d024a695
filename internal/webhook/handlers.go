package webhook

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/citabot/citabot/internal/conversation"
)

// Handler adapts inbound channel webhooks to the conversation engine.
// The channel delivers Twilio-style form payloads: "From" carries the
// sender address, "Body" the message text.
type Handler struct {
	engine conversation.Engine
	logger *zap.Logger
}

// NewHandler creates a new webhook handler
func NewHandler(engine conversation.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// messagingResponse is the reply envelope the channel expects
type messagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// RegisterRoutes registers the webhook routes on the router
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/bot", h.HandleInbound)
}

// HandleInbound processes one inbound message and replies with the
// engine's text wrapped in the channel envelope
func (h *Handler) HandleInbound(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")

	if from == "" {
		h.logger.Warn("Inbound message without sender address",
			zap.String("remote_addr", c.Request.RemoteAddr))
		c.JSON(http.StatusBadRequest, gin.H{"error": "From is required"})
		return
	}

	reply := h.engine.HandleMessage(c.Request.Context(), from, body)

	c.XML(http.StatusOK, messagingResponse{Message: reply})
}
