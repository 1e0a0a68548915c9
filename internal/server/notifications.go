package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type notificationWebhookRequest struct {
	Type string `json:"type"`
	Data struct {
		EmailID string `json:"email_id"`
	} `json:"data"`
}

// notificationWebhook reconciles provider delivery events. The provider
// retries on non-2xx, so every outcome answers 200; problems are logged
// instead of surfaced.
func (s *Server) notificationWebhook(c *gin.Context) {
	var req notificationWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.log.Warn("webhook payload unreadable", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	eventType := strings.TrimSpace(req.Type)
	externalID := strings.TrimSpace(req.Data.EmailID)
	if eventType == "" || externalID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := s.dispatcher.HandleProviderEvent(c.Request.Context(), eventType, externalID); err != nil {
		s.log.Error("webhook reconcile failed",
			zap.String("event_type", eventType),
			zap.String("email_id", externalID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
