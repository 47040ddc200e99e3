package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/service"
)

type ContactHandler struct {
	logger  *zap.Logger
	contact *service.ContactService
}

func NewContactHandler(logger *zap.Logger, contact *service.ContactService) *ContactHandler {
	return &ContactHandler{logger: logger, contact: contact}
}

// Submit maneja POST /contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "contact", err)
		return
	}
	if err := h.contact.Send(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, "contact", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}
