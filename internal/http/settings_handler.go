package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/domain"
	"beauty-api/internal/service"
)

type SettingsHandler struct {
	logger   *zap.Logger
	settings *service.SettingsService
}

func NewSettingsHandler(logger *zap.Logger, settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{logger: logger, settings: settings}
}

func settingsBody(s domain.Settings) gin.H {
	return gin.H{
		"settings":            s,
		"supported_languages": service.SupportedLanguages,
		"consent_required":    service.ConsentRequired(s.Consent),
		"permissions":         service.Permissions(s.Consent),
	}
}

// Get maneja GET /settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, settingsBody(VisitorSettings(c)))
}

// SetLanguage maneja PUT /settings/language.
func (h *SettingsHandler) SetLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "set language", err)
		return
	}
	updated, err := h.settings.SetLanguage(c.Request.Context(), visitorID(c), req.Language)
	if err != nil {
		respondError(c, h.logger, "set language", err)
		return
	}
	c.JSON(http.StatusOK, settingsBody(updated))
}

// SetConsent maneja PUT /settings/consent.
func (h *SettingsHandler) SetConsent(c *gin.Context) {
	var req struct {
		Choice          string `json:"choice" binding:"required"`
		Analytics       bool   `json:"analytics"`
		Marketing       bool   `json:"marketing"`
		Personalization bool   `json:"personalization"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "set consent", err)
		return
	}
	updated, err := h.settings.SetConsent(c.Request.Context(), visitorID(c), req.Choice, domain.ConsentPreferences{
		Analytics:       req.Analytics,
		Marketing:       req.Marketing,
		Personalization: req.Personalization,
	}, c.GetHeader("Accept-Language"))
	if err != nil {
		respondError(c, h.logger, "set consent", err)
		return
	}
	c.JSON(http.StatusOK, settingsBody(updated))
}
