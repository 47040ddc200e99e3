package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"beauty-api/internal/domain"
	"beauty-api/internal/service"
)

const (
	visitorCookie      = "visitor_id"
	visitorIDKey       = "visitor_id"
	visitorSettingsKey = "visitor_settings"
	visitorCookieAge   = 365 * 24 * 60 * 60
)

// RateLimitMiddleware limita por IP del cliente. Sin limiter no hace nada.
func RateLimitMiddleware(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// VisitorSettingsMiddleware identifica al visitante por cookie y carga sus preferencias.
func VisitorSettingsMiddleware(settings *service.SettingsService, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID, err := c.Cookie(visitorCookie)
		if err != nil || uuid.Validate(visitorID) != nil {
			visitorID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitorCookie, visitorID, visitorCookieAge, "/", "", secure, true)
		}
		c.Set(visitorIDKey, visitorID)
		if settings != nil {
			c.Set(visitorSettingsKey, settings.Resolve(c.Request.Context(), visitorID, c.GetHeader("Accept-Language")))
		}
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorIDKey)
}

// VisitorSettings devuelve las preferencias resueltas para la solicitud.
func VisitorSettings(c *gin.Context) domain.Settings {
	if v, ok := c.Get(visitorSettingsKey); ok {
		if s, ok := v.(domain.Settings); ok {
			return s
		}
	}
	return domain.Settings{Language: service.ResolveLanguage("", c.GetHeader("Accept-Language"))}
}
