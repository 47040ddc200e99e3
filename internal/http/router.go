package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/service"
)

// RouterDeps agrupa handlers y middlewares compartidos.
type RouterDeps struct {
	JWT            *service.JWTService
	Settings       *service.SettingsService
	AnalyzeLimiter service.RateLimiter
	ContactLimiter service.RateLimiter
	AllowedOrigins []string
	SecureCookies  bool

	Analysis    *AnalysisHandler
	Leaderboard *LeaderboardHandler
	Auth        *AuthHandler
	Preferences *SettingsHandler
	Contact     *ContactHandler
	Status      *StatusHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, d RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(d.AllowedOrigins), jsonContentTypeMiddleware())
	r.Use(VisitorSettingsMiddleware(d.Settings, d.SecureCookies))

	r.GET("/health", d.Status.Health)
	r.GET("/percentile", d.Analysis.Percentile)
	r.GET("/backend/status", d.Status.BackendStatus)
	r.GET("/celebrities", d.Status.Celebrities)

	analyze := r.Group("/analyze", RateLimitMiddleware(d.AnalyzeLimiter), OptionalJWTMiddleware(d.JWT))
	analyze.POST("", d.Analysis.Analyze)
	analyze.POST("/upload", d.Analysis.Upload)

	r.GET("/leaderboard", d.Leaderboard.Top)
	r.GET("/leaderboard/live", d.Leaderboard.Live)

	auth := r.Group("/auth")
	auth.POST("/signup", d.Auth.SignUp)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/federated", d.Auth.Federated)
	auth.POST("/guest", d.Auth.Guest)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	profile := r.Group("/profile", JWTAuthMiddleware(d.JWT))
	profile.GET("", d.Auth.GetProfile)
	profile.POST("", d.Auth.SaveProfile)
	profile.PUT("", d.Auth.SaveProfile)
	profile.PUT("/photo", d.Auth.UploadPhoto)

	settings := r.Group("/settings")
	settings.GET("", d.Preferences.Get)
	settings.PUT("/language", d.Preferences.SetLanguage)
	settings.PUT("/consent", d.Preferences.SetConsent)

	r.POST("/contact", RateLimitMiddleware(d.ContactLimiter), d.Contact.Submit)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json salvo en upgrades de websocket.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Writer.Header().Set("Content-Type", "application/json")
		}
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (wildcard || allowed[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
