package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	SecureCookies  bool     `env:"COOKIE_SECURE" envDefault:"false"`

	// Backend de análisis facial.
	AnalysisAPIURL      string        `env:"ANALYSIS_API_URL"`
	AnalysisPublicHost  string        `env:"ANALYSIS_PUBLIC_HOST" envDefault:"localhost"`
	AnalysisDeployedURL string        `env:"ANALYSIS_DEPLOYED_URL" envDefault:"https://nextkstar-backend-production.up.railway.app"`
	AnalysisTimeout     time.Duration `env:"ANALYSIS_TIMEOUT" envDefault:"60s"`
	MaxImageBytes       int64         `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`

	ErrorMessageStrategy string `env:"ERROR_MESSAGE_STRATEGY" envDefault:"random"`
	ErrorMessageSeed     uint64 `env:"ERROR_MESSAGE_SEED" envDefault:"0"`

	AnalyzeRateLimit  int           `env:"ANALYZE_RATE_LIMIT" envDefault:"30"`
	AnalyzeRateWindow time.Duration `env:"ANALYZE_RATE_WINDOW" envDefault:"10m"`
	ContactRateLimit  int           `env:"CONTACT_RATE_LIMIT" envDefault:"5"`
	ContactRateWindow time.Duration `env:"CONTACT_RATE_WINDOW" envDefault:"1h"`

	LeaderboardRecord       bool          `env:"LEADERBOARD_RECORD" envDefault:"true"`
	LeaderboardLimit        int           `env:"LEADERBOARD_LIMIT" envDefault:"50"`
	LeaderboardTimezone     string        `env:"LEADERBOARD_TIMEZONE" envDefault:"Local"`
	LeaderboardCacheTTL     time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`
	LeaderboardWarmInterval time.Duration `env:"LEADERBOARD_WARM_INTERVAL" envDefault:"1m"`
	DefaultAvatarURL        string        `env:"DEFAULT_AVATAR_URL" envDefault:"/images/default-avatar.png"`

	BackendProbeInterval time.Duration `env:"BACKEND_PROBE_INTERVAL" envDefault:"1m"`

	JWTSecret        string `env:"JWT_SECRET,required"`
	JWTAccessTTLMin  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMin int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	// Client ID OAuth de Google; vacío deshabilita /auth/federated.
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	ContactTo    string `env:"CONTACT_TO"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Almacenamiento de fotos de perfil (S3 o R2).
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"auto"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LeaderboardLocation resuelve la zona horaria usada para las ventanas del ranking.
func (c *Config) LeaderboardLocation() (*time.Location, error) {
	if c.LeaderboardTimezone == "" || c.LeaderboardTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.LeaderboardTimezone)
}

// StorageEnabled indica si hay bucket configurado para fotos.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// SMTPEnabled indica si el formulario de contacto puede enviar correo.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != "" && c.ContactTo != ""
}
