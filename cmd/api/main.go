package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"beauty-api/internal/analyzer"
	"beauty-api/internal/config"
	"beauty-api/internal/db"
	"beauty-api/internal/email"
	apihttp "beauty-api/internal/http"
	"beauty-api/internal/livefeed"
	"beauty-api/internal/repository"
	"beauty-api/internal/service"
	"beauty-api/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	loc, err := cfg.LeaderboardLocation()
	if err != nil {
		logger.Fatal("invalid leaderboard timezone", zap.String("tz", cfg.LeaderboardTimezone), zap.Error(err))
	}

	var (
		tokenStore     = service.NewMemoryRefreshTokenStore()
		analyzeLimiter = service.NewMemoryRateLimiter(cfg.AnalyzeRateWindow, cfg.AnalyzeRateLimit)
		contactLimiter = service.NewMemoryRateLimiter(cfg.ContactRateWindow, cfg.ContactRateLimit)
		lbCache        = service.NewMemoryLeaderboardCache()
		settingsStore  = service.NewMemorySettingsStore()
		redisClient    *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			analyzeLimiter = service.NewRedisRateLimiter(redisClient, "analyze", cfg.AnalyzeRateWindow, cfg.AnalyzeRateLimit)
			contactLimiter = service.NewRedisRateLimiter(redisClient, "contact", cfg.ContactRateWindow, cfg.ContactRateLimit)
			lbCache = service.NewRedisLeaderboardCache(redisClient)
			settingsStore = service.NewRedisSettingsStore(redisClient)
		}
		cancel()
		defer redisClient.Close()
	}

	emailSender := email.NewDisabledSender("contact email not configured")
	if cfg.SMTPEnabled() {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.ContactTo, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var photoStore storage.PhotoStore = storage.NewDisabledPhotoStore()
	if cfg.StorageEnabled() {
		s3Store, err := storage.NewS3PhotoStore(ctx, storage.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Warn("photo storage init failed", zap.Error(err))
		} else {
			photoStore = s3Store
		}
	}

	picker, err := service.NewMessagePicker(cfg.ErrorMessageStrategy, cfg.ErrorMessageSeed)
	if err != nil {
		logger.Fatal("error message picker", zap.Error(err))
	}
	messages, err := service.LoadMessageCatalog(picker)
	if err != nil {
		logger.Fatal("error message catalog", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	leaderboardRepo := repository.NewPgLeaderboardRepository(pool)

	baseURL := analyzer.ResolveBaseURL(cfg.AnalysisAPIURL, cfg.AnalysisPublicHost, cfg.AnalysisDeployedURL)
	analysisClient := analyzer.NewHTTPClient(baseURL, cfg.AnalysisTimeout, logger)
	logger.Info("analysis backend", zap.String("base_url", baseURL))

	hub := livefeed.NewHub(logger, cfg.AllowedOrigins...)
	leaderboardSvc := service.NewLeaderboardService(logger, leaderboardRepo, lbCache, hub, service.LeaderboardOptions{
		Limit:         cfg.LeaderboardLimit,
		CacheTTL:      cfg.LeaderboardCacheTTL,
		Location:      loc,
		DefaultAvatar: cfg.DefaultAvatarURL,
	})
	var recorder service.LeaderboardRecorder
	if cfg.LeaderboardRecord {
		recorder = leaderboardSvc
	}
	analysisSvc := service.NewAnalysisService(logger, analysisClient, messages, recorder, cfg.MaxImageBytes)

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMin)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMin)*time.Minute,
		tokenStore,
	)
	userSvc := service.NewUserService(logger, userRepo)
	verifier := service.NewDisabledTokenVerifier()
	if cfg.GoogleClientID != "" {
		v, err := service.NewGoogleTokenVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			logger.Fatal("google token verifier", zap.Error(err))
		}
		verifier = v
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, federated sign-in disabled")
	}
	authSvc := service.NewAuthService(logger, userSvc, profileRepo, jwtSvc, verifier)
	unsubscribe := authSvc.OnAuthChange(func(ev service.AuthEvent) {
		logger.Info("auth event", zap.String("type", string(ev.Type)), zap.String("user_id", ev.UserID))
	})
	defer unsubscribe()

	photoSvc := service.NewPhotoService(logger, photoStore, profileRepo, cfg.MaxImageBytes)
	settingsSvc := service.NewSettingsService(logger, settingsStore)
	contactSvc := service.NewContactService(logger, emailSender)
	monitor := service.NewBackendMonitor(logger, analysisClient, baseURL)

	sched, err := service.StartScheduler(ctx, logger, service.MaintenanceJobs(
		leaderboardSvc, cfg.LeaderboardWarmInterval,
		monitor, cfg.BackendProbeInterval,
	)...)
	if err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}

	router := apihttp.NewRouter(logger, apihttp.RouterDeps{
		JWT:            jwtSvc,
		Settings:       settingsSvc,
		AnalyzeLimiter: analyzeLimiter,
		ContactLimiter: contactLimiter,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.SecureCookies,
		Analysis:       apihttp.NewAnalysisHandler(logger, analysisSvc, cfg.MaxImageBytes),
		Leaderboard:    apihttp.NewLeaderboardHandler(logger, leaderboardSvc, hub),
		Auth:           apihttp.NewAuthHandler(logger, authSvc, photoSvc),
		Preferences:    apihttp.NewSettingsHandler(logger, settingsSvc),
		Contact:        apihttp.NewContactHandler(logger, contactSvc),
		Status:         apihttp.NewStatusHandler(logger, pool, monitor, analysisClient),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	server.RegisterOnShutdown(hub.Close)

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if err := sched.Shutdown(); err != nil {
		logger.Warn("scheduler shutdown", zap.Error(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
