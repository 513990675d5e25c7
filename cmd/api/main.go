package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mentorlog/mentorlog-api/config"
	"github.com/mentorlog/mentorlog-api/internal/cache"
	"github.com/mentorlog/mentorlog-api/internal/handlers"
	"github.com/mentorlog/mentorlog-api/internal/middleware"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/internal/services"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/db"
	"github.com/mentorlog/mentorlog-api/pkg/httpclient"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/mailer"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"github.com/mentorlog/mentorlog-api/pkg/profiling"
	"github.com/mentorlog/mentorlog-api/pkg/redis"
	"github.com/mentorlog/mentorlog-api/pkg/storage"
	"github.com/mentorlog/mentorlog-api/pkg/tracing"
	"github.com/mentorlog/mentorlog-api/pkg/trigger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	jsonBodyLimit = 1 * 1024 * 1024
	// An upload request may carry this many files of MAX_FILE_SIZE.
	maxFilesPerUpload = 10
)

type appHandlers struct {
	auth          *handlers.AuthHandler
	users         *handlers.UserHandler
	facilities    *handlers.FacilityHandler
	logs          *handlers.MentorshipLogHandler
	comments      *handlers.CommentHandler
	followUps     *handlers.FollowUpHandler
	notifications *handlers.NotificationHandler
	attachments   *handlers.AttachmentHandler
	reports       *handlers.ReportHandler
	constants     *handlers.ConstantsHandler
	health        *handlers.HealthHandler
}

// registerRoutes wires every /api route with its role requirements.
func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h appHandlers,
	authenticator middleware.Authenticator,
	generalRateLimiter, authRateLimiter *middleware.RateLimiter,
) {
	reviewers := middleware.RequireRoles(authz.RoleAdmin, authz.RoleSupervisor)
	adminOnly := middleware.RequireRoles(authz.RoleAdmin)
	jsonLimit := middleware.BodySizeLimitMiddleware(jsonBodyLimit)

	api := router.Group("/api")
	api.GET("/health", h.health.Healthcheck)

	// Public
	auth := api.Group("/auth", generalRateLimiter.Middleware(), jsonLimit)
	auth.POST("/register", authRateLimiter.Middleware(), h.auth.Register)
	auth.POST("/login", authRateLimiter.Middleware(), h.auth.Login)

	h.constants.RegisterRoutes(api.Group("/constants", generalRateLimiter.Middleware()))

	// Authenticated
	protected := api.Group("", generalRateLimiter.Middleware(), middleware.BearerAuthMiddleware(authenticator))

	me := protected.Group("/auth", jsonLimit)
	me.GET("/me", h.auth.Me)
	me.POST("/logout", h.auth.Logout)

	users := protected.Group("/users", jsonLimit)
	users.GET("", reviewers, h.users.List)
	users.POST("", adminOnly, h.users.Create)
	users.GET("/:id", h.users.Get)
	users.PUT("/:id", h.users.Update)
	users.PUT("/:id/deactivate", adminOnly, h.users.Deactivate)
	users.PUT("/:id/activate", adminOnly, h.users.Activate)
	users.DELETE("/:id", adminOnly, h.users.Delete)

	facilities := protected.Group("/facilities", jsonLimit)
	facilities.GET("", h.facilities.List)
	facilities.GET("/:id", h.facilities.Get)
	facilities.POST("", adminOnly, h.facilities.Create)
	facilities.PUT("/:id", adminOnly, h.facilities.Update)
	facilities.DELETE("/:id", adminOnly, h.facilities.Delete)

	logs := protected.Group("/mentorship-logs", jsonLimit)
	logs.GET("", h.logs.List)
	logs.POST("", h.logs.Create)
	logs.GET("/:id", h.logs.Get)
	logs.PUT("/:id", h.logs.Update)
	logs.DELETE("/:id", h.logs.Delete)
	logs.POST("/:id/submit", h.logs.Submit)
	logs.POST("/:id/approve", reviewers, h.logs.Approve)
	logs.POST("/:id/return-to-draft", reviewers, h.logs.ReturnToDraft)
	logs.POST("/:id/reject", reviewers, h.logs.Reject)
	logs.POST("/:id/complete", adminOnly, h.logs.Complete)
	logs.GET("/:id/comments", h.comments.List)
	logs.POST("/:id/comments", h.comments.Create)
	logs.PUT("/comments/:comment_id", h.comments.Update)
	logs.DELETE("/comments/:comment_id", h.comments.Delete)

	followUps := protected.Group("/follow-ups", jsonLimit)
	followUps.GET("", h.followUps.List)
	followUps.POST("", h.followUps.Create)
	followUps.GET("/:id", h.followUps.Get)
	followUps.PUT("/:id", h.followUps.Update)
	followUps.PUT("/:id/in-progress", h.followUps.MarkInProgress)
	followUps.PUT("/:id/complete", h.followUps.MarkComplete)
	followUps.DELETE("/:id", h.followUps.Delete)

	notifications := protected.Group("/notifications", jsonLimit)
	notifications.GET("", h.notifications.List)
	notifications.GET("/count", h.notifications.Count)
	notifications.POST("/mark-read", h.notifications.MarkRead)
	notifications.POST("/mark-all-read", h.notifications.MarkAllRead)
	notifications.DELETE("/:id", h.notifications.Delete)

	attachments := protected.Group("/attachments")
	attachments.POST("/upload/:log_id",
		middleware.BodySizeLimitMiddleware(cfg.Storage.MaxFileSize*maxFilesPerUpload+jsonBodyLimit),
		h.attachments.Upload)
	attachments.GET("/download/:id", h.attachments.Download)
	attachments.GET("/url/:id", h.attachments.URL)
	attachments.GET("/:log_id", h.attachments.List)
	attachments.DELETE("/:id", h.attachments.Delete)

	reports := protected.Group("/reports", reviewers)
	reports.GET("/summary", h.reports.Summary)
	reports.GET("/mentorship-logs", h.reports.MentorshipLogs)
	reports.GET("/follow-ups", h.reports.FollowUps)
	reports.GET("/facility-coverage", h.reports.FacilityCoverage)
}

// revocationStore uses Redis when REDIS_HOST is set and memory otherwise.
func revocationStore(ctx context.Context, cfg *config.Config) (cache.RevocationStore, func()) {
	if cfg.Redis.Host == "" {
		logger.Warn("REDIS_HOST not set, revoked tokens are kept in memory")
		return cache.NewMemoryRevocationStore(), func() {}
	}

	client, err := redis.NewClient(ctx, redis.FromAppConfig(cfg.Redis))
	if err != nil {
		logger.Error("Failed to connect to Redis, falling back to in-memory revocation store", zap.Error(err))
		return cache.NewMemoryRevocationStore(), func() {}
	}

	logger.Info("Connected to Redis", zap.String("addr", redis.FromAppConfig(cfg.Redis).Addr()))
	return cache.NewRedisRevocationStore(client.Client()), func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("Failed to close Redis client", zap.Error(closeErr))
		}
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Mentorship Log API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	metrics.RecordInfrastructureMetrics(stopMetrics)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if cfg.Database.AutoMigrate {
		logger.Info("Running database migrations", zap.String("database", db.MaskURL(cfg.Database.URL)))
		if migrateErr := db.RunMigrations(cfg.Database.URL, "file://"+cfg.Database.MigrationsPath); migrateErr != nil {
			logger.Fatal("Failed to run migrations", zap.Error(migrateErr))
		}
	}

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(startupCtx, db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer db.Close(pool)

	revocations, closeRevocations := revocationStore(startupCtx, cfg)
	defer closeRevocations()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	facilityRepo := repository.NewFacilityRepository(pool)
	logRepo := repository.NewMentorshipLogRepository(pool)
	followUpRepo := repository.NewFollowUpRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	userCache := cache.NewUserCache(userRepo.GetByID, time.Duration(cfg.Cache.UserTTLSeconds)*time.Second)

	// Optional outbound integrations
	var objectStore services.ObjectStorage
	if cfg.StorageEnabled() {
		objectStore = storage.NewClient(cfg.Storage)
		logger.Info("Attachment storage enabled", zap.String("bucket", cfg.Storage.BucketName))
	} else {
		logger.Warn("Attachment storage disabled: S3 credentials not configured")
	}

	mail := mailer.NewMailer(cfg.SMTP)
	if !mail.Enabled() {
		logger.Info("Email notifications disabled: SMTP_HOST not set")
	}

	events := trigger.NewDispatcher(cfg.Webhook.EventsURL, httpclient.NewStandardClient())

	// Services
	tokenManager := jwt.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.AccessTokenExpireHours)
	notifier := services.NewNotifier(notificationRepo, mail)

	authService := services.NewAuthService(userRepo, userCache, tokenManager, revocations)
	userService := services.NewUserService(userRepo, userCache)
	facilityService := services.NewFacilityService(facilityRepo)
	logService := services.NewLogService(logRepo, userRepo, facilityRepo, notifier, events)
	followUpService := services.NewFollowUpService(followUpRepo, logRepo)
	commentService := services.NewCommentService(commentRepo, logRepo, userRepo, notifier)
	notificationService := services.NewNotificationService(notificationRepo)
	attachmentService := services.NewAttachmentService(attachmentRepo, logRepo, objectStore, cfg.Storage.MaxFileSize)
	reportService := services.NewReportService(reportRepo)

	h := appHandlers{
		auth:          handlers.NewAuthHandler(authService),
		users:         handlers.NewUserHandler(userService),
		facilities:    handlers.NewFacilityHandler(facilityService),
		logs:          handlers.NewMentorshipLogHandler(logService),
		comments:      handlers.NewCommentHandler(commentService),
		followUps:     handlers.NewFollowUpHandler(followUpService),
		notifications: handlers.NewNotificationHandler(notificationService),
		attachments:   handlers.NewAttachmentHandler(attachmentService),
		reports:       handlers.NewReportHandler(reportService),
		constants:     handlers.NewConstantsHandler(),
		health:        handlers.NewHealthHandler(pool.Ping),
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(50, 100) // 50 req/sec, burst of 100
	authRateLimiter := middleware.NewRateLimiter(0.2, 5)     // 1 req/5s, burst of 5 (credential stuffing)
	defer generalRateLimiter.Stop()
	defer authRateLimiter.Stop()

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	registerRoutes(router, cfg, h, authService, generalRateLimiter, authRateLimiter)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
