package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	eventapp "github.com/felicity/backend/internal/application/event"
	feedbackapp "github.com/felicity/backend/internal/application/feedback"
	forumapp "github.com/felicity/backend/internal/application/forum"
	identityapp "github.com/felicity/backend/internal/application/identity"
	registrationapp "github.com/felicity/backend/internal/application/registration"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/infrastructure/auth"
	"github.com/felicity/backend/internal/infrastructure/config"
	"github.com/felicity/backend/internal/infrastructure/event"
	"github.com/felicity/backend/internal/infrastructure/logger"
	"github.com/felicity/backend/internal/infrastructure/notify"
	"github.com/felicity/backend/internal/infrastructure/persistence"
	"github.com/felicity/backend/internal/infrastructure/scheduler"
	"github.com/felicity/backend/internal/infrastructure/storage"
	"github.com/felicity/backend/internal/interfaces/http/handler"
	"github.com/felicity/backend/internal/interfaces/http/middleware"
	"github.com/felicity/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    "felicity-api",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Felicity Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	eventRepo := persistence.NewGormEventRepository(db.DB)
	registrationRepo := persistence.NewGormRegistrationRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	feedbackRepo := persistence.NewGormFeedbackRepository(db.DB)
	resetRepo := persistence.NewGormPasswordResetRequestRepository(db.DB)
	capacityLedger := persistence.NewGormCapacityLedger(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Token blacklist backed by Redis
	blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := blacklist.Close(); err != nil {
			log.Error("Error closing Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Payment proof storage. Without configured credentials, proofs fall
	// back to stub links so local development needs no S3 endpoint.
	var proofStorage registrationapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		proofStorage = s3Storage
		log.Info("Object storage connected", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		proofStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage disabled, using stub proof links")
	}

	// Outbound notification adapters
	mailer := notify.NewMailer(cfg.Mail, log)
	announcer := notify.NewDiscordAnnouncer(cfg.Discord, log)
	qrRenderer := notify.NewQRRenderer(cfg.QR)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, log)
	adminService := identityapp.NewAdminService(userRepo, resetRepo, mailer, log)

	// Event services
	eventService := eventapp.NewEventService(
		eventRepo, userRepo, capacityLedger, announcer,
		cfg.Trending.Window, cfg.Trending.Limit, log,
	)

	// Registration services
	registrationService := registrationapp.NewRegistrationService(
		txScope, registrationRepo, eventRepo, userRepo, qrRenderer, mailer, log,
	)
	approvalService := registrationapp.NewApprovalService(
		txScope, registrationRepo, eventRepo, userRepo, qrRenderer, mailer, log,
	)
	attendanceService := registrationapp.NewAttendanceService(
		txScope, registrationRepo, eventRepo, userRepo, log,
	)
	exportService := registrationapp.NewExportService(
		registrationRepo, eventRepo, userRepo, log,
	)
	proofService := registrationapp.NewProofService(
		proofStorage, registrationRepo, eventRepo, userRepo, log,
	)

	// Forum and feedback services
	forumService := forumapp.NewForumService(messageRepo, eventRepo, userRepo, registrationRepo, log)
	feedbackService := feedbackapp.NewFeedbackService(feedbackRepo, eventRepo, userRepo, registrationRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	auditHandler := event.NewAuditLogHandler(log)
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered",
		zap.Strings("audit_events", auditHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Schedule-driven event status sweeps
	if cfg.Lifecycle.Enabled {
		lifecycleScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           true,
			MaxConcurrentJobs: cfg.Lifecycle.Workers,
			JobTimeout:        cfg.Lifecycle.JobTimeout,
			RetryAttempts:     cfg.Lifecycle.RetryAttempts,
			RetryDelay:        cfg.Lifecycle.RetryDelay,
		}, scheduler.NewLifecycleExecutor(eventRepo, log), log)
		if err := lifecycleScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start lifecycle scheduler", zap.Error(err))
		}
		defer func() {
			if err := lifecycleScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping lifecycle scheduler", zap.Error(err))
			}
		}()

		sweepTrigger := scheduler.NewSweepTrigger(scheduler.SweepTriggerConfig{
			Interval: cfg.Lifecycle.SweepInterval,
		}, lifecycleScheduler, log)
		if err := sweepTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep trigger", zap.Error(err))
		}
		defer func() {
			if err := sweepTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping sweep trigger", zap.Error(err))
			}
		}()
	}

	// Inject event bus into services that publish events
	authService.SetEventPublisher(eventBus)
	adminService.SetEventPublisher(eventBus)
	eventService.SetEventPublisher(eventBus)
	registrationService.SetEventPublisher(eventBus)
	approvalService.SetEventPublisher(eventBus)
	attendanceService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Cookie)
	eventHandler := handler.NewEventHandler(eventService)
	participantHandler := handler.NewParticipantHandler(userService)
	registrationHandler := handler.NewRegistrationHandler(registrationService, proofService)
	organizerHandler := handler.NewOrganizerHandler(
		eventService, userService, adminService,
		approvalService, attendanceService, exportService,
	)
	adminHandler := handler.NewAdminHandler(adminService)
	forumHandler := handler.NewForumHandler(forumService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Public discovery endpoints. Anonymous access is allowed; a valid token
	// personalizes listings and attributes views.
	public := engine.Group("/api/v1")
	public.Use(middleware.OptionalJWTAuthMiddleware(jwtService))
	public.GET("/events", eventHandler.List)
	public.GET("/events/trending", eventHandler.Trending)
	public.GET("/events/:id", eventHandler.GetDetail)
	public.GET("/organizers", participantHandler.ListOrganizers)
	public.GET("/organizers/:id", participantHandler.GetOrganizer)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Stricter rate limiting on credential endpoints
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.RateLimit(authLimiter))
	}
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Participant-facing event actions
	eventRoutes := router.NewDomainGroup("events", "/events")
	eventRoutes.GET("/recommended", eventHandler.Recommended)
	eventRoutes.POST("/:id/register", registrationHandler.Register)
	eventRoutes.POST("/:id/purchase", registrationHandler.Purchase)
	// Event discussion board
	eventRoutes.POST("/:id/forum/messages", forumHandler.PostMessage)
	eventRoutes.GET("/:id/forum/messages", forumHandler.ListMessages)
	// Post-event feedback
	eventRoutes.POST("/:id/feedback", feedbackHandler.Submit)
	eventRoutes.GET("/:id/feedback", feedbackHandler.List)
	eventRoutes.GET("/:id/feedback/summary", feedbackHandler.Summary)
	eventRoutes.GET("/:id/feedback/mine", feedbackHandler.MyFeedback)

	// Message-scoped forum actions
	forumRoutes := router.NewDomainGroup("forum", "/forum")
	forumRoutes.GET("/messages/:id/replies", forumHandler.ListReplies)
	forumRoutes.POST("/messages/:id/reactions", forumHandler.React)
	forumRoutes.POST("/messages/:id/pin", forumHandler.TogglePin)
	forumRoutes.DELETE("/messages/:id", forumHandler.DeleteMessage)

	// Participant profile and following
	participantRoutes := router.NewDomainGroup("participants", "/participants")
	participantRoutes.Use(middleware.RequireRoles(string(identity.RoleParticipant)))
	participantRoutes.PUT("/me/profile", participantHandler.UpdateProfile)
	participantRoutes.PUT("/me/interests", participantHandler.SetInterests)
	participantRoutes.POST("/organizers/:id/follow", participantHandler.FollowOrganizer)
	participantRoutes.DELETE("/organizers/:id/follow", participantHandler.UnfollowOrganizer)

	// Registrations and tickets
	registrationRoutes := router.NewDomainGroup("registrations", "/registrations")
	registrationRoutes.GET("/mine", registrationHandler.MyRegistrations)
	registrationRoutes.GET("/:id/ticket", registrationHandler.GetTicket)
	registrationRoutes.POST("/:id/cancel", registrationHandler.Cancel)
	registrationRoutes.POST("/payment-proofs", registrationHandler.CreateProofUploadSlot)
	registrationRoutes.GET("/:id/payment-proof", registrationHandler.GetPaymentProof)

	// Organizer console
	organizerRoutes := router.NewDomainGroup("organizer", "/organizer")
	organizerRoutes.Use(middleware.RequireRoles(string(identity.RoleOrganizer), string(identity.RoleAdmin)))
	organizerRoutes.GET("/dashboard", organizerHandler.Dashboard)
	organizerRoutes.PUT("/profile", organizerHandler.UpdateProfile)
	organizerRoutes.POST("/password-reset", organizerHandler.RequestPasswordReset)
	// Event management
	organizerRoutes.POST("/events", eventHandler.Create)
	organizerRoutes.GET("/events/:id", organizerHandler.GetOwnedEvent)
	organizerRoutes.PUT("/events/:id", eventHandler.Update)
	organizerRoutes.PUT("/events/:id/schedule", eventHandler.SetSchedule)
	organizerRoutes.PUT("/events/:id/form", eventHandler.SetForm)
	organizerRoutes.POST("/events/:id/publish", eventHandler.Publish)
	organizerRoutes.PUT("/events/:id/status", eventHandler.ChangeStatus)
	organizerRoutes.DELETE("/events/:id", eventHandler.Delete)
	organizerRoutes.POST("/events/:id/variants", eventHandler.SaveVariant)
	organizerRoutes.DELETE("/events/:id/variants/:variant_id", eventHandler.DeleteVariant)
	// Order approval
	organizerRoutes.GET("/events/:id/orders", organizerHandler.ListOrders)
	organizerRoutes.POST("/orders/:id/approve", organizerHandler.ApproveOrder)
	organizerRoutes.POST("/orders/:id/reject", organizerHandler.RejectOrder)
	organizerRoutes.GET("/orders/:id/proof", registrationHandler.GetPaymentProof)
	// Attendance
	organizerRoutes.POST("/attendance/scan", organizerHandler.ScanTicket)
	organizerRoutes.POST("/attendance/manual", organizerHandler.MarkAttendance)
	organizerRoutes.GET("/tickets/:ticket_id", organizerHandler.VerifyTicket)
	organizerRoutes.GET("/events/:id/attendance", organizerHandler.ListAttendance)
	organizerRoutes.GET("/events/:id/attendance/stats", organizerHandler.AttendanceStats)
	// CSV exports
	organizerRoutes.GET("/events/:id/export/participants", organizerHandler.ExportParticipants)
	organizerRoutes.GET("/events/:id/export/attendance", organizerHandler.ExportAttendance)

	// Admin console
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireRoles(string(identity.RoleAdmin)))
	adminRoutes.GET("/stats", adminHandler.Stats)
	adminRoutes.POST("/organizers", adminHandler.CreateOrganizer)
	adminRoutes.GET("/organizers", adminHandler.ListOrganizers)
	adminRoutes.GET("/password-resets", adminHandler.ListPasswordResets)
	adminRoutes.POST("/password-resets/:id/approve", adminHandler.ApprovePasswordReset)
	adminRoutes.POST("/password-resets/:id/reject", adminHandler.RejectPasswordReset)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(eventRoutes).
		Register(forumRoutes).
		Register(participantRoutes).
		Register(registrationRoutes).
		Register(organizerRoutes).
		Register(adminRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
