package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/wms/backend/internal/application/audit"
	identityapp "github.com/wms/backend/internal/application/identity"
	invoicingapp "github.com/wms/backend/internal/application/invoicing"
	pickingapp "github.com/wms/backend/internal/application/picking"
	postingapp "github.com/wms/backend/internal/application/posting"
	receivingapp "github.com/wms/backend/internal/application/receiving"
	transferapp "github.com/wms/backend/internal/application/transfer"
	warehouseapp "github.com/wms/backend/internal/application/warehouse"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/servicelayer"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/infrastructure/worker"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/wms/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			WMS Backend API
//	@version		1.0
//	@description	Warehouse document gateway for SAP Business One - goods receipts, serial transfers, pick lists and invoices with QC approval and queued Service Layer posting
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/wms/backend
//	@contact.email	support@wms.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

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
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting WMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with a zap-backed GORM logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis backs SAP session reuse, the series cache and the token blacklist
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	grpoRepo := persistence.NewGormGRPORepository(db.DB)
	grpoAttachmentRepo := persistence.NewGormGRPOAttachmentRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	pickListRepo := persistence.NewGormPickListRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	postingJobRepo := persistence.NewGormPostingJobRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// SAP Business One Service Layer client
	var serviceLayer sap.ServiceLayer
	if cfg.SAP.Offline {
		serviceLayer = servicelayer.NewOfflineClient(log)
		log.Warn("SAP offline mode enabled; serial and stock validations are skipped and postings are simulated with synthetic document numbers")
	} else {
		client, err := servicelayer.NewClient(cfg.SAP,
			servicelayer.WithLogger(log),
			servicelayer.WithSessionStore(servicelayer.NewRedisSessionStore(redisClient)),
		)
		if err != nil {
			log.Fatal("Failed to initialize Service Layer client", zap.Error(err))
		}
		serviceLayer = client
	}

	// Object storage for delivery-note attachments
	var objectStorage receivingapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		bucketCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3.EnsureBucket(bucketCtx); err != nil {
			cancel()
			log.Fatal("Failed to ensure attachment bucket", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}
		cancel()
		objectStorage = s3
		log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage not configured; attachments are held in memory and lost on restart")
	}

	// In-process event bus feeding the audit trail
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(auditapp.NewRecorder(auditRepo, log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Telemetry providers (optional)
	var meterProvider *telemetry.MeterProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err = telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		// Query spans and connection-pool gauges on the shared GORM handle
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
		dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		} else if dbMetrics != nil {
			dbMetrics.StartPoolStatsCollection(context.Background())
			defer dbMetrics.Stop()
		}

		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter("wms-backend"),
			Logger:        log,
			QueueProvider: telemetry.NewGormPostingQueueMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		defer businessMetrics.Stop()
		businessMetrics.StartPeriodicCollection(context.Background(), time.Minute)
		eventBus.Subscribe(telemetry.NewMetricsEventHandler(businessMetrics))

		log.Info("Telemetry enabled",
			zap.String("collector", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)

		if cfg.Telemetry.ProfilingEnabled {
			profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
				Enabled:         true,
				ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
				ApplicationName: cfg.Telemetry.ServiceName,
				ProfileCPU:      true,
			}, log)
			if err != nil {
				log.Warn("Failed to start profiler", zap.Error(err))
			} else {
				defer func() {
					if err := profiler.Stop(); err != nil {
						log.Error("Error stopping profiler", zap.Error(err))
					}
				}()
			}
		}
	}

	// SAP series cache for the invoice creation flow
	seriesCache := cache.NewRedisSeriesCache(redisClient, cfg.SAP.SeriesCacheTTL)

	// Initialize application services
	grpoService := receivingapp.NewGRPOService(grpoRepo, warehouseRepo, serviceLayer, scope, eventBus, log)
	attachmentService := receivingapp.NewAttachmentService(grpoAttachmentRepo, grpoRepo, objectStorage, log)
	attachmentCfg := receivingapp.DefaultAttachmentServiceConfig()
	if cfg.Storage.PresignTTL > 0 {
		attachmentCfg.DownloadURLExpiry = cfg.Storage.PresignTTL
	}
	attachmentService.SetConfig(attachmentCfg)
	transferService := transferapp.NewService(transferRepo, warehouseRepo, serviceLayer, scope, eventBus, log)
	pickService := pickingapp.NewService(pickListRepo, serviceLayer, scope, eventBus, log)
	invoiceService := invoicingapp.NewService(invoiceRepo, serviceLayer, scope, seriesCache, eventBus, log)
	jobService := postingapp.NewJobService(postingJobRepo, scope, log)
	auditQueryService := auditapp.NewQueryService(auditRepo, log)
	warehouseService := warehouseapp.NewService(warehouseRepo, log)
	userService := identityapp.NewUserService(userRepo, log)

	// JWT authentication backed by the Redis token blacklist
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewRedisTokenBlacklist(redisClient)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
	}, log)

	// Posting queue worker
	var postingWorker *worker.Worker
	if cfg.Worker.Enabled {
		postingWorker = worker.New(postingJobRepo, transferRepo, scope, serviceLayer, cfg.Worker, log)
		if err := postingWorker.Start(context.Background()); err != nil {
			log.Fatal("Failed to start posting worker", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := postingWorker.Stop(stopCtx); err != nil {
				log.Error("Error stopping posting worker", zap.Error(err))
			}
		}()
		log.Info("Posting worker started",
			zap.Duration("poll_interval", cfg.Worker.PollInterval),
			zap.Int("batch_size", cfg.Worker.BatchSize),
		)
	}

	// Initialize HTTP handlers
	grpoHandler := handler.NewGRPOHandler(grpoService)
	grpoAttachmentHandler := handler.NewGRPOAttachmentHandler(attachmentService)
	transferHandler := handler.NewTransferHandler(transferService)
	pickListHandler := handler.NewPickListHandler(pickService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	postingJobHandler := handler.NewPostingJobHandler(jobService)
	auditHandler := handler.NewAuditHandler(auditQueryService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	systemHandler := handler.NewSystemHandler(serviceLayer)

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
	// 7. Tracing/Metrics/Profiling - Telemetry spans, HTTP metrics,
	//    profiler labels (if enabled)
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Tracing and HTTP metrics (if telemetry enabled)
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("http.server"), true))
		if cfg.Telemetry.ProfilingEnabled {
			engine.Use(middleware.Profiling())
		}
	}

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, redisClient, postingWorker, cfg.Worker.PollInterval))

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerCfg := middleware.SwaggerConfig{
			Enabled:     true,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(swaggerCfg, middleware.JWTAuthMiddleware(jwtService)),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication for all API routes except login/refresh and probes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Authentication routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Identity domain (user management)
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.Use(middleware.RequirePermission(identity.PermissionUserManage))
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)

	// Warehouse master data
	warehouseRoutes := router.NewDomainGroup("warehouse", "/warehouses")
	warehouseRoutes.POST("", warehouseHandler.Create)
	warehouseRoutes.GET("", warehouseHandler.List)
	warehouseRoutes.GET("/:id", warehouseHandler.GetByID)
	warehouseRoutes.GET("/code/:code", warehouseHandler.GetByCode)
	warehouseRoutes.PUT("/:id", warehouseHandler.Update)
	warehouseRoutes.PUT("/:id/active", warehouseHandler.SetActive)
	warehouseRoutes.DELETE("/:id", warehouseHandler.Delete)

	// Goods receipt (GRPO) routes
	grpoRoutes := router.NewDomainGroup("receiving", "/grpo")
	grpoRoutes.POST("", grpoHandler.Create)
	grpoRoutes.GET("", grpoHandler.List)
	grpoRoutes.GET("/:id", grpoHandler.GetByID)
	grpoRoutes.GET("/number/:number", grpoHandler.GetByNumber)
	grpoRoutes.PUT("/:id", grpoHandler.UpdateHeader)
	grpoRoutes.DELETE("/:id", grpoHandler.Delete)
	grpoRoutes.POST("/:id/items", grpoHandler.AddItem)
	grpoRoutes.PUT("/:id/items/:itemId/quantity", grpoHandler.UpdateItemQuantity)
	grpoRoutes.DELETE("/:id/items/:itemId", grpoHandler.RemoveItem)
	grpoRoutes.POST("/:id/serials", grpoHandler.AddSerial)
	grpoRoutes.DELETE("/:id/items/:itemId/serials/:serial", grpoHandler.RemoveSerial)
	grpoRoutes.POST("/:id/submit", grpoHandler.Submit)
	grpoRoutes.POST("/:id/approve", middleware.RequirePermission(identity.PermissionDocumentApprove), grpoHandler.Approve)
	grpoRoutes.POST("/:id/reject", middleware.RequirePermission(identity.PermissionDocumentApprove), grpoHandler.Reject)
	grpoRoutes.POST("/:id/reopen", grpoHandler.Reopen)
	grpoRoutes.POST("/:id/post", grpoHandler.Post)
	grpoRoutes.POST("/:id/attachments", grpoAttachmentHandler.Upload)
	grpoRoutes.GET("/:id/attachments", grpoAttachmentHandler.List)
	grpoRoutes.GET("/:id/attachments/:attachmentId/download", grpoAttachmentHandler.Download)
	grpoRoutes.DELETE("/:id/attachments/:attachmentId", grpoAttachmentHandler.Delete)

	// Serial item transfer routes
	transferRoutes := router.NewDomainGroup("transfer", "/transfers")
	transferRoutes.POST("", transferHandler.Create)
	transferRoutes.GET("", transferHandler.List)
	transferRoutes.GET("/:id", transferHandler.GetByID)
	transferRoutes.DELETE("/:id", transferHandler.Delete)
	transferRoutes.POST("/:id/serial-items", transferHandler.AddSerialItem)
	transferRoutes.POST("/:id/items", transferHandler.AddNonSerialItem)
	transferRoutes.DELETE("/:id/items/:itemId", transferHandler.RemoveItem)
	transferRoutes.POST("/:id/submit", transferHandler.Submit)
	transferRoutes.POST("/:id/approve", middleware.RequirePermission(identity.PermissionDocumentApprove), transferHandler.Approve)
	transferRoutes.POST("/:id/reject", middleware.RequirePermission(identity.PermissionDocumentApprove), transferHandler.Reject)
	transferRoutes.POST("/:id/reopen", transferHandler.Reopen)
	transferRoutes.POST("/:id/post", transferHandler.Post)
	transferRoutes.POST("/cleanup", middleware.RequirePermission(identity.PermissionJobManage), transferHandler.CleanupDrafts)

	// Pick list routes
	pickListRoutes := router.NewDomainGroup("picking", "/pick-lists")
	pickListRoutes.POST("", pickListHandler.Create)
	pickListRoutes.GET("", pickListHandler.List)
	pickListRoutes.GET("/:id", pickListHandler.GetByID)
	pickListRoutes.GET("/order/:orderEntry", pickListHandler.ListByOrder)
	pickListRoutes.PUT("/:id", pickListHandler.UpdateHeader)
	pickListRoutes.DELETE("/:id", pickListHandler.Delete)
	pickListRoutes.PUT("/:id/quantities", pickListHandler.SetPickedQuantity)
	pickListRoutes.POST("/:id/serials", pickListHandler.AddSerial)
	pickListRoutes.DELETE("/:id/lines/:lineId/serials/:serial", pickListHandler.RemoveSerial)
	pickListRoutes.DELETE("/:id/lines/:lineId", pickListHandler.RemoveLine)
	pickListRoutes.POST("/:id/submit", pickListHandler.Submit)
	pickListRoutes.POST("/:id/approve", middleware.RequirePermission(identity.PermissionDocumentApprove), pickListHandler.Approve)
	pickListRoutes.POST("/:id/reject", middleware.RequirePermission(identity.PermissionDocumentApprove), pickListHandler.Reject)
	pickListRoutes.POST("/:id/reopen", pickListHandler.Reopen)
	pickListRoutes.POST("/:id/post", pickListHandler.Post)

	// Sales order invoice routes
	invoiceRoutes := router.NewDomainGroup("invoicing", "/invoices")
	invoiceRoutes.GET("/series", invoiceHandler.ListSeries)
	invoiceRoutes.POST("/validate-order", invoiceHandler.ValidateSalesOrder)
	invoiceRoutes.POST("", invoiceHandler.Create)
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/:id", invoiceHandler.GetByID)
	invoiceRoutes.GET("/order/:soEntry", invoiceHandler.ListByOrder)
	invoiceRoutes.PUT("/:id", invoiceHandler.UpdateHeader)
	invoiceRoutes.DELETE("/:id", invoiceHandler.Delete)
	invoiceRoutes.POST("/:id/serials", invoiceHandler.AddSerial)
	invoiceRoutes.DELETE("/:id/lines/:lineId/serials/:serial", invoiceHandler.RemoveSerial)
	invoiceRoutes.PUT("/:id/quantities", invoiceHandler.SetValidatedQuantity)
	invoiceRoutes.POST("/:id/validate", invoiceHandler.Validate)
	invoiceRoutes.POST("/:id/post", invoiceHandler.Post)
	invoiceRoutes.POST("/:id/post-draft", invoiceHandler.PostAsDraft)
	invoiceRoutes.POST("/:id/retry", invoiceHandler.RetryPosting)

	// Posting queue administration
	postingJobRoutes := router.NewDomainGroup("posting", "/posting-jobs")
	postingJobRoutes.GET("", postingJobHandler.List)
	postingJobRoutes.GET("/stats", postingJobHandler.Stats)
	postingJobRoutes.GET("/:id", postingJobHandler.Get)
	postingJobRoutes.GET("/document/:documentId", postingJobHandler.DocumentHistory)
	postingJobRoutes.POST("/:id/retry", middleware.RequirePermission(identity.PermissionJobManage), postingJobHandler.Retry)
	postingJobRoutes.POST("/:id/cancel", middleware.RequirePermission(identity.PermissionJobManage), postingJobHandler.Cancel)

	// Audit trail
	auditRoutes := router.NewDomainGroup("audit", "/audit")
	auditRoutes.Use(middleware.RequirePermission(identity.PermissionAuditRead))
	auditRoutes.GET("", auditHandler.List)
	auditRoutes.GET("/:aggregateType/:aggregateId", auditHandler.AggregateHistory)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/sap-status", systemHandler.GetSAPStatus)

	// Register all domain groups
	r.Register(authRoutes).
		Register(identityRoutes).
		Register(warehouseRoutes).
		Register(grpoRoutes).
		Register(transferRoutes).
		Register(pickListRoutes).
		Register(invoiceRoutes).
		Register(postingJobRoutes).
		Register(auditRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
func healthHandler(db *persistence.Database, rdb *redis.Client, postingWorker *worker.Worker, pollInterval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		healthy := true
		components := gin.H{"database": "ok", "redis": "ok"}

		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check: database ping failed", zap.Error(err))
			components["database"] = "error"
			healthy = false
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			reqLog.Warn("Health check: redis ping failed", zap.Error(err))
			components["redis"] = "error"
			healthy = false
		}

		switch {
		case postingWorker == nil:
			components["worker"] = "disabled"
		case postingWorker.LastPoll().IsZero():
			components["worker"] = "starting"
		case time.Since(postingWorker.LastPoll()) > 3*pollInterval:
			components["worker"] = "stalled"
			healthy = false
		default:
			components["worker"] = "ok"
		}

		status := http.StatusOK
		components["status"] = "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			components["status"] = "unhealthy"
		}
		components["time"] = time.Now().Format(time.RFC3339)
		c.JSON(status, components)
	}
}
