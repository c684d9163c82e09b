package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mld/backend/internal/application/catalogsync"
	"github.com/mld/backend/internal/application/closeoutsync"
	"github.com/mld/backend/internal/domain/catalog"
	"github.com/mld/backend/internal/infrastructure/acumatica"
	"github.com/mld/backend/internal/infrastructure/cache"
	"github.com/mld/backend/internal/infrastructure/config"
	"github.com/mld/backend/internal/infrastructure/logger"
	"github.com/mld/backend/internal/infrastructure/notify"
	"github.com/mld/backend/internal/infrastructure/persistence"
	"github.com/mld/backend/internal/infrastructure/scheduler"
	"github.com/mld/backend/internal/infrastructure/specfeed"
	"github.com/mld/backend/internal/interfaces/http/handler"
	"github.com/mld/backend/internal/interfaces/http/middleware"
	"github.com/mld/backend/internal/interfaces/http/router"
)

//	@title			MLD Backend API
//	@version		1.0
//	@description	Appliance catalog normalization and closeout inventory reconciliation service

//	@host		localhost:8080
//	@BasePath	/api/v1

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

	log.Info("Starting MLD Backend",
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
	productRepo := persistence.NewGormProductRepository(db.DB)
	closeoutRepo := persistence.NewGormCloseoutRepository(db.DB)

	// ERP client: the snapshot either comes straight off the OData feed or
	// through the async export job API
	erpClient, err := acumatica.NewClient(&acumatica.Config{
		BaseURL:           cfg.Acumatica.BaseURL,
		ODataURL:          cfg.Acumatica.ODataURL,
		Username:          cfg.Acumatica.Username,
		Password:          cfg.Acumatica.Password,
		ClientID:          cfg.Acumatica.ClientID,
		ClientSecret:      cfg.Acumatica.ClientSecret,
		TimeoutSeconds:    cfg.Acumatica.TimeoutSeconds,
		JobPollSeconds:    cfg.Acumatica.JobPollSeconds,
		JobTimeoutSeconds: cfg.Acumatica.JobTimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create Acumatica client", zap.Error(err))
	}
	var snapshotSource closeoutsync.SnapshotSource = erpClient
	if cfg.Acumatica.UseExportJob {
		snapshotSource = exportJobSource{client: erpClient}
		log.Info("Using export job snapshot source")
	}

	// Manufacturer spec feed client
	feedClient, err := specfeed.NewClient(&specfeed.Config{
		BaseURL:        cfg.SpecFeed.BaseURL,
		Password:       cfg.SpecFeed.Password,
		TimeoutSeconds: cfg.SpecFeed.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create spec feed client", zap.Error(err))
	}

	// Outbound mail for sync failure reports
	var notifier closeoutsync.Notifier
	mailer, err := notify.NewMailer(&notify.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		To:       cfg.Mail.To,
		CC:       cfg.Mail.CC,
	})
	if err != nil {
		log.Warn("Mail notifications disabled", zap.Error(err))
	} else {
		notifier = mailer
	}

	// Initialize application services
	facetEngine := catalog.NewEngine(log)
	syncService := closeoutsync.NewSyncService(
		closeoutRepo, productRepo, snapshotSource, notifier, log, cfg.Sync.StaleAfterDays)
	ingestService := catalogsync.NewIngestService(
		productRepo, feedClient, facetEngine, log, cfg.Sync.IngestBatchSleep)

	// Distributed run lock keeps scheduled runs from overlapping
	runLock, err := cache.NewRedisRunLock(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := runLock.Close(); err != nil {
			log.Error("Error closing Redis connection", zap.Error(err))
		}
	}()

	// Initialize sync scheduler (if enabled)
	schedulerConfig := scheduler.DefaultSyncSchedulerConfig()
	schedulerConfig.Enabled = cfg.Sync.Enabled
	if cfg.Sync.Interval > 0 {
		schedulerConfig.SyncInterval = cfg.Sync.Interval
	}
	if cfg.Sync.LockTTL > 0 {
		schedulerConfig.LockTTL = cfg.Sync.LockTTL
	}
	syncScheduler, err := scheduler.NewSyncScheduler(
		schedulerConfig, syncService, ingestAdapter{service: ingestService, logger: log}, runLock, log)
	if err != nil {
		log.Fatal("Failed to create sync scheduler", zap.Error(err))
	}
	if cfg.Sync.Enabled {
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Sync scheduler started",
			zap.Duration("sync_interval", schedulerConfig.SyncInterval),
			zap.Duration("ingest_interval", schedulerConfig.IngestInterval))
	}

	// Initialize handlers
	closeoutHandler := handler.NewCloseoutHandler(syncService, closeoutRepo)
	catalogHandler := handler.NewCatalogHandler(ingestService)
	cronHandler := handler.NewCronHandler(syncService, ingestService, cfg.Sync.CronSecret)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

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
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(closeoutHandler)
	r.Register(catalogHandler)
	r.Register(cronHandler)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

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

// exportJobSource adapts the async export job flow to the snapshot interface
type exportJobSource struct {
	client *acumatica.Client
}

func (s exportJobSource) FetchSnapshot(ctx context.Context) ([]acumatica.InventoryItem, error) {
	return s.client.FetchSnapshotViaJob(ctx)
}

// ingestAdapter narrows the ingest service to the scheduler's trigger shape
type ingestAdapter struct {
	service *catalogsync.IngestService
	logger  *zap.Logger
}

func (a ingestAdapter) IngestAll(ctx context.Context) error {
	summary, err := a.service.IngestAll(ctx)
	if err != nil {
		return err
	}
	if len(summary.Failures) > 0 {
		a.logger.Warn("catalog ingest finished with failures",
			zap.Int("attempted", summary.Attempted),
			zap.Int("failed", len(summary.Failures)))
	}
	return nil
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
