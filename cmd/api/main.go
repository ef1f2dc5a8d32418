package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/bufete-api/docs" // Swagger docs
	"github.com/sjperalta/bufete-api/internal/config"
	"github.com/sjperalta/bufete-api/internal/database"
	"github.com/sjperalta/bufete-api/internal/fixtures"
	"github.com/sjperalta/bufete-api/internal/handlers"
	"github.com/sjperalta/bufete-api/internal/jobs"
	"github.com/sjperalta/bufete-api/internal/metrics"
	"github.com/sjperalta/bufete-api/internal/middleware"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/repository"
	"github.com/sjperalta/bufete-api/internal/services"
	"github.com/sjperalta/bufete-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @title Bufete API
// @version 1.0
// @description Role-scoped activity log, expenses and time tracking for a law firm back office

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		db    *gorm.DB
		repos *repository.Repositories
	)
	if cfg.HasDatabase() {
		db, err = database.Connect(cfg.DatabaseURL, cfg.Environment)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		repos = repository.NewRepositories(db)
		logger.Info("Connected to database")
	} else {
		logger.Warn("DATABASE_URL not set, records are kept in memory only")
	}

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, cfg)

	if cfg.SeedFile != "" {
		if err := seed(svcs, cfg.SeedFile); err != nil {
			logger.Error("Failed to load seed file", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	if repos != nil {
		svcs.Job.ScheduleRefresh(cfg.RefreshInterval)
		logger.Info("Scheduled record refresh", "interval", cfg.RefreshInterval)
	}

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if db != nil {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

// seed loads fixtures into memory. With a database they are also picked up
// by the refresh job once cmd/seed has written them.
func seed(svcs *services.Services, path string) error {
	set, err := fixtures.Load(path)
	if err != nil {
		return err
	}
	if err := svcs.Audit.Seed(set.Audits); err != nil {
		return err
	}
	if err := svcs.Expense.Seed(set.Expenses); err != nil {
		return err
	}
	if err := svcs.TimeEntry.Seed(set.TimeEntries); err != nil {
		return err
	}
	logger.Info("Loaded seed file", "file", path, "records", set.Len())
	return nil
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Listings are open to every authenticated role; each role's
			// policy decides what it sees.
			protected.GET("/audits", h.Audit.Index)
			protected.GET("/audits/export", h.Audit.Export)
			protected.GET("/expenses", h.Expense.Index)
			protected.POST("/expenses", h.Expense.Create)
			protected.GET("/time_entries", h.TimeEntry.Index)
			protected.POST("/time_entries", h.TimeEntry.Create)

			protected.GET("/roles", h.Role.Index)
			protected.GET("/roles/:role", h.Role.Show)
			protected.GET("/me/policy", h.Role.Me)

			// Ingestion from other modules
			ingest := protected.Group("")
			ingest.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSystem))
			{
				ingest.POST("/audits", h.Audit.Create)
			}

			admin := protected.Group("/jobs")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/status", h.Job.Status)
				admin.POST("/refresh", h.Job.Refresh)
			}
		}
	}

	return router
}
