package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebreed/formpulse/internal"
	"github.com/calebreed/formpulse/internal/email"
	"github.com/calebreed/formpulse/internal/handler"
	"github.com/calebreed/formpulse/internal/jobs"
	"github.com/calebreed/formpulse/internal/metrics"
	"github.com/calebreed/formpulse/internal/middleware"
	"github.com/calebreed/formpulse/internal/repository"
	"github.com/calebreed/formpulse/internal/service"
	"github.com/calebreed/formpulse/internal/storage"
	"github.com/calebreed/formpulse/internal/worker"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize object storage (QR PNG cache)
	store, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Initialize email delivery
	emailService, err := email.NewSMTPEmailService(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, cfg.BaseURL, logger)
	if err != nil {
		return fmt.Errorf("email initialization failed: %w", err)
	}

	// Initialize services
	userService := service.NewUserService(db, repo, logger)
	accountService := service.NewAccountService(repo, logger)
	projectService := service.NewProjectService(repo, logger, cfg.CountArchivedProjects)
	formService := service.NewFormService(db, repo, logger)
	qrCodeService := service.NewQRCodeService(repo, store, cfg.BaseURL, logger)
	responseService := service.NewResponseService(db, repo, logger)
	usageService := service.NewUsageService(repo, logger, cfg.CountArchivedProjects)
	dashboardService := service.NewDashboardService(repo, logger)
	exportService := service.NewExportService(repo, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(userService, accountService, logger, isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, logger, isSecure)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	formHandler := handler.NewFormHandler(formService, exportService, logger)
	qrCodeHandler := handler.NewQRCodeHandler(qrCodeService, logger)
	responseHandler := handler.NewResponseHandler(responseService, formService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, usageService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Auth routes (public)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", authMw.WithUser(http.HandlerFunc(authHandler.Me)))

	// Public submission surface (no auth; these are the endpoints printed
	// QR codes and embedded widgets talk to)
	mux.HandleFunc("GET /api/public/forms/{formID}", responseHandler.PublicForm)
	mux.HandleFunc("POST /api/public/forms/{formID}/responses", responseHandler.Submit)
	mux.HandleFunc("GET /api/public/forms/{formID}/qr/{shortCode}", qrCodeHandler.Image)

	// Authenticated management surface
	requireAccount := middleware.Stack(authMw.WithUser, authMw.RequireUser, authMw.RequireAccount)

	mux.Handle("POST /api/projects", requireAccount(http.HandlerFunc(projectHandler.Create)))
	mux.Handle("GET /api/projects", requireAccount(http.HandlerFunc(projectHandler.List)))
	mux.Handle("GET /api/projects/{projectID}", requireAccount(http.HandlerFunc(projectHandler.Get)))
	mux.Handle("PATCH /api/projects/{projectID}", requireAccount(http.HandlerFunc(projectHandler.Update)))

	mux.Handle("POST /api/forms", requireAccount(http.HandlerFunc(formHandler.Create)))
	mux.Handle("GET /api/forms", requireAccount(http.HandlerFunc(formHandler.List)))
	mux.Handle("GET /api/forms/{formID}", requireAccount(http.HandlerFunc(formHandler.Get)))
	mux.Handle("PATCH /api/forms/{formID}/status", requireAccount(http.HandlerFunc(formHandler.UpdateStatus)))
	mux.Handle("GET /api/forms/{formID}/responses", requireAccount(http.HandlerFunc(responseHandler.List)))
	mux.Handle("GET /api/forms/{formID}/responses/export", requireAccount(http.HandlerFunc(formHandler.ExportCSV)))
	mux.Handle("POST /api/forms/{formID}/qr", requireAccount(http.HandlerFunc(qrCodeHandler.Generate)))
	mux.Handle("GET /api/forms/{formID}/qr", requireAccount(http.HandlerFunc(qrCodeHandler.List)))

	mux.Handle("GET /api/dashboard", requireAccount(http.HandlerFunc(dashboardHandler.Overview)))
	mux.Handle("GET /api/dashboard/summary", requireAccount(http.HandlerFunc(dashboardHandler.Summary)))
	mux.Handle("GET /api/dashboard/trend", requireAccount(http.HandlerFunc(dashboardHandler.Trend)))
	mux.Handle("GET /api/usage", requireAccount(http.HandlerFunc(dashboardHandler.Usage)))

	// Request logging and metrics wrap everything
	root := middleware.Stack(loggingMw.Handler, metrics.Middleware)(mux)

	// ==========================================================================
	// Background worker
	// ==========================================================================

	var jobWorker *worker.Worker
	if cfg.WorkerEnabled {
		workerCfg := worker.DefaultConfig()
		workerCfg.Concurrency = cfg.WorkerConcurrency
		workerCfg.PollInterval = cfg.WorkerPollInterval
		workerCfg.JobTimeout = cfg.WorkerJobTimeout

		jobWorker, err = worker.New(db, repo, workerCfg, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		jobWorker.Register(jobs.NewWeeklyDigestHandler(repo, emailService, logger))
		jobWorker.Register(jobs.NewSessionCleanupHandler(userService, logger))
		jobWorker.Start(ctx)
	}

	var scheduler *jobs.Scheduler
	if cfg.DigestEnabled {
		scheduler = jobs.NewScheduler(repo, cfg.DigestInterval, logger)
		scheduler.Start(ctx)
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage builds the configured storage backend.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case "s3":
		return storage.NewS3(storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3BucketName,
			PublicURL:       cfg.S3PublicURL,
		}, logger)
	default:
		return storage.NewLocal(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
