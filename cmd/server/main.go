package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statement-ingest/internal/config"
	"statement-ingest/internal/database"
	"statement-ingest/internal/handlers"
	custommw "statement-ingest/internal/middleware"
	"statement-ingest/internal/repositories"
	"statement-ingest/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}

	// Repositories
	txnRepo := repositories.NewTransactionRepository(db)
	jobRepo := repositories.NewImportJobRepository(db)

	// Shared pipeline infrastructure
	importLogger := services.NewImportLogger(logger)
	metrics := services.NewPrometheusMetrics()
	breaker := services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig())
	pageCache := services.NewPageCache(cfg.Pipeline.PageCacheTTL)

	// Pipeline services
	detector := services.NewFormatDetector()
	normalizer := services.NewNormalizer()
	mapper := services.NewFormatMapper(normalizer)
	parser := services.NewStatementParser(cfg.Pipeline.CSVChunkSize)
	fetcher := services.NewTransactionFetcher(txnRepo, pageCache, importLogger, metrics, services.FetcherConfig{
		PageSize:    cfg.Pipeline.FetchPageSize,
		MaxRows:     cfg.Pipeline.FetchMaxRows,
		MaxDuration: cfg.Pipeline.FetchMaxDuration,
		PageTimeout: cfg.Pipeline.FetchPageTimeout,
	})
	uploader := services.NewBatchUploader(txnRepo, breaker, metrics, importLogger,
		cfg.Pipeline.UploadChunkSize, cfg.Pipeline.UploadConcurrency)
	classifierClient := services.NewClassifierClient(cfg.Classifier.URL, cfg.Classifier.AuthToken)
	classifier := services.NewBackgroundClassifier(classifierClient, importLogger, metrics, cfg.Classifier.Timeout)
	importService := services.NewImportService(
		detector, parser, mapper, fetcher, uploader, classifier, pageCache,
		txnRepo, jobRepo, importLogger, metrics,
	)

	// Handlers
	importHandler := handlers.NewImportHandler(importService, cfg.Pipeline.MaxUploadBytes)
	transactionHandler := handlers.NewTransactionHandler(txnRepo)
	healthHandler := handlers.NewHealthCheckHandler(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler

	e.Use(custommw.RequestID())
	e.Use(custommw.PanicRecovery())
	e.Use(custommw.SecurityHeaders())
	e.Use(custommw.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", custommw.RequireAuth(cfg.JWT.PublicKey, cfg.JWT.Issuer))
	api.POST("/imports", importHandler.CreateImport)
	api.GET("/imports", importHandler.ListImportJobs)
	api.GET("/imports/:id", importHandler.GetImportJob)
	api.GET("/transactions", transactionHandler.ListTransactions)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("starting server", "addr", server.Addr, "environment", cfg.Server.Environment)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	slog.Info("server exited")
}
