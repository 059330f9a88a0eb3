package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/services"
	"github.com/SscSPs/spice_ledger/internal/handlers"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/SscSPs/spice_ledger/internal/platform/config"
	"github.com/SscSPs/spice_ledger/internal/platform/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Spice Ledger API
// @version 1.0
// @description Double-entry general ledger for the trading portals.
// @BasePath /api/v1
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	dispatcher, err := services.NewEventDispatcher(services.EventDispatcherConfig{
		PoolSize:    cfg.EventWorkerPoolSize,
		MaxAttempts: cfg.EventMaxAttempts,
		RetryDelay:  cfg.EventRetryDelay,
		QueueSize:   cfg.EventQueueSize,
	}, log)
	if err != nil {
		return err
	}

	sinks, err := attachEventSinks(ctx, cfg, log, dispatcher, store.repos)
	if err != nil {
		return err
	}
	defer sinks.close()

	container := services.NewServiceContainer(cfg, *store.repos, dispatcher)

	if err := seedChart(ctx, cfg, log, container.Account); err != nil {
		return err
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(log), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.UserIDHeader},
		ExposeHeaders: []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	handlers.RegisterRoutes(r, container, store.probe, middleware.RateLimit(rateLimiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	// Requests are drained; let in-flight events reach their listeners before the sinks close.
	if err := dispatcher.Shutdown(cfg.ShutdownTimeout); err != nil {
		log.Warn("Event dispatcher shutdown incomplete", slog.String("error", err.Error()))
	}
	return nil
}
