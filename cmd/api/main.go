package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/devdocs-ai/devdocs-backend/internal/adapters/http"
	"github.com/devdocs-ai/devdocs-backend/internal/bootstrap"
	"github.com/devdocs-ai/devdocs-backend/internal/config"
	"github.com/devdocs-ai/devdocs-backend/internal/observability/logging"
	"github.com/devdocs-ai/devdocs-backend/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.New("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	app.AnswerUC.OnGenerationFallback(func(reason string) {
		httpMetrics.RecordRAGFallback("api", reason)
	})
	router := httpadapter.NewRouter(
		app.UploadUC,
		app.AnswerUC,
		app.Repo,
		app.Analytics,
		httpMetrics,
		httpadapter.RouterOptions{
			RateLimitRPS:   float64(cfg.APIRateLimitRPS),
			RateLimitBurst: cfg.APIRateLimitBurst,
			MaxInFlight:    cfg.APIMaxInFlight,
		},
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
