package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soilsmart/soilsmart/internal/advisor"
	"github.com/soilsmart/soilsmart/internal/config"
	"github.com/soilsmart/soilsmart/internal/document"
	apphttp "github.com/soilsmart/soilsmart/internal/http"
	"github.com/soilsmart/soilsmart/internal/llm"
	"github.com/soilsmart/soilsmart/internal/logging"
	"github.com/soilsmart/soilsmart/internal/report"
	"github.com/soilsmart/soilsmart/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("telemetry shutdown", "error", err)
		}
	}()

	// The LLM is optional: without it every request uses the fallback engine.
	var (
		model       llm.LLM
		transcriber document.Transcriber
	)
	client, err := newLLM(ctx, cfg)
	switch {
	case err == nil:
		defer client.Close()
		model, transcriber = client, client
		slog.Info("llm enabled", "provider", cfg.LLM.Provider, "model", cfg.Model())
	case errors.Is(err, llm.ErrDisabled):
		slog.Warn("llm disabled, using fallback engine only", "provider", cfg.LLM.Provider)
	default:
		return fmt.Errorf("init llm client: %w", err)
	}

	pdf := report.NewPDFRenderer(cfg.Report.ChromePath, cfg.Report.Timeout)
	if !pdf.Available() {
		slog.Warn("chrome not found, pdf reports disabled")
	}

	handler := apphttp.NewHandler(
		advisor.New(model, cfg.Engine.DefaultBudget),
		document.NewExtractor(transcriber),
		pdf,
		apphttp.Config{MaxUploadBytes: cfg.Server.MaxUploadBytes},
	)
	rateLimiter := apphttp.NewIPRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	e := apphttp.NewServer(handler, rateLimiter, cfg.Server.AllowOrigin)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

func newLLM(ctx context.Context, cfg *config.Config) (*llm.Client, error) {
	if !cfg.LLMEnabled() {
		return nil, llm.ErrDisabled
	}
	prompts, err := llm.LoadPrompts(cfg.LLM.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	slog.Info("prompts loaded", "path", cfg.LLM.PromptsPath)
	return llm.New(ctx, cfg, prompts)
}
