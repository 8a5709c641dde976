package main

import (
	"log/slog"
	"os"

	"github.com/kamatgc/AI-startup-analyst/internal/config"
	"github.com/kamatgc/AI-startup-analyst/internal/gemini"
	"github.com/kamatgc/AI-startup-analyst/internal/pipeline"
	"github.com/kamatgc/AI-startup-analyst/internal/render"
	"github.com/kamatgc/AI-startup-analyst/internal/server"
)

func main() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	chunkClient, err := gemini.NewClient(gemini.ClientConfig{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Endpoint:    cfg.GeminiEndpoint,
		CallTimeout: cfg.CallTimeout,
		Retry: gemini.RetryPolicy{
			MaxRetries:  cfg.ChunkRetries,
			BackoffBase: cfg.BackoffBase,
			MaxBackoff:  30 * cfg.BackoffBase,
		},
	})
	if err != nil {
		slog.Error("Failed to create analysis client", "error", err)
		os.Exit(1)
	}
	synthClient := chunkClient.WithRetryBudget(cfg.SynthesisRetries)

	orchestrator := pipeline.NewOrchestrator(
		render.NewRenderer(cfg.RenderDPI),
		chunkClient,
		synthClient,
		pipeline.Options{
			ChunkSize:   cfg.ChunkSize,
			Concurrency: cfg.AnalysisConcurrency,
		},
	)

	srv := server.New(cfg, orchestrator)
	if err := srv.Run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
