package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devdocs-ai/devdocs-backend/internal/config"
	"github.com/devdocs-ai/devdocs-backend/internal/core/ports"
	"github.com/devdocs-ai/devdocs-backend/internal/core/usecase"
	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/chunking"
	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/llm/openai"
	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/loader"
	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/queue/nats"
	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/repository/postgres"
	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/resilience"
	"github.com/devdocs-ai/devdocs-backend/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	Analytics ports.AnalyticsStore

	UploadUC  ports.DocumentUploader
	ProcessUC ports.DocumentIngestor
	// AnswerUC keeps its concrete type so binaries can attach observers
	// before serving.
	AnswerUC *usecase.AnswerQuestionUseCase

	closeFn func()
}

// New wires the full dependency graph. NATS is optional: when the broker is
// unreachable the API falls back to inline ingestion instead of refusing to
// start.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx, cfg.EmbeddingDimension); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	chunkStore := postgres.NewChunkRepository(db, cfg.EmbeddingDimension)
	analytics := postgres.NewAnalyticsRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	var queue ports.MessageQueue
	natsQueue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		slog.Warn("nats_unavailable", "url", cfg.NATSURL, "error", err)
	} else {
		queue = natsQueue
	}

	llmClient := openai.NewWithOptions(
		cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIGenModel, cfg.OpenAIEmbedModel,
		cfg.EmbeddingDimension,
		openai.Options{ResilienceExecutor: executor},
	)
	embedder := openai.NewEmbedder(llmClient)
	generator := openai.NewGenerator(llmClient)

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	sections := loader.NewRegistry()

	processUC := usecase.NewProcessUploadUseCase(repo, chunkStore, storage, sections, chunker, embedder)
	uploadUC := usecase.NewUploadDocumentUseCase(repo, storage, queue, processUC)
	answerUC := usecase.NewAnswerQuestionUseCase(repo, chunkStore, embedder, generator, analytics, usecase.AnswerOptions{
		MatchThreshold:  cfg.MatchThreshold,
		MatchTopK:       cfg.MatchTopK,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
	})

	return &App{
		Config:    cfg,
		Queue:     queue,
		Repo:      repo,
		Analytics: analytics,

		UploadUC:  uploadUC,
		ProcessUC: processUC,
		AnswerUC:  answerUC,

		closeFn: func() {
			if natsQueue != nil {
				natsQueue.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
