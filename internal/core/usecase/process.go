package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
	"github.com/devdocs-ai/devdocs-backend/internal/core/ports"
)

// ProcessUploadUseCase runs the ingestion pipeline for one upload event:
// load blob, section, chunk, embed, store. It never records a "processing"
// status; readers derive that from the absence of a terminal state, so a
// crashed worker leaves nothing stuck.
type ProcessUploadUseCase struct {
	repo     ports.DocumentRepository
	chunks   ports.ChunkStore
	storage  ports.BlobStore
	loader   ports.SectionLoader
	chunker  ports.Chunker
	embedder ports.Embedder
}

func NewProcessUploadUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkStore,
	storage ports.BlobStore,
	loader ports.SectionLoader,
	chunker ports.Chunker,
	embedder ports.Embedder,
) *ProcessUploadUseCase {
	return &ProcessUploadUseCase{
		repo:     repo,
		chunks:   chunks,
		storage:  storage,
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
	}
}

// Ingest is idempotent: chunks are upserted by (doc_id, chunk_index) and the
// tail past the new chunk count is trimmed, so re-delivery or re-ingestion
// converges on the same rows.
func (uc *ProcessUploadUseCase) Ingest(ctx context.Context, event domain.UploadEvent) error {
	stored, err := uc.pipeline(ctx, event)
	if err != nil {
		if failErr := uc.markFailed(ctx, event.DocID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SetReady(ctx, event.DocID, stored); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessUploadUseCase) pipeline(ctx context.Context, event domain.UploadEvent) (int, error) {
	raw, err := uc.readBlob(ctx, event.StoragePath)
	if err != nil {
		return 0, err
	}

	sections, err := uc.loader.Load(ctx, event.DocType, raw, event.Filename)
	if err != nil {
		return 0, fmt.Errorf("load sections: %w", err)
	}
	if len(sections) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "load sections", errors.New("document produced no sections"))
	}

	chunks := uc.chunker.Split(sections)
	if len(chunks) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	stored := 0
	for i := range chunks {
		chunks[i].DocID = event.DocID
		chunks[i].ChunkIndex = i
		chunks[i].Embedding = vectors[i]

		if err := uc.chunks.UpsertChunk(ctx, &chunks[i]); err != nil {
			// Partial storage still yields a usable document.
			slog.Warn("chunk_store_failed", "doc_id", event.DocID, "chunk_index", i, "error", err)
			continue
		}
		stored++
	}
	if stored == 0 {
		return 0, fmt.Errorf("failed to store any of %d chunks", len(chunks))
	}

	if err := uc.chunks.DeleteFrom(ctx, event.DocID, len(chunks)); err != nil {
		slog.Warn("chunk_trim_failed", "doc_id", event.DocID, "from_index", len(chunks), "error", err)
	}

	return stored, nil
}

func (uc *ProcessUploadUseCase) readBlob(ctx context.Context, storagePath string) ([]byte, error) {
	rc, err := uc.storage.Get(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read blob", errors.New("empty document"))
	}
	return raw, nil
}

func (uc *ProcessUploadUseCase) markFailed(ctx context.Context, docID string, cause error) error {
	message := cause.Error()
	if len(message) > 500 {
		message = message[:500]
	}
	if err := uc.repo.UpdateStatus(ctx, docID, domain.StatusFailed, message); err != nil {
		return fmt.Errorf("update status to failed: %w", err)
	}
	return nil
}
