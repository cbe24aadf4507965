package ports

import (
	"context"
	"io"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// DocumentUploader is the inbound contract for document upload orchestration.
type DocumentUploader interface {
	Upload(ctx context.Context, filename, contentType, userID, version string, body io.Reader) (*domain.Document, error)
}

// DocumentIngestor runs the load-chunk-embed-store pipeline for one upload
// event. Re-running for the same document must be idempotent.
type DocumentIngestor interface {
	Ingest(ctx context.Context, ev domain.UploadEvent) error
}

// QuestionAnswerer is the inbound contract for retrieval-based answering.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, docID, userID string) (*domain.Answer, error)
	AnswerStream(ctx context.Context, question, docID, userID string, emit func(domain.AnswerEvent) error) error
	SearchChunks(ctx context.Context, query, docID string, limit int) ([]domain.RetrievedChunk, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Document, error)
}
