package ports

import (
	"context"
	"io"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SetReady(ctx context.Context, id string, chunkCount int) error
}

// ChunkStore persists chunk rows with embeddings and answers similarity
// queries. MatchChunks is the single canonical retrieval contract: strict
// doc filter, minimum-similarity cutoff, top-k, similarity descending.
type ChunkStore interface {
	UpsertChunk(ctx context.Context, chunk *domain.Chunk) error
	DeleteFrom(ctx context.Context, docID string, fromIndex int) error
	CountByDocument(ctx context.Context, docID string) (int, error)
	MatchChunks(ctx context.Context, embedding []float32, docID string, threshold float64, topK int) ([]domain.RetrievedChunk, error)
}

// AnalyticsStore records write-only audit rows.
type AnalyticsStore interface {
	LogQuery(ctx context.Context, entry *domain.QueryLog) error
	SaveFeedback(ctx context.Context, fb *domain.Feedback) error
}

// BlobStore stores source documents.
type BlobStore interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload events with at-least-once delivery.
type MessageQueue interface {
	PublishUploadEvent(ctx context.Context, ev domain.UploadEvent) error
	SubscribeUploadEvents(ctx context.Context, handler func(context.Context, domain.UploadEvent) error) error
}

// SectionLoader turns raw document bytes into structured sections per type.
type SectionLoader interface {
	Load(ctx context.Context, docType domain.DocumentType, raw []byte, filename string) ([]domain.Section, error)
}

// Chunker splits loaded sections into overlapping retrieval-sized chunks.
type Chunker interface {
	Split(sections []domain.Section) []domain.Chunk
}

// Embedder builds fixed-dimension vectors for chunks and query text. When the
// provider is unreachable or unconfigured it degrades to zero vectors of the
// configured dimension instead of failing; Configured reports which mode the
// embedder is in.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Configured() bool
	Dimension() int
}

// AnswerGenerator creates the generative answer from retrieved context. Any
// error (including timeouts) makes the caller fall back to the extractive
// summarizer.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
	Configured() bool
}
