package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "uploaded"
	StatusReady    DocumentStatus = "ready"
	StatusFailed   DocumentStatus = "failed"

	// StatusProcessing is never persisted: a worker crashing mid-flight must
	// not leave a stuck sentinel row. It is derived at read time for documents
	// that are neither ready nor failed.
	StatusProcessing DocumentStatus = "processing"
)

type DocumentType string

const (
	TypeOpenAPI  DocumentType = "openapi"
	TypePDF      DocumentType = "pdf"
	TypeMarkdown DocumentType = "markdown"
)

type Document struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Version     string         `json:"version,omitempty"`
	Type        DocumentType   `json:"type"`
	StoragePath string         `json:"storage_path"`
	UserID      string         `json:"user_id,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	ChunkCount  int            `json:"chunk_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// EffectiveStatus derives the user-facing status. Chunk existence is the
// authoritative readiness signal; the stored flag is advisory.
func (d *Document) EffectiveStatus() DocumentStatus {
	switch {
	case d.ChunkCount > 0:
		return StatusReady
	case d.Status == StatusFailed:
		return StatusFailed
	case d.Status == StatusReady:
		return StatusReady
	default:
		return StatusProcessing
	}
}

// Section is one structured unit of a loaded document (an endpoint, a PDF
// page, a markdown heading block) before chunking.
type Section struct {
	Text     string
	Metadata map[string]any
}

// Chunk is the unit of retrieval: a bounded span of section text with
// inherited metadata and a fixed-dimension embedding.
type Chunk struct {
	DocID      string
	ChunkIndex int
	Text       string
	Metadata   map[string]any
	Embedding  []float32
}

// UploadEvent is the payload published on upload and consumed by the worker.
// Delivery is at-least-once; processing must tolerate duplicates.
type UploadEvent struct {
	DocID       string       `json:"doc_id"`
	StoragePath string       `json:"storage_path"`
	DocType     DocumentType `json:"doc_type"`
	Filename    string       `json:"filename"`
}
