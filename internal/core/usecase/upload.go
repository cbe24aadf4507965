package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
	"github.com/devdocs-ai/devdocs-backend/internal/core/ports"
)

var extensionTypes = map[string]domain.DocumentType{
	".yaml":     domain.TypeOpenAPI,
	".yml":      domain.TypeOpenAPI,
	".json":     domain.TypeOpenAPI,
	".pdf":      domain.TypePDF,
	".md":       domain.TypeMarkdown,
	".markdown": domain.TypeMarkdown,
}

// UploadDocumentUseCase accepts a document, persists the blob and the
// metadata row, and hands processing off to the queue. When the queue is
// absent or publishing fails, it ingests inline so an upload never strands a
// document in limbo.
type UploadDocumentUseCase struct {
	repo     ports.DocumentRepository
	storage  ports.BlobStore
	queue    ports.MessageQueue
	ingestor ports.DocumentIngestor
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.BlobStore,
	queue ports.MessageQueue,
	ingestor ports.DocumentIngestor,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		repo:     repo,
		storage:  storage,
		queue:    queue,
		ingestor: ingestor,
	}
}

func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	filename, contentType, userID, version string,
	body io.Reader,
) (*domain.Document, error) {
	docType, err := resolveDocType(filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		userID = "anonymous"
	}

	id := uuid.NewString()
	safeName := sanitizeFilename(filename)
	storagePath := fmt.Sprintf("documents/%s/%s/%s", sanitizeFilename(userID), id, safeName)
	now := time.Now().UTC()

	if err := uc.storage.Put(ctx, storagePath, body, contentType); err != nil {
		return nil, fmt.Errorf("save to blob storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Name:        filename,
		Version:     version,
		Type:        docType,
		StoragePath: storagePath,
		UserID:      userID,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	event := domain.UploadEvent{
		DocID:       doc.ID,
		StoragePath: doc.StoragePath,
		DocType:     doc.Type,
		Filename:    safeName,
	}

	if uc.queue != nil {
		err := uc.queue.PublishUploadEvent(ctx, event)
		if err == nil {
			return doc, nil
		}
		slog.Warn("upload_publish_failed", "doc_id", doc.ID, "error", err)
	}

	// Inline fallback keeps single-binary deployments working without a broker.
	if uc.ingestor == nil {
		return nil, fmt.Errorf("no queue and no inline ingestor configured")
	}
	if err := uc.ingestor.Ingest(ctx, event); err != nil {
		// The document row records the failure; the upload itself succeeded.
		slog.Error("inline_ingest_failed", "doc_id", doc.ID, "error", err)
	}
	return doc, nil
}

func resolveDocType(filename string) (domain.DocumentType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	docType, ok := extensionTypes[ext]
	if !ok {
		return "", fmt.Errorf("file extension %q: %w", ext, domain.ErrUnsupportedType)
	}
	return docType, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
