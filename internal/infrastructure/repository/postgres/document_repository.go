package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the document, chunk and analytics tables. The chunk
// table needs the pgvector extension; the dimension is fixed at table
// creation time.
func (r *DocumentRepository) EnsureSchema(ctx context.Context, embeddingDimension int) error {
	if embeddingDimension <= 0 {
		embeddingDimension = 1536
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	query := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	version TEXT,
	doc_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents(user_id);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);

CREATE TABLE IF NOT EXISTS chunks (
	id BIGSERIAL PRIMARY KEY,
	doc_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	chunk_text TEXT NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	embedding vector(%d),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (doc_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);

CREATE TABLE IF NOT EXISTS query_logs (
	id BIGSERIAL PRIMARY KEY,
	query TEXT NOT NULL,
	doc_id TEXT,
	user_id TEXT,
	response_time_ms BIGINT NOT NULL,
	chunk_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS qa_feedback (
	id BIGSERIAL PRIMARY KEY,
	query TEXT NOT NULL,
	answer TEXT NOT NULL,
	was_helpful BOOLEAN NOT NULL,
	notes TEXT,
	doc_id TEXT,
	user_id TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`, embeddingDimension)

	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, name, version, doc_type, storage_path, user_id, status, error_message, chunk_count, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		doc.ID, doc.Name, doc.Version, string(doc.Type), doc.StoragePath, doc.UserID,
		string(doc.Status), doc.Error, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, version, doc_type, storage_path, user_id, status, error_message, chunk_count, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, version, doc_type, storage_path, user_id, status, error_message, chunk_count, created_at, updated_at
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRow(result, id)
}

func (r *DocumentRepository) SetReady(ctx context.Context, id string, chunkCount int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = '', chunk_count = $3, updated_at = $4
WHERE id = $1
`, id, string(domain.StatusReady), chunkCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark document ready: %w", err)
	}
	return requireRow(result, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var docType, status string
	// version and error_message are nullable; rows written outside this
	// repository may carry NULL instead of ''.
	var version, errMessage sql.NullString

	err := row.Scan(
		&doc.ID, &doc.Name, &version, &docType, &doc.StoragePath, &doc.UserID,
		&status, &errMessage, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Version = version.String
	doc.Error = errMessage.String
	doc.Type = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}
