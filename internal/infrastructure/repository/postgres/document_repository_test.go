package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, version, doc_type").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDScansDocument(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "name", "version", "doc_type", "storage_path", "user_id",
		"status", "error_message", "chunk_count", "created_at", "updated_at",
	}).AddRow("doc-1", "petstore", "1.0", "openapi", "documents/u/doc-1/petstore.yaml", "u",
		"uploaded", "", 12, now, now)

	mock.ExpectQuery("SELECT id, name, version, doc_type").
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if doc.Type != domain.TypeOpenAPI || doc.ChunkCount != 12 {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.EffectiveStatus() != domain.StatusReady {
		t.Errorf("document with chunks must be effectively ready, got %s", doc.EffectiveStatus())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDToleratesNullVersionAndError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "name", "version", "doc_type", "storage_path", "user_id",
		"status", "error_message", "chunk_count", "created_at", "updated_at",
	}).AddRow("doc-2", "manual", nil, "pdf", "documents/u/doc-2/manual.pdf", "u",
		"uploaded", nil, 0, now, now)

	mock.ExpectQuery("SELECT id, name, version, doc_type").
		WithArgs("doc-2").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-2")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if doc.Version != "" || doc.Error != "" {
		t.Errorf("NULL columns must scan as empty strings, got version=%q error=%q", doc.Version, doc.Error)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", string(domain.StatusFailed), "load failed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusFailed, "load failed")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetReadyUpdatesChunkCount(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", string(domain.StatusReady), 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetReady(context.Background(), "doc-1", 7); err != nil {
		t.Fatalf("SetReady returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByUserOrdersByCreationDesc(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "name", "version", "doc_type", "storage_path", "user_id",
		"status", "error_message", "chunk_count", "created_at", "updated_at",
	}).
		AddRow("doc-2", "guide", "", "markdown", "documents/u/doc-2/guide.md", "u", "failed", "no sections", 0, now, now).
		AddRow("doc-1", "petstore", "1.0", "openapi", "documents/u/doc-1/petstore.yaml", "u", "uploaded", "", 0, now.Add(-time.Hour), now)

	mock.ExpectQuery("SELECT id, name, version, doc_type").
		WithArgs("u").
		WillReturnRows(rows)

	docs, err := repo.ListByUser(context.Background(), "u")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "doc-2" {
		t.Errorf("unexpected documents: %+v", docs)
	}
	if docs[0].EffectiveStatus() != domain.StatusFailed {
		t.Errorf("failed document must stay failed, got %s", docs[0].EffectiveStatus())
	}
	if docs[1].EffectiveStatus() != domain.StatusProcessing {
		t.Errorf("uploaded document without chunks must be processing, got %s", docs[1].EffectiveStatus())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
