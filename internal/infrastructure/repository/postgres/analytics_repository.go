package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// AnalyticsRepository records query logs and answer feedback. Both are
// best-effort from the caller's point of view; failures here must never fail
// the user request.
type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) LogQuery(ctx context.Context, entry *domain.QueryLog) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO query_logs (query, doc_id, user_id, response_time_ms, chunk_count)
VALUES ($1, $2, $3, $4, $5)
`, entry.Query, entry.DocID, entry.UserID, entry.ResponseTimeMs, entry.ChunkCount)
	if err != nil {
		return fmt.Errorf("insert query log: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) SaveFeedback(ctx context.Context, feedback *domain.Feedback) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO qa_feedback (query, answer, was_helpful, notes, doc_id, user_id)
VALUES ($1, $2, $3, $4, $5, $6)
`, feedback.Query, feedback.Answer, feedback.WasHelpful, feedback.Notes, feedback.DocID, feedback.UserID)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}
