package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// ChunkRepository stores chunk rows with pgvector embeddings and serves
// similarity retrieval over them.
type ChunkRepository struct {
	db        *sql.DB
	dimension int
}

func NewChunkRepository(db *sql.DB, dimension int) *ChunkRepository {
	if dimension <= 0 {
		dimension = 1536
	}
	return &ChunkRepository{db: db, dimension: dimension}
}

func (r *ChunkRepository) UpsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	if len(chunk.Embedding) != r.dimension {
		return fmt.Errorf("chunk %s/%d embedding has %d dimensions, want %d: %w",
			chunk.DocID, chunk.ChunkIndex, len(chunk.Embedding), r.dimension, domain.ErrInvalidInput)
	}

	metadataJSON, err := json.Marshal(metadataOrEmpty(chunk.Metadata))
	if err != nil {
		return fmt.Errorf("marshal chunk metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO chunks (doc_id, chunk_index, chunk_text, metadata, embedding)
VALUES ($1, $2, $3, $4, $5::vector)
ON CONFLICT (doc_id, chunk_index)
DO UPDATE SET chunk_text = EXCLUDED.chunk_text, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding
`, chunk.DocID, chunk.ChunkIndex, chunk.Text, metadataJSON, vectorLiteral(chunk.Embedding))
	if err != nil {
		return fmt.Errorf("upsert chunk: %w", err)
	}
	return nil
}

// DeleteFrom removes chunks at or past fromIndex. Re-ingesting a shorter
// document upserts the new chunks and then trims the stale tail.
func (r *ChunkRepository) DeleteFrom(ctx context.Context, docID string, fromIndex int) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM chunks WHERE doc_id = $1 AND chunk_index >= $2
`, docID, fromIndex)
	if err != nil {
		return fmt.Errorf("delete trailing chunks: %w", err)
	}
	return nil
}

func (r *ChunkRepository) CountByDocument(ctx context.Context, docID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE doc_id = $1`, docID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// MatchChunks returns up to topK chunks of the document whose cosine
// similarity to the query embedding meets the threshold, most similar first.
func (r *ChunkRepository) MatchChunks(ctx context.Context, embedding []float32, docID string, threshold float64, topK int) ([]domain.RetrievedChunk, error) {
	if len(embedding) != r.dimension {
		return nil, fmt.Errorf("query embedding has %d dimensions, want %d: %w",
			len(embedding), r.dimension, domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = 5
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT doc_id, chunk_index, chunk_text, metadata, 1 - (embedding <=> $1::vector) AS similarity
FROM chunks
WHERE doc_id = $2 AND 1 - (embedding <=> $1::vector) >= $3
ORDER BY similarity DESC
LIMIT $4
`, vectorLiteral(embedding), docID, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}
	defer rows.Close()

	var matches []domain.RetrievedChunk
	for rows.Next() {
		var chunk domain.RetrievedChunk
		var metadataRaw []byte
		if err := rows.Scan(&chunk.DocID, &chunk.ChunkIndex, &chunk.Text, &metadataRaw, &chunk.Similarity); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
		}
		matches = append(matches, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func metadataOrEmpty(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}

// vectorLiteral renders a pgvector input literal, e.g. [0.1,0.2,0.3].
func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
