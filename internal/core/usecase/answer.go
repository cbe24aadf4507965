package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
	"github.com/devdocs-ai/devdocs-backend/internal/core/ports"
)

const noContextAnswer = "I couldn't find any relevant information in the documentation to answer your question. Please try rephrasing your question or ensure the document contains relevant content."

// AnswerQuestionUseCase retrieves the most similar chunks of a document and
// synthesizes an answer. Generation is best-effort: any provider failure
// falls back to the extractive summarizer, so a question with retrieved
// context always gets an answer.
type AnswerQuestionUseCase struct {
	repo       ports.DocumentRepository
	chunks     ports.ChunkStore
	embedder   ports.Embedder
	generator  ports.AnswerGenerator
	summarizer *ExtractiveSummarizer
	analytics  ports.AnalyticsStore

	matchThreshold  float64
	matchTopK       int
	generateTimeout time.Duration

	onFallback func(reason string)
}

type AnswerOptions struct {
	MatchThreshold  float64
	MatchTopK       int
	GenerateTimeout time.Duration
}

func NewAnswerQuestionUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkStore,
	embedder ports.Embedder,
	generator ports.AnswerGenerator,
	analytics ports.AnalyticsStore,
	options AnswerOptions,
) *AnswerQuestionUseCase {
	threshold := options.MatchThreshold
	if threshold <= 0 {
		threshold = 0.1
	}
	topK := options.MatchTopK
	if topK <= 0 {
		topK = 5
	}
	timeout := options.GenerateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnswerQuestionUseCase{
		repo:            repo,
		chunks:          chunks,
		embedder:        embedder,
		generator:       generator,
		summarizer:      NewExtractiveSummarizer(),
		analytics:       analytics,
		matchThreshold:  threshold,
		matchTopK:       topK,
		generateTimeout: timeout,
	}
}

// OnGenerationFallback registers a hook invoked with a reason whenever an
// answer comes from the extractive summarizer instead of the generation
// provider.
func (uc *AnswerQuestionUseCase) OnGenerationFallback(fn func(reason string)) {
	uc.onFallback = fn
}

func (uc *AnswerQuestionUseCase) Answer(ctx context.Context, question, docID, userID string) (*domain.Answer, error) {
	started := time.Now()

	matches, err := uc.retrieve(ctx, question, docID)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{Sources: []domain.Source{}}
	if len(matches) == 0 {
		answer.Text = noContextAnswer
	} else {
		answer.Text = uc.synthesize(ctx, question, matches)
		answer.Sources = buildSources(matches)
		answer.ChunkCount = len(matches)
	}
	answer.ResponseTimeMs = time.Since(started).Milliseconds()

	uc.logQuery(ctx, question, docID, userID, answer)
	return answer, nil
}

// AnswerStream emits sources first, then the answer, then metadata. Metadata
// is always last so clients can treat it as the terminator.
func (uc *AnswerQuestionUseCase) AnswerStream(ctx context.Context, question, docID, userID string, emit func(domain.AnswerEvent) error) error {
	started := time.Now()

	matches, err := uc.retrieve(ctx, question, docID)
	if err != nil {
		return err
	}

	var text string
	if len(matches) == 0 {
		text = noContextAnswer
	} else {
		if err := emit(domain.AnswerEvent{Type: domain.EventSources, Content: buildSources(matches)}); err != nil {
			return err
		}
		text = uc.synthesize(ctx, question, matches)
	}

	if err := emit(domain.AnswerEvent{Type: domain.EventAnswer, Content: text}); err != nil {
		return err
	}

	elapsed := time.Since(started).Milliseconds()
	metadata := domain.AnswerMetadata{ResponseTimeMs: elapsed, ChunkCount: len(matches)}
	if err := emit(domain.AnswerEvent{Type: domain.EventMetadata, Content: metadata}); err != nil {
		return err
	}

	uc.logQuery(ctx, question, docID, userID, &domain.Answer{
		Text:           text,
		ChunkCount:     len(matches),
		ResponseTimeMs: elapsed,
	})
	return nil
}

// SearchChunks exposes raw retrieval without synthesis, for debugging and
// relevance tuning.
func (uc *AnswerQuestionUseCase) SearchChunks(ctx context.Context, query, docID string, limit int) ([]domain.RetrievedChunk, error) {
	if limit <= 0 {
		limit = 10
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("empty query"))
	}
	if _, err := uc.repo.GetByID(ctx, docID); err != nil {
		return nil, err
	}

	embedding, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := uc.chunks.MatchChunks(ctx, embedding, docID, uc.matchThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}
	return matches, nil
}

func (uc *AnswerQuestionUseCase) retrieve(ctx context.Context, question, docID string) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("empty question"))
	}
	if strings.TrimSpace(docID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("empty doc_id"))
	}
	if _, err := uc.repo.GetByID(ctx, docID); err != nil {
		return nil, err
	}

	embedding, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	matches, err := uc.chunks.MatchChunks(ctx, embedding, docID, uc.matchThreshold, uc.matchTopK)
	if err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}
	return matches, nil
}

func (uc *AnswerQuestionUseCase) synthesize(ctx context.Context, question string, matches []domain.RetrievedChunk) string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	contextText := strings.Join(texts, "\n\n")

	if uc.generator == nil || !uc.generator.Configured() {
		uc.reportFallback("generator_unconfigured")
		return uc.summarizer.Summarize(question, contextText, matches)
	}

	genCtx, cancel := context.WithTimeout(ctx, uc.generateTimeout)
	defer cancel()

	text, err := uc.generator.GenerateAnswer(genCtx, question, contextText)
	switch {
	case err != nil:
		slog.Warn("generation_fallback", "reason", "generation_failed", "error", err)
		uc.reportFallback("generation_failed")
	case strings.TrimSpace(text) == "":
		slog.Warn("generation_fallback", "reason", "empty_completion")
		uc.reportFallback("empty_completion")
	default:
		return text
	}

	return uc.summarizer.Summarize(question, contextText, matches)
}

func (uc *AnswerQuestionUseCase) reportFallback(reason string) {
	if uc.onFallback != nil {
		uc.onFallback(reason)
	}
}

func buildSources(matches []domain.RetrievedChunk) []domain.Source {
	sources := make([]domain.Source, len(matches))
	for i, m := range matches {
		content := m.Text
		if len([]rune(content)) > 200 {
			content = truncateRunes(content, 200) + "..."
		}
		sources[i] = domain.Source{
			Content:    content,
			Metadata:   m.Metadata,
			Similarity: m.Similarity,
		}
	}
	return sources
}

func (uc *AnswerQuestionUseCase) logQuery(ctx context.Context, question, docID, userID string, answer *domain.Answer) {
	if uc.analytics == nil {
		return
	}
	entry := &domain.QueryLog{
		Query:          question,
		DocID:          docID,
		UserID:         userID,
		ResponseTimeMs: answer.ResponseTimeMs,
		ChunkCount:     answer.ChunkCount,
	}
	if err := uc.analytics.LogQuery(ctx, entry); err != nil {
		slog.Warn("query_log_failed", "doc_id", docID, "error", err)
	}
}
