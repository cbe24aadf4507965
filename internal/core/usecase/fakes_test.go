package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*domain.Document

	createErr error
	getErr    error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (f *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) ListByUser(_ context.Context, userID string) ([]*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Document
	for _, doc := range f.docs {
		if doc.UserID == userID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDocumentRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	doc.Status = status
	doc.Error = errMessage
	return nil
}

func (f *fakeDocumentRepo) SetReady(_ context.Context, id string, chunkCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	doc.Status = domain.StatusReady
	doc.Error = ""
	doc.ChunkCount = chunkCount
	return nil
}

type fakeChunkStore struct {
	mu     sync.Mutex
	chunks map[string]map[int]domain.Chunk

	upsertErr   func(chunkIndex int) error
	matches     []domain.RetrievedChunk
	matchErr    error
	lastTopK    int
	lastDocID   string
	deletedFrom map[string]int
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{
		chunks:      make(map[string]map[int]domain.Chunk),
		deletedFrom: make(map[string]int),
	}
}

func (f *fakeChunkStore) UpsertChunk(_ context.Context, chunk *domain.Chunk) error {
	if f.upsertErr != nil {
		if err := f.upsertErr(chunk.ChunkIndex); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chunks[chunk.DocID] == nil {
		f.chunks[chunk.DocID] = make(map[int]domain.Chunk)
	}
	f.chunks[chunk.DocID][chunk.ChunkIndex] = *chunk
	return nil
}

func (f *fakeChunkStore) DeleteFrom(_ context.Context, docID string, fromIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedFrom[docID] = fromIndex
	for idx := range f.chunks[docID] {
		if idx >= fromIndex {
			delete(f.chunks[docID], idx)
		}
	}
	return nil
}

func (f *fakeChunkStore) CountByDocument(_ context.Context, docID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks[docID]), nil
}

func (f *fakeChunkStore) MatchChunks(_ context.Context, _ []float32, docID string, _ float64, topK int) ([]domain.RetrievedChunk, error) {
	f.lastDocID = docID
	f.lastTopK = topK
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	return f.matches, nil
}

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	putErr error
	getErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[path] = raw
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, path string) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.blobs[path]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", path)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type fakeQueue struct {
	published  []domain.UploadEvent
	publishErr error
}

func (f *fakeQueue) PublishUploadEvent(_ context.Context, event domain.UploadEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakeQueue) SubscribeUploadEvents(ctx context.Context, _ func(context.Context, domain.UploadEvent) error) error {
	<-ctx.Done()
	return nil
}

type fakeIngestor struct {
	events []domain.UploadEvent
	err    error
}

func (f *fakeIngestor) Ingest(_ context.Context, event domain.UploadEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeSectionLoader struct {
	sections []domain.Section
	err      error
}

func (f *fakeSectionLoader) Load(_ context.Context, _ domain.DocumentType, _ []byte, _ string) ([]domain.Section, error) {
	return f.sections, f.err
}

type fakeChunker struct {
	chunks []domain.Chunk
}

func (f *fakeChunker) Split(_ []domain.Section) []domain.Chunk {
	out := make([]domain.Chunk, len(f.chunks))
	copy(out, f.chunks)
	return out
}

type fakeEmbedder struct {
	dimension  int
	configured bool
	err        error
	queries    []string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, f.dimension)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	vectors, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) Configured() bool { return f.configured }

func (f *fakeEmbedder) Dimension() int { return f.dimension }

type fakeGenerator struct {
	answer     string
	err        error
	configured bool
	calls      int
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *fakeGenerator) Configured() bool { return f.configured }

type fakeAnalytics struct {
	logs     []domain.QueryLog
	feedback []domain.Feedback
	logErr   error
}

func (f *fakeAnalytics) LogQuery(_ context.Context, entry *domain.QueryLog) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeAnalytics) SaveFeedback(_ context.Context, feedback *domain.Feedback) error {
	f.feedback = append(f.feedback, *feedback)
	return nil
}
