package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
	"github.com/devdocs-ai/devdocs-backend/internal/core/ports"
	"github.com/devdocs-ai/devdocs-backend/internal/observability/metrics"
)

const serviceName = "api"

// maxUploadBytes caps multipart uploads; documentation files beyond this are
// almost certainly mistakes.
const maxUploadBytes = 50 << 20

type Router struct {
	uploader  ports.DocumentUploader
	answerer  ports.QuestionAnswerer
	reader    ports.DocumentReader
	analytics ports.AnalyticsStore
	metrics   *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

func NewRouter(
	uploader ports.DocumentUploader,
	answerer ports.QuestionAnswerer,
	reader ports.DocumentReader,
	analytics ports.AnalyticsStore,
	httpMetrics *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	return &Router{
		uploader:       uploader,
		answerer:       answerer,
		reader:         reader,
		analytics:      analytics,
		metrics:        httpMetrics,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxInFlight:    options.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/upload", rt.uploadDocument)
	mux.HandleFunc("/documents", rt.listDocuments)
	mux.HandleFunc("/documents/", rt.getDocumentByID)
	mux.HandleFunc("/ask", rt.ask)
	mux.HandleFunc("/ask/stream", rt.askStream)
	mux.HandleFunc("/search/", rt.searchChunks)
	mux.HandleFunc("/feedback", rt.saveFeedback)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return withRequestID(withAccessLog(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.uploader.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		r.FormValue("user_id"),
		r.FormValue("version"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, presentDocument(doc))
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		userID = "anonymous"
	}

	docs, err := rt.reader.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	presented := make([]*domain.Document, len(docs))
	for i, doc := range docs {
		presented[i] = presentDocument(doc)
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": presented})
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presentDocument(doc))
}

type askRequest struct {
	Question string `json:"question"`
	DocID    string `json:"doc_id"`
	UserID   string `json:"user_id"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := decodeAskRequest(w, r)
	if !ok {
		return
	}

	started := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question, req.DocID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(serviceName, "/ask", answer.ChunkCount, time.Since(started))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) askStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := decodeAskRequest(w, r)
	if !ok {
		return
	}

	stream, err := newSSEStream(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	started := time.Now()
	chunkCount := 0
	err = rt.answerer.AnswerStream(r.Context(), req.Question, req.DocID, req.UserID, func(event domain.AnswerEvent) error {
		if metadata, ok := event.Content.(domain.AnswerMetadata); ok {
			chunkCount = metadata.ChunkCount
		}
		return stream.Send(event)
	})
	if err != nil {
		// Headers are already sent; the error travels in-band.
		_ = stream.SendError(err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(serviceName, "/ask/stream", chunkCount, time.Since(started))
	}
}

func (rt *Router) searchChunks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	docID := strings.TrimPrefix(r.URL.Path, "/search/")
	if docID == "" || strings.Contains(docID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	query := r.URL.Query().Get("query")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	matches, err := rt.answerer.SearchChunks(r.Context(), query, docID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []domain.RetrievedChunk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": matches, "count": len(matches)})
}

type feedbackRequest struct {
	Query      string `json:"query"`
	Answer     string `json:"answer"`
	WasHelpful bool   `json:"was_helpful"`
	Notes      string `json:"notes"`
	DocID      string `json:"doc_id"`
	UserID     string `json:"user_id"`
}

func (rt *Router) saveFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	err := rt.analytics.SaveFeedback(r.Context(), &domain.Feedback{
		Query:      req.Query,
		Answer:     req.Answer,
		WasHelpful: req.WasHelpful,
		Notes:      req.Notes,
		DocID:      req.DocID,
		UserID:     req.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

func decodeAskRequest(w http.ResponseWriter, r *http.Request) (askRequest, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return req, false
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return req, false
	}
	if strings.TrimSpace(req.DocID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "doc_id is required"})
		return req, false
	}
	return req, true
}

// presentDocument returns a copy with the derived status so the stored flag
// never leaks a half-processed state to clients.
func presentDocument(doc *domain.Document) *domain.Document {
	presented := *doc
	presented.Status = doc.EffectiveStatus()
	return &presented
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
