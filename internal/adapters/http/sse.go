package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// sseStream frames answer events as server-sent events. Each event is one
// JSON object on a data: line; the metadata event doubles as the terminator.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseStream{w: w, flusher: flusher}, nil
}

func (s *sseStream) Send(event domain.AnswerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sse event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write sse event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

func (s *sseStream) SendError(cause error) error {
	return s.Send(domain.AnswerEvent{Type: "error", Content: cause.Error()})
}
