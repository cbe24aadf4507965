package httpadapter

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// headerRequestID is echoed on every response. Inbound values are trusted so
// an id minted by an upstream proxy follows the request through the logs.
const headerRequestID = "X-Request-Id"

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withAccessLog writes one line per request on the default logger. Severity
// follows the response class so 5xx lines show up in error-level views.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		meta := &responseMeta{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(meta, r)

		level := slog.LevelInfo
		switch {
		case meta.status >= 500:
			level = slog.LevelError
		case meta.status >= 400:
			level = slog.LevelWarn
		}
		slog.Default().LogAttrs(r.Context(), level, "request",
			slog.String("request_id", requestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", meta.status),
			slog.Int("bytes", meta.bytes),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", clientAddr(r)),
		)
	})
}

func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// responseMeta captures the final status and body size for the access log.
// Flush and Hijack pass through so the SSE stream keeps working behind it.
type responseMeta struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (m *responseMeta) WriteHeader(status int) {
	if m.wroteHeader {
		return
	}
	m.wroteHeader = true
	m.status = status
	m.ResponseWriter.WriteHeader(status)
}

func (m *responseMeta) Write(b []byte) (int, error) {
	m.wroteHeader = true
	n, err := m.ResponseWriter.Write(b)
	m.bytes += n
	return n, err
}

func (m *responseMeta) Flush() {
	if flusher, ok := m.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (m *responseMeta) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := m.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hijacker.Hijack()
}
