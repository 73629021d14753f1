// Package web provides the mock upstream server used to exercise
// definition files locally and in tests. Every route echoes the
// request back as JSON, so extractions can be inspected end to end
// without a real upstream.
package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxEchoBytes caps how much of a request body the echo reads back.
const maxEchoBytes = 10 << 20 // 10 MB

// EchoResponse mirrors the incoming request.
type EchoResponse struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   map[string]any    `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body,omitempty"`
}

// Deps configures the mock router.
type Deps struct {
	Logger zerolog.Logger

	// MetricsHandler is mounted at MetricsPath when non-nil.
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter builds the mock server router.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, deps.MetricsHandler)
	}

	r.Handle("/*", http.HandlerFunc(Echo))

	return r
}

// Echo answers any request with a JSON mirror of it.
func Echo(w http.ResponseWriter, r *http.Request) {
	resp := EchoResponse{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   flattenValues(r.URL.Query()),
		Headers: make(map[string]string, len(r.Header)),
	}
	for k, vs := range r.Header {
		if len(vs) > 0 {
			resp.Headers[k] = vs[0]
		}
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEchoBytes))
	if err == nil && len(raw) > 0 {
		var decoded any
		if json.Unmarshal(raw, &decoded) == nil {
			resp.Body = decoded
		} else {
			resp.Body = string(raw)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// flattenValues keeps single-valued params as strings and repeated
// params as lists, matching how callers usually read them back.
func flattenValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			out[k] = vs[0]
		default:
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			out[k] = list
		}
	}
	return out
}

// NewLoggingMiddleware creates a request logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
