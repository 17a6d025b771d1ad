// Package middleware provides the standard http.Handler wrapper chain
// referenced by the teacher's router (internal/handler/router.go) but never
// itself retrieved with it: structured logging, panic recovery, permissive
// CORS for browser-originated automation clients, and an inline body-size
// ceiling (§4.7, §5).
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/corr"
	"github.com/partforge/ooxmlsvc/pkg/response"
)

// Logging attaches a correlation ID to the request context, logs method,
// path, status, and latency, and exposes the correlation ID via the
// X-Correlation-Id response header on every response (§4.7: "Every response
// includes a correlation ID header").
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := corr.New()
			w.Header().Set("X-Correlation-Id", id)
			ctx := corr.WithID(r.Context(), id)
			r = r.WithContext(ctx)

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("correlation", id),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recovery converts a panic in a handler into a structured A000 response
// instead of a crashed connection, logging the panic value with the
// request's correlation ID.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					id := corr.FromContext(r.Context())
					logger.Error("panic recovered", slog.Any("panic", rec), slog.String("correlation", id))
					err := apierr.New(apierr.AInternal, "internal error", nil).WithCorrelation(id)
					response.Error(w, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows cross-origin requests from any client, since the service
// trusts its transport and performs no end-user authentication (§1
// Non-goals).
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MaxBodySize rejects request bodies larger than limit with S018/413
// before the handler reads them (§4.7, §5: "handlers enforce a … ceiling
// and fail S018 before allocating above it"). Session-backed requests,
// whose bodies are small JSON envelopes referencing out-of-band blobs, are
// unaffected — the limit applies to the raw body the mux reads, not to
// document size.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				id := corr.FromContext(r.Context())
				err := apierr.Newf(apierr.S018Oversize, map[string]string{"limit": strconv.FormatInt(limit, 10)},
					"request body of %d bytes exceeds the %d byte inline limit", r.ContentLength, limit).WithCorrelation(id)
				response.Error(w, err)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
