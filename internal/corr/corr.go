// Package corr mints and carries correlation IDs through a request's
// lifetime, and formats the stable ERR[code] log line described in §4.8.
package corr

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

type ctxKey struct{}

// New mints a correlation ID. No UUID library appears anywhere in the
// example corpus, so a 16-byte random hex token is used instead of
// fabricating a dependency — see DESIGN.md.
func New() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure is unrecoverable in practice; fall back to a
		// fixed sentinel rather than panicking mid-request.
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(b[:])
}

// WithID attaches a correlation ID to ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation ID stored in ctx, or "" if absent.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// Log emits the stable "ERR[code] message ctx={…} corr=…" line documented
// in §4.8, at a severity derived from the error's category.
func Log(logger *slog.Logger, err *apierr.Error) {
	level := slog.LevelError
	if apierr.Retryable(err.Code) {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, formatLine(err),
		slog.String("code", string(err.Code)),
		slog.String("correlation", err.Correlation),
		slog.Any("context", err.Context),
	)
}

func formatLine(err *apierr.Error) string {
	keys := make([]string, 0, len(err.Context))
	for k := range err.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+err.Context[k])
	}
	return "ERR[" + string(err.Code) + "] " + err.Message +
		" ctx={" + strings.Join(pairs, ", ") + "} corr=" + err.Correlation
}
