// Package handler implements the HTTP Surface (C7): the five JSON-over-HTTP
// endpoints documented in §6.1, wired to the document, ops, and session
// packages. It replaces the teacher's docx-only PackagingHandler
// (mesocyclon-docx-api/internal/handler/packaging.go) with the
// format-agnostic unwrap/rewrap/process/session/health contract this spec
// requires, keeping the teacher's constructor-injected-service shape.
package handler

import (
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/document"
	"github.com/partforge/ooxmlsvc/internal/session"
)

// Server holds the dependencies every endpoint needs. One Server instance
// is constructed at startup and shared across requests; per Design Note 9
// it carries no per-request mutable state itself — each handler method
// builds and discards its own Document.
type Server struct {
	Logger        *slog.Logger
	Sessions      *session.Store
	OpTimeout     time.Duration
	MaxInlineSize int64
	Version       string
	startedAt     time.Time
}

// NewServer constructs a Server, recording its start time for /health's
// uptimeMs.
func NewServer(logger *slog.Logger, sessions *session.Store, opTimeout time.Duration, maxInlineSize int64, version string) *Server {
	return &Server{
		Logger:        logger,
		Sessions:      sessions,
		OpTimeout:     opTimeout,
		MaxInlineSize: maxInlineSize,
		Version:       version,
		startedAt:     time.Now(),
	}
}

// resolveInput returns the raw ZIP bytes for a request carrying either an
// inline base64 payload or a session's gcsIn reference, per the §6.1
// request shapes shared by unwrap and process.
func (s *Server) resolveInput(zipB64, gcsIn string) ([]byte, *apierr.Error) {
	if zipB64 != "" {
		data, err := base64.StdEncoding.DecodeString(zipB64)
		if err != nil {
			return nil, apierr.Newf(apierr.CBadZip, nil, "invalid base64 in zipB64: %v", err)
		}
		return data, nil
	}
	if gcsIn != "" {
		if s.Sessions == nil {
			return nil, apierr.New(apierr.S011UpstreamServerErr, "session mode is disabled: no object store configured", map[string]string{"gcsIn": gcsIn})
		}
		data, err := s.Sessions.Blobs().Get(gcsIn)
		if err != nil {
			return nil, apierr.Newf(apierr.S011UpstreamServerErr, map[string]string{"gcsIn": gcsIn}, "reading session input: %v", err)
		}
		return data, nil
	}
	return nil, apierr.New(apierr.CBadZip, "request must supply either zipB64 or gcsIn", nil)
}

// resolveOutput writes the given bytes either inline (returned as base64)
// or to a session's gcsOut blob, per the §6.1 response shapes.
func (s *Server) resolveOutput(data []byte, gcsOut string) (zipB64 string, wroteSession bool, appErr *apierr.Error) {
	if gcsOut != "" {
		if s.Sessions == nil {
			return "", false, apierr.New(apierr.S011UpstreamServerErr, "session mode is disabled: no object store configured", map[string]string{"gcsOut": gcsOut})
		}
		if err := s.Sessions.Blobs().Put(gcsOut, data); err != nil {
			return "", false, apierr.Newf(apierr.S011UpstreamServerErr, map[string]string{"gcsOut": gcsOut}, "writing session output: %v", err)
		}
		return "", true, nil
	}
	return base64.StdEncoding.EncodeToString(data), false, nil
}

// decodeDocument is the shared unwrap step every endpoint that takes raw
// ZIP bytes funnels through.
func decodeDocument(zipBytes []byte) (*document.Document, *apierr.Error) {
	doc, err := document.Decode(zipBytes)
	if err != nil {
		return nil, apierr.As(err)
	}
	return doc, nil
}
