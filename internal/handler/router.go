package handler

import (
	"net/http"

	"github.com/partforge/ooxmlsvc/internal/middleware"
)

// NewRouter builds the HTTP mux with all routes and the standard middleware
// chain (logging, recovery, CORS, body-size ceiling), generalized from the
// teacher's router (mesocyclon-docx-api/internal/handler/router.go).
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.Health)
	mux.HandleFunc("POST /unwrap", s.Unwrap)
	mux.HandleFunc("POST /rewrap", s.Rewrap)
	mux.HandleFunc("POST /process", s.Process)
	mux.HandleFunc("POST /session", s.Session)

	var h http.Handler = mux
	h = middleware.MaxBodySize(s.MaxInlineSize)(h)
	h = middleware.CORS(h)
	h = middleware.Recovery(s.Logger)(h)
	h = middleware.Logging(s.Logger)(h)

	return h
}
