package handler

import (
	"net/http"
	"time"

	"github.com/partforge/ooxmlsvc/pkg/response"
)

// Health handles GET /health (§6.1): {ok, version, uptimeMs}.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"version":  s.Version,
		"uptimeMs": time.Since(s.startedAt).Milliseconds(),
	})
}
