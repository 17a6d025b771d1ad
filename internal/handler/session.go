package handler

import (
	"net/http"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/pkg/response"
)

// Session handles POST /session: allocate a Session and its signed URLs
// (§4.6, §6.1). Fails with a terminal error if no object store is
// configured, since session mode is disabled in that deployment.
func (s *Server) Session(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		s.fail(w, r, apierr.New(apierr.S011UpstreamServerErr, "session mode is disabled: no object store configured", nil))
		return
	}

	sess, err := s.Sessions.Create()
	if err != nil {
		s.fail(w, r, apierr.As(err))
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"id":          sess.ID,
		"uploadUrl":   sess.UploadURL,
		"downloadUrl": sess.DownloadURL,
		"gcsIn":       sess.GCSIn,
		"gcsOut":      sess.GCSOut,
		"expiresAt":   sess.ExpiresAt,
	})
}
