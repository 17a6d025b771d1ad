package handler

import (
	"encoding/json"
	"net/http"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/corr"
	"github.com/partforge/ooxmlsvc/internal/document"
	"github.com/partforge/ooxmlsvc/internal/ops"
	"github.com/partforge/ooxmlsvc/internal/session"
	"github.com/partforge/ooxmlsvc/pkg/response"
)

type unwrapRequest struct {
	ZipB64 string `json:"zipB64,omitempty"`
	GCSIn  string `json:"gcsIn,omitempty"`
}

// Unwrap handles POST /unwrap: decompose a document into its manifest
// (§6.1).
func (s *Server) Unwrap(w http.ResponseWriter, r *http.Request) {
	var req unwrapRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	release, appErr := s.guardSession(req.GCSIn, "")
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}
	defer release()

	zipBytes, appErr := s.resolveInput(req.ZipB64, req.GCSIn)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}

	doc, appErr := decodeDocument(zipBytes)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"manifest": doc.ToManifest()})
}

type rewrapRequest struct {
	Manifest *document.Manifest `json:"manifest"`
	GCSIn    string             `json:"gcsIn,omitempty"`
	GCSOut   string             `json:"gcsOut,omitempty"`
	Filename string             `json:"filename,omitempty"`
}

// Rewrap handles POST /rewrap: reassemble a manifest into a document
// (§6.1).
func (s *Server) Rewrap(w http.ResponseWriter, r *http.Request) {
	var req rewrapRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Manifest == nil {
		s.fail(w, r, apierr.New(apierr.CPartContentAmbig, "rewrap requires a manifest", nil))
		return
	}

	release, appErr := s.guardSession(req.GCSIn, req.GCSOut)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}
	defer release()

	doc, err := document.FromManifest(req.Manifest)
	if err != nil {
		s.fail(w, r, apierr.As(err))
		return
	}

	zipBytes, err := doc.Encode()
	if err != nil {
		s.fail(w, r, apierr.As(err))
		return
	}

	zipB64, wroteSession, appErr := s.resolveOutput(zipBytes, req.GCSOut)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}
	if wroteSession {
		response.JSON(w, http.StatusOK, map[string]any{"gcsOut": req.GCSOut})
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"zipB64": zipB64})
}

type processRequest struct {
	ZipB64   string          `json:"zipB64,omitempty"`
	GCSIn    string          `json:"gcsIn,omitempty"`
	Ops      []ops.Operation `json:"ops"`
	GCSOut   string          `json:"gcsOut,omitempty"`
	Filename string          `json:"filename,omitempty"`
}

// Process handles POST /process: decode, apply a batch of Operations, and
// re-encode, in one request (§4.4, §6.1).
func (s *Server) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	release, appErr := s.guardSession(req.GCSIn, req.GCSOut)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}
	defer release()

	zipBytes, appErr := s.resolveInput(req.ZipB64, req.GCSIn)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}

	doc, appErr := decodeDocument(zipBytes)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}

	engine := ops.New(s.OpTimeout)
	report, engErr := engine.Run(r.Context(), doc, req.Ops)
	if engErr != nil {
		// §4.4: a Failed operation aborts the batch and the Document is
		// discarded — the partial report travels with the error.
		id := corr.FromContext(r.Context())
		corr.Log(s.Logger, engErr.WithCorrelation(id))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(apierr.HTTPStatus(engErr.Code))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     false,
			"error":  engErr.WithCorrelation(id),
			"report": report,
		})
		return
	}
	report.Warnings = append(report.Warnings, doc.Validate()...)

	zipBytes, err := doc.Encode()
	if err != nil {
		s.fail(w, r, apierr.As(err))
		return
	}

	payload := map[string]any{"report": report}
	zipB64, wroteSession, appErr := s.resolveOutput(zipBytes, req.GCSOut)
	if appErr != nil {
		s.fail(w, r, appErr)
		return
	}
	if wroteSession {
		payload["gcsOut"] = req.GCSOut
	} else {
		payload["zipB64"] = zipB64
	}
	response.JSON(w, http.StatusOK, payload)
}

// guardSession applies the §4.6 one-in-flight-request-per-session rule for
// every distinct session implied by the request's gcsIn/gcsOut keys,
// returning a release func that must be deferred. Requests naming no
// session (pure inline mode) are unguarded.
func (s *Server) guardSession(gcsIn, gcsOut string) (release func(), appErr *apierr.Error) {
	ids := map[string]struct{}{}
	for _, key := range []string{gcsIn, gcsOut} {
		if id, ok := session.IDFromBlobKey(key); ok {
			ids[id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return func() {}, nil
	}
	if s.Sessions == nil {
		return nil, apierr.New(apierr.S011UpstreamServerErr, "session mode is disabled: no object store configured", nil)
	}

	acquired := make([]string, 0, len(ids))
	for id := range ids {
		if _, err := s.Sessions.Acquire(id); err != nil {
			for _, a := range acquired {
				s.Sessions.Release(a)
			}
			return nil, apierr.As(err)
		}
		acquired = append(acquired, id)
	}
	return func() {
		for _, id := range acquired {
			s.Sessions.Release(id)
		}
	}, nil
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.fail(w, r, apierr.Newf(apierr.V043Validation, nil, "invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, appErr *apierr.Error) {
	id := corr.FromContext(r.Context())
	appErr = appErr.WithCorrelation(id)
	corr.Log(s.Logger, appErr)
	response.Error(w, appErr)
}
