// Package session implements the Session Store (C6): opaque tokens backing
// large-file uploads/downloads via signed URLs to external blob storage.
// The store itself holds only metadata — id, blob identifiers, expiry — and
// never document bytes (§5 "Shared resources: none across requests").
package session

import (
	"sync"
	"time"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/corr"
)

// Session is the §3 Session entity.
type Session struct {
	ID          string    `json:"id"`
	GCSIn       string    `json:"gcsIn"`
	GCSOut      string    `json:"gcsOut"`
	UploadURL   string    `json:"uploadUrl"`
	DownloadURL string    `json:"downloadUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`

	inFlight bool
}

// Store is a process-local map of Sessions, protected by a single mutex —
// the only contended lock in the service (§5 "Locking discipline"), held
// only for O(1) map operations, generalized from the teacher's graceful-
// shutdown signal-channel pattern (cmd/server/main.go) into a long-lived
// background sweeper instead of a one-shot signal wait.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	blobs    BlobStore
	urlTTL   time.Duration

	stop chan struct{}
}

// NewStore creates a Store with the given session TTL, signed-URL TTL, and
// blob backend, and starts its background expiry sweep.
func NewStore(ttl, urlTTL time.Duration, blobs BlobStore) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		urlTTL:   urlTTL,
		blobs:    blobs,
		stop:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the background sweep goroutine.
func (s *Store) Close() {
	close(s.stop)
}

func (s *Store) sweepLoop() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

// Create allocates a new Session with a fresh id and signed URLs for both
// directions, returning it (§6.1 POST /session).
func (s *Store) Create() (*Session, error) {
	id := corr.New()
	now := time.Now()
	gcsIn := "in/" + id
	gcsOut := "out/" + id

	uploadURL, err := s.blobs.SignUpload(gcsIn, s.urlTTL)
	if err != nil {
		return nil, apierr.Newf(apierr.S011UpstreamServerErr, map[string]string{"session": id}, "signing upload URL: %v", err)
	}
	downloadURL, err := s.blobs.SignDownload(gcsOut, s.urlTTL)
	if err != nil {
		return nil, apierr.Newf(apierr.S011UpstreamServerErr, map[string]string{"session": id}, "signing download URL: %v", err)
	}

	sess := &Session{
		ID:          id,
		GCSIn:       gcsIn,
		GCSOut:      gcsOut,
		UploadURL:   uploadURL,
		DownloadURL: downloadURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess, nil
}

// Acquire looks up id and marks it in-flight, failing S019 if it is already
// referenced by another in-progress request, or S020 if it does not exist
// or has expired (§4.6 concurrency: "a session may be referenced by at most
// one in-flight request at a time").
func (s *Store) Acquire(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, apierr.New(apierr.S020SessionNotFound, "session not found or expired", map[string]string{"session": id})
	}
	if sess.inFlight {
		return nil, apierr.New(apierr.S019SessionInUse, "session has a request in flight", map[string]string{"session": id})
	}
	sess.inFlight = true
	return sess, nil
}

// Release clears the in-flight flag set by Acquire. Safe to call even if
// the session has since been swept.
func (s *Store) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.inFlight = false
	}
}

// Len reports the number of sessions in the store, including expired ones
// the sweep has not yet removed.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Blobs exposes the underlying BlobStore so handlers can fetch/put session
// payloads directly (unwrap/rewrap/process with gcsIn/gcsOut).
func (s *Store) Blobs() BlobStore { return s.blobs }

// IDFromBlobKey recovers the session id a gcsIn/gcsOut key belongs to,
// so the HTTP layer can apply the §4.6 one-in-flight-request-per-session
// guard from a request that only names blob keys, not a session id
// directly.
func IDFromBlobKey(key string) (id string, ok bool) {
	for _, prefix := range []string{"in/", "out/"} {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			return key[len(prefix):], true
		}
	}
	return "", false
}
