package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BlobStore abstracts the external object store referenced by gcsIn/gcsOut
// (§4.6: "the actual upload/download is done by the client directly against
// an object store using signed URLs; the service only records that a
// session exists"). No cloud SDK appears anywhere in the example corpus
// (see DESIGN.md), so production deployments plug in their own
// implementation; LocalBlobStore below is the stand-in used until one is
// wired, and is adequate for the filesystem-backed demo deployment.
type BlobStore interface {
	// SignUpload returns a URL the client can PUT bytes to for key, valid
	// for ttl.
	SignUpload(key string, ttl time.Duration) (string, error)
	// SignDownload returns a URL the client can GET bytes from for key,
	// valid for ttl.
	SignDownload(key string, ttl time.Duration) (string, error)
	// Get reads the blob stored at key. Used server-side by /unwrap and
	// /process when resolving gcsIn directly rather than via the signed URL
	// (the service-to-store leg of the transfer).
	Get(key string) ([]byte, error)
	// Put writes data to key. Used by /rewrap and /process for gcsOut.
	Put(key string, data []byte) error
}

// LocalBlobStore implements BlobStore against a directory on local disk.
// Signed URLs are simply baseURL + "/" + key with an exp query parameter;
// there is no actual signature since there is no real network boundary to
// protect in the local/demo deployment.
type LocalBlobStore struct {
	dir     string
	baseURL string
}

// NewLocalBlobStore creates a LocalBlobStore rooted at dir, minting URLs
// under baseURL (e.g. "http://localhost:8080/blobs").
func NewLocalBlobStore(dir, baseURL string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob dir: %w", err)
	}
	return &LocalBlobStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalBlobStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	return filepath.Join(s.dir, clean), nil
}

func (s *LocalBlobStore) SignUpload(key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s/%s?exp=%d", s.baseURL, key, time.Now().Add(ttl).Unix()), nil
}

func (s *LocalBlobStore) SignDownload(key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s/%s?exp=%d", s.baseURL, key, time.Now().Add(ttl).Unix()), nil
}

func (s *LocalBlobStore) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (s *LocalBlobStore) Put(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
