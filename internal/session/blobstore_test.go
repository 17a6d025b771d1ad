package session

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLocalBlobStorePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalBlobStore(dir, "http://localhost:8080/blobs")
	if err != nil {
		t.Fatalf("NewLocalBlobStore: %v", err)
	}

	if err := store.Put("in/abc", []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := store.Get("in/abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Get = %q, want payload", data)
	}
}

func TestLocalBlobStoreGetMissing(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocalBlobStore(dir, "http://localhost:8080/blobs")
	if _, err := store.Get("in/missing"); err == nil {
		t.Fatal("expected error reading a missing blob")
	}
}

func TestLocalBlobStoreSignedURLsCarryExpiry(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocalBlobStore(dir, "http://localhost:8080/blobs")

	up, err := store.SignUpload("in/abc", time.Minute)
	if err != nil {
		t.Fatalf("SignUpload: %v", err)
	}
	down, err := store.SignDownload("out/abc", time.Minute)
	if err != nil {
		t.Fatalf("SignDownload: %v", err)
	}
	if up == down {
		t.Error("upload and download URLs should differ")
	}
	if !strings.Contains(up, "?exp=") || !strings.Contains(down, "?exp=") {
		t.Errorf("signed URLs should carry an exp parameter: %q, %q", up, down)
	}
}

func TestLocalBlobStorePathStaysWithinDir(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocalBlobStore(dir, "http://localhost:8080/blobs")
	p, err := store.path("../../etc/passwd")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 2 && rel[:2] == ".." {
		t.Errorf("path escaped the blob dir: %s", p)
	}
}
