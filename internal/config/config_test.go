package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"MAX_INLINE_BODY_BYTES", "SESSION_TTL_SECONDS", "SIGNED_URL_TTL_SECONDS",
		"OP_SOFT_TIMEOUT_MS", "OBJECT_STORE_BUCKET", "BLOB_DIR", "BLOB_BASE_URL",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.MaxInlineBodyBytes != 26214400 {
		t.Errorf("MaxInlineBodyBytes = %d, want 26214400", cfg.MaxInlineBodyBytes)
	}
	if cfg.SessionTTL != 1800*time.Second {
		t.Errorf("SessionTTL = %v, want 1800s", cfg.SessionTTL)
	}
	if cfg.SignedURLTTL != 900*time.Second {
		t.Errorf("SignedURLTTL = %v, want 900s", cfg.SignedURLTTL)
	}
	if cfg.OpSoftTimeout != 5000*time.Millisecond {
		t.Errorf("OpSoftTimeout = %v, want 5000ms", cfg.OpSoftTimeout)
	}
	if cfg.ObjectStoreBucket != "" {
		t.Errorf("ObjectStoreBucket = %q, want empty (session mode disabled by default)", cfg.ObjectStoreBucket)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("SESSION_TTL_SECONDS", "60")
	os.Setenv("OBJECT_STORE_BUCKET", "my-bucket")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("SESSION_TTL_SECONDS")
		os.Unsetenv("OBJECT_STORE_BUCKET")
	}()

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.SessionTTL != 60*time.Second {
		t.Errorf("SessionTTL = %v, want 60s", cfg.SessionTTL)
	}
	if cfg.ObjectStoreBucket != "my-bucket" {
		t.Errorf("ObjectStoreBucket = %q, want my-bucket", cfg.ObjectStoreBucket)
	}
}

func TestEnvIntIgnoresUnparsable(t *testing.T) {
	os.Setenv("PORT", "not-a-number")
	defer os.Unsetenv("PORT")

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want fallback 8080 for unparsable env value", cfg.Port)
	}
}
