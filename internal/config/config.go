package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables
// (§6.5: session TTL seconds, request size limit bytes, operation
// soft-timeout milliseconds, signed-URL TTL seconds, object-store bucket
// identifier).
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxInlineBodyBytes is the §4.7 inline request size limit; above it
	// clients must use a Session. Default 25 MiB (26214400 bytes).
	MaxInlineBodyBytes int64

	// SessionTTL is how long a Session lives before the sweep reaps it.
	// Default 1800s (30 minutes).
	SessionTTL time.Duration

	// SignedURLTTL is how long a Session's uploadUrl/downloadUrl remain
	// valid. Default 900s (15 minutes).
	SignedURLTTL time.Duration

	// OpSoftTimeout is the per-Operation soft budget (§5); an operation
	// that exceeds it still completes but is flagged in the report.
	// Default 5000ms.
	OpSoftTimeout time.Duration

	// ObjectStoreBucket names the external blob store backing sessions.
	// Unset (the default) disables session mode: POST /session and any
	// gcsIn/gcsOut reference fail until one is configured.
	ObjectStoreBucket string

	// BlobDir is where LocalBlobStore keeps blobs. The server uses
	// LocalBlobStore whenever ObjectStoreBucket is non-empty, so this is
	// read only in that case.
	BlobDir string

	// BlobBaseURL is the externally reachable base URL signed blob URLs
	// are minted under.
	BlobBaseURL string
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		Port:               envInt("PORT", 8080),
		ReadTimeout:        envDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:       envDuration("WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:    envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxInlineBodyBytes: int64(envInt("MAX_INLINE_BODY_BYTES", 26214400)),
		SessionTTL:         envSeconds("SESSION_TTL_SECONDS", 1800),
		SignedURLTTL:       envSeconds("SIGNED_URL_TTL_SECONDS", 900),
		OpSoftTimeout:      envMillis("OP_SOFT_TIMEOUT_MS", 5000),
		ObjectStoreBucket:  envString("OBJECT_STORE_BUCKET", ""),
		BlobDir:            envString("BLOB_DIR", "/tmp/ooxmlsvc-blobs"),
		BlobBaseURL:        envString("BLOB_BASE_URL", "http://localhost:8080/blobs"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSeconds(key string, fallbackSeconds int) time.Duration {
	return time.Duration(envInt(key, fallbackSeconds)) * time.Second
}

func envMillis(key string, fallbackMillis int) time.Duration {
	return time.Duration(envInt(key, fallbackMillis)) * time.Millisecond
}
