package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL  string // FOIAD_DATABASE_URL (required unless FOIAD_STORE=memory)
	StoreKind    string // FOIAD_STORE ("postgres" default, "memory" for dev)
	HTTPAddr     string // FOIAD_HTTP_ADDR (default ":8080")
	NATSURL      string // FOIAD_NATS_URL (optional, empty = no events)
	AuthToken    string // FOIAD_AUTH_TOKEN (optional, empty = auth disabled)
	AgenciesFile string // FOIAD_AGENCIES_FILE (required; TOML agency reference data)

	// Scheduler settings
	PollInterval   time.Duration // FOIAD_POLL_INTERVAL (default 15m; base cadence)
	PollMaxBackoff time.Duration // FOIAD_POLL_MAX_BACKOFF (default 24h)
	CallTimeout    time.Duration // FOIAD_CALL_TIMEOUT (default 2m; per adapter call)
	AgencyRate     float64       // FOIAD_AGENCY_RATE (default 1; adapter calls per second per agency)
	Workers        int           // FOIAD_WORKERS (default 8; concurrent request cycles)

	// Session settings
	SessionMargin   time.Duration // FOIAD_SESSION_MARGIN (default 1m; expiry safety margin)
	AuthMaxFailures int           // FOIAD_AUTH_MAX_FAILURES (default 3; then escalate)

	// Archive settings
	ArchiveInterval   time.Duration // FOIAD_ARCHIVE_INTERVAL (default 1h; 0 = disabled)
	ArchiveS3Bucket   string        // FOIAD_ARCHIVE_S3_BUCKET (enables S3 when set)
	ArchiveS3Endpoint string        // FOIAD_ARCHIVE_S3_ENDPOINT (custom endpoint for MinIO)
	ArchiveS3Region   string        // FOIAD_ARCHIVE_S3_REGION (default "us-east-1")
	ArchiveS3Prefix   string        // FOIAD_ARCHIVE_S3_PREFIX (default "foiad")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("FOIAD_DATABASE_URL"),
		StoreKind:         envOrDefault("FOIAD_STORE", "postgres"),
		HTTPAddr:          envOrDefault("FOIAD_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("FOIAD_NATS_URL"),
		AuthToken:         os.Getenv("FOIAD_AUTH_TOKEN"),
		AgenciesFile:      os.Getenv("FOIAD_AGENCIES_FILE"),
		ArchiveS3Bucket:   os.Getenv("FOIAD_ARCHIVE_S3_BUCKET"),
		ArchiveS3Endpoint: os.Getenv("FOIAD_ARCHIVE_S3_ENDPOINT"),
		ArchiveS3Region:   envOrDefault("FOIAD_ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Prefix:   envOrDefault("FOIAD_ARCHIVE_S3_PREFIX", "foiad"),
	}

	switch c.StoreKind {
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("FOIAD_DATABASE_URL is required")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("FOIAD_STORE: unknown store %q (must be postgres or memory)", c.StoreKind)
	}

	if c.AgenciesFile == "" {
		return nil, fmt.Errorf("FOIAD_AGENCIES_FILE is required")
	}

	var err error
	if c.PollInterval, err = envDuration("FOIAD_POLL_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if c.PollMaxBackoff, err = envDuration("FOIAD_POLL_MAX_BACKOFF", 24*time.Hour); err != nil {
		return nil, err
	}
	if c.CallTimeout, err = envDuration("FOIAD_CALL_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if c.SessionMargin, err = envDuration("FOIAD_SESSION_MARGIN", time.Minute); err != nil {
		return nil, err
	}
	if c.ArchiveInterval, err = envDuration("FOIAD_ARCHIVE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if c.AgencyRate, err = envFloat("FOIAD_AGENCY_RATE", 1); err != nil {
		return nil, err
	}
	if c.Workers, err = envInt("FOIAD_WORKERS", 8); err != nil {
		return nil, err
	}
	if c.AuthMaxFailures, err = envInt("FOIAD_AUTH_MAX_FAILURES", 3); err != nil {
		return nil, err
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	var f float64
	if _, err := fmt.Sscanf(v, "%g", &f); err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
