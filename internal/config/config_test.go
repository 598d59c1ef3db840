package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FOIAD_DATABASE_URL", "postgres://localhost/foiad")
	t.Setenv("FOIAD_AGENCIES_FILE", "/etc/foiad/agencies.toml")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", c.HTTPAddr)
	}
	if c.PollInterval != 15*time.Minute {
		t.Errorf("PollInterval = %v, want 15m", c.PollInterval)
	}
	if c.PollMaxBackoff != 24*time.Hour {
		t.Errorf("PollMaxBackoff = %v, want 24h", c.PollMaxBackoff)
	}
	if c.Workers != 8 {
		t.Errorf("Workers = %d, want 8", c.Workers)
	}
	if c.AuthMaxFailures != 3 {
		t.Errorf("AuthMaxFailures = %d, want 3", c.AuthMaxFailures)
	}
}

func TestLoad_RequiredDatabaseURL(t *testing.T) {
	t.Setenv("FOIAD_DATABASE_URL", "")
	t.Setenv("FOIAD_AGENCIES_FILE", "/etc/foiad/agencies.toml")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when FOIAD_DATABASE_URL is unset")
	}

	// Memory store does not need a database.
	t.Setenv("FOIAD_STORE", "memory")
	if _, err := Load(); err != nil {
		t.Fatalf("memory store should not require database url: %v", err)
	}
}

func TestLoad_RequiredAgenciesFile(t *testing.T) {
	t.Setenv("FOIAD_DATABASE_URL", "postgres://localhost/foiad")
	t.Setenv("FOIAD_AGENCIES_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when FOIAD_AGENCIES_FILE is unset")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FOIAD_STORE", "memory")
	t.Setenv("FOIAD_AGENCIES_FILE", "agencies.toml")
	t.Setenv("FOIAD_POLL_INTERVAL", "30s")
	t.Setenv("FOIAD_WORKERS", "2")
	t.Setenv("FOIAD_AGENCY_RATE", "0.5")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", c.PollInterval)
	}
	if c.Workers != 2 {
		t.Errorf("Workers = %d, want 2", c.Workers)
	}
	if c.AgencyRate != 0.5 {
		t.Errorf("AgencyRate = %v, want 0.5", c.AgencyRate)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("FOIAD_STORE", "memory")
	t.Setenv("FOIAD_AGENCIES_FILE", "agencies.toml")
	t.Setenv("FOIAD_POLL_INTERVAL", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparseable duration")
	}
}
