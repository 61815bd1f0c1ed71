package metadata_test

import (
	"os"
	"testing"
	"time"

	"linkdeck/internal/infra/metadata"
)

func TestDefaultConfig(t *testing.T) {
	cfg := metadata.DefaultConfig()

	if cfg.Timeout != 15*time.Second {
		t.Errorf("expected Timeout=15s, got %v", cfg.Timeout)
	}

	if cfg.MaxBodySize != 5*1024*1024 {
		t.Errorf("expected MaxBodySize=5MB, got %d", cfg.MaxBodySize)
	}

	if cfg.MaxRedirects != 5 {
		t.Errorf("expected MaxRedirects=5, got %d", cfg.MaxRedirects)
	}

	if !cfg.DenyPrivateIPs {
		t.Error("expected DenyPrivateIPs=true by default (security)")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}
}

func TestConfigValidate_InvalidTimeout(t *testing.T) {
	cfg := metadata.DefaultConfig()
	cfg.Timeout = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero timeout")
	}
}

func TestConfigValidate_InvalidBodySize(t *testing.T) {
	cfg := metadata.DefaultConfig()
	cfg.MaxBodySize = 100 // below 1KB minimum

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for tiny body size")
	}

	cfg.MaxBodySize = 200 * 1024 * 1024 // above 100MB maximum
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for oversized body limit")
	}
}

func TestConfigValidate_InvalidRedirects(t *testing.T) {
	cfg := metadata.DefaultConfig()
	cfg.MaxRedirects = 11

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for excessive redirect limit")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("METADATA_FETCH_TIMEOUT", "20s")
	os.Setenv("METADATA_FETCH_MAX_BODY_SIZE", "1048576")
	os.Setenv("METADATA_FETCH_MAX_REDIRECTS", "3")
	os.Setenv("METADATA_FETCH_DENY_PRIVATE_IPS", "false")
	defer func() {
		os.Unsetenv("METADATA_FETCH_TIMEOUT")
		os.Unsetenv("METADATA_FETCH_MAX_BODY_SIZE")
		os.Unsetenv("METADATA_FETCH_MAX_REDIRECTS")
		os.Unsetenv("METADATA_FETCH_DENY_PRIVATE_IPS")
	}()

	cfg, err := metadata.LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeout != 20*time.Second {
		t.Errorf("expected Timeout=20s, got %v", cfg.Timeout)
	}
	if cfg.MaxBodySize != 1048576 {
		t.Errorf("expected MaxBodySize=1048576, got %d", cfg.MaxBodySize)
	}
	if cfg.MaxRedirects != 3 {
		t.Errorf("expected MaxRedirects=3, got %d", cfg.MaxRedirects)
	}
	if cfg.DenyPrivateIPs {
		t.Error("expected DenyPrivateIPs=false")
	}
}

func TestLoadConfigFromEnv_InvalidTimeout(t *testing.T) {
	os.Setenv("METADATA_FETCH_TIMEOUT", "not-a-duration")
	defer os.Unsetenv("METADATA_FETCH_TIMEOUT")

	if _, err := metadata.LoadConfigFromEnv(); err == nil {
		t.Error("expected error for malformed timeout")
	}
}
