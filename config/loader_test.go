package config

import (
	"encoding/hex"
	"os"
	"testing"
)

func TestLoadFromEnv_URL(t *testing.T) {
	t.Setenv("RTCORE_URL", "tcp://192.0.2.1:4444")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.URL != "tcp://192.0.2.1:4444" {
		t.Errorf("URL = %q, want %q", cfg.URL, "tcp://192.0.2.1:4444")
	}
}

func TestLoadFromEnv_Timeouts(t *testing.T) {
	t.Setenv("RTCORE_COMMS_TIMEOUT", "42")
	t.Setenv("RTCORE_RETRY_TOTAL", "100")
	t.Setenv("RTCORE_RETRY_WAIT", "7")
	t.Setenv("RTCORE_EXPIRY", "999")

	cfg := &Config{}
	LoadFromEnv(cfg)

	if cfg.Timeouts.Comms != 42 {
		t.Errorf("Comms = %d, want 42", cfg.Timeouts.Comms)
	}
	if cfg.Timeouts.RetryTotal != 100 {
		t.Errorf("RetryTotal = %d, want 100", cfg.Timeouts.RetryTotal)
	}
	if cfg.Timeouts.RetryWait != 7 {
		t.Errorf("RetryWait = %d, want 7", cfg.Timeouts.RetryWait)
	}
	if cfg.Timeouts.Expiry != 999 {
		t.Errorf("Expiry = %d, want 999", cfg.Timeouts.Expiry)
	}
}

func TestLoadFromEnv_CipherKey(t *testing.T) {
	key := []byte{0xde, 0xad, 0xbe, 0xef}
	t.Setenv("RTCORE_CIPHER_KEY", hex.EncodeToString(key))
	cfg := &Config{}
	LoadFromEnv(cfg)
	if hex.EncodeToString(cfg.CipherKey) != hex.EncodeToString(key) {
		t.Errorf("CipherKey = %x, want %x", cfg.CipherKey, key)
	}
}

func TestLoadFromEnv_CipherKeyInvalidHexIgnored(t *testing.T) {
	t.Setenv("RTCORE_CIPHER_KEY", "not-hex-zz")
	cfg := &Config{CipherKey: []byte("keep")}
	LoadFromEnv(cfg)
	if string(cfg.CipherKey) != "keep" {
		t.Errorf("CipherKey should be unchanged on invalid hex, got %x", cfg.CipherKey)
	}
}

func TestLoadFromEnv_Verbose(t *testing.T) {
	t.Setenv("RTCORE_VERBOSE", "3")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Verbose != 3 {
		t.Errorf("Verbose = %d, want 3", cfg.Verbose)
	}
}

func TestLoadFromEnv_NoOverrideWhenUnset(t *testing.T) {
	os.Clearenv()

	cfg := &Config{URL: "original", Timeouts: Timeouts{Comms: 1234}}
	LoadFromEnv(cfg)

	if cfg.URL != "original" {
		t.Errorf("URL was overridden: %q", cfg.URL)
	}
	if cfg.Timeouts.Comms != 1234 {
		t.Errorf("Comms was overridden: %d", cfg.Timeouts.Comms)
	}
}

func TestLoadFromEnv_InvalidIntIgnored(t *testing.T) {
	t.Setenv("RTCORE_COMMS_TIMEOUT", "not-a-number")
	cfg := &Config{Timeouts: Timeouts{Comms: 5}}
	LoadFromEnv(cfg)
	if cfg.Timeouts.Comms != 5 {
		t.Errorf("Comms should remain 5 for invalid input, got %d", cfg.Timeouts.Comms)
	}
}
