package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"encoding/hex"
	"os"
	"strconv"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the RTCORE_ prefix.  Integer values
// are ignored unless they parse and are greater than zero.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("RTCORE_URL"); v != "" {
		cfg.URL = v
	}
	if v := envInt("RTCORE_COMMS_TIMEOUT"); v > 0 {
		cfg.Timeouts.Comms = v
	}
	if v := envInt("RTCORE_RETRY_TOTAL"); v > 0 {
		cfg.Timeouts.RetryTotal = v
	}
	if v := envInt("RTCORE_RETRY_WAIT"); v > 0 {
		cfg.Timeouts.RetryWait = v
	}
	if v := envInt("RTCORE_EXPIRY"); v > 0 {
		cfg.Timeouts.Expiry = v
	}
	if v := os.Getenv("RTCORE_CIPHER_KEY"); v != "" {
		if key, err := hex.DecodeString(v); err == nil {
			cfg.CipherKey = key
		}
	}
	if v := envInt("RTCORE_VERBOSE"); v > 0 {
		cfg.Verbose = int(v)
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
