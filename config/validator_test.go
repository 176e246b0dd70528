package config

import (
	"strings"
	"testing"
)

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages, with a hint on the fields that support one.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantSub string
	}{
		{
			name:    "empty url has hint",
			cfg:     Config{},
			wantSub: "hint:",
		},
		{
			name:    "bad scheme has hint",
			cfg:     Config{URL: "udp://192.0.2.1:53"},
			wantSub: "hint:",
		},
		{
			name:    "zero expiry has hint",
			cfg:     Config{URL: "tcp://192.0.2.1:4444"},
			wantSub: "hint:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

// TestValidate_Tcp6BindModeAccepted verifies bind mode (empty host) is
// accepted for tcp6 exactly as it is for tcp: the grammar defines bind
// mode purely by an empty host, with no scheme restriction.
func TestValidate_Tcp6BindModeAccepted(t *testing.T) {
	cfg := Config{URL: "tcp6://:4444", Timeouts: DefaultTimeouts()}
	if err := cfg.Validate(); err != nil {
		t.Errorf("tcp6 bind mode should validate cleanly, got: %v", err)
	}
}

func TestFieldError_ErrorFormatting(t *testing.T) {
	e := &FieldError{Field: "url", Value: "bogus", Message: "scheme must be tcp or tcp6", Hint: "try tcp://host:port"}
	got := e.Error()
	for _, want := range []string{"url", "bogus", "scheme must be tcp or tcp6", "hint: try tcp://host:port"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestFieldError_ErrorFormattingNoValueNoHint(t *testing.T) {
	e := &FieldError{Field: "timeouts", Message: "must be >= 0"}
	got := e.Error()
	if strings.Contains(got, "hint:") {
		t.Errorf("Error() = %q, should not contain a hint section", got)
	}
	if !strings.Contains(got, "timeouts: must be >= 0") {
		t.Errorf("Error() = %q, missing field/message", got)
	}
}
