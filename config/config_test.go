package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid reverse",
			cfg:     Config{URL: "tcp://192.0.2.1:4444", Timeouts: Timeouts{Expiry: 60}},
			wantErr: false,
		},
		{
			name:    "valid bind",
			cfg:     Config{URL: "tcp://:4444", Timeouts: Timeouts{Expiry: 60}},
			wantErr: false,
		},
		{
			name:    "valid tcp6 with scope id",
			cfg:     Config{URL: "tcp6://[fe80::1]:4444?3", Timeouts: Timeouts{Expiry: 60}},
			wantErr: false,
		},
		{
			name:    "empty url",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "bad scheme",
			cfg:     Config{URL: "http://example.com:80", Timeouts: Timeouts{Expiry: 60}},
			wantErr: true,
		},
		{
			name:    "tcp6 bind mode accepted",
			cfg:     Config{URL: "tcp6://:4444", Timeouts: Timeouts{Expiry: 60}},
			wantErr: false,
		},
		{
			name:    "missing port",
			cfg:     Config{URL: "tcp://192.0.2.1", Timeouts: Timeouts{Expiry: 60}},
			wantErr: true,
		},
		{
			name:    "zero expiry",
			cfg:     Config{URL: "tcp://192.0.2.1:4444"},
			wantErr: true,
		},
		{
			name:    "negative retry total",
			cfg:     Config{URL: "tcp://192.0.2.1:4444", Timeouts: Timeouts{Expiry: 60, RetryTotal: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsBindMode(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"tcp://:4444", true},
		{"tcp://192.0.2.1:4444", false},
		{"tcp6://[fe80::1]:4444?3", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			c := Config{URL: tt.url}
			if got := c.IsBindMode(); got != tt.want {
				t.Errorf("IsBindMode(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestDefaultTimeouts(t *testing.T) {
	d := DefaultTimeouts()
	if d.Comms != DefaultCommsTimeout || d.RetryTotal != DefaultRetryTotal ||
		d.RetryWait != DefaultRetryWait || d.Expiry != DefaultExpiry {
		t.Errorf("DefaultTimeouts() = %+v did not match defaults.go constants", d)
	}
}
