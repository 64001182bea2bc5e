package shared

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID("sess_")
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("expected prefix sess_, got %s", id)
	}
	if len(id) != len("sess_")+32 {
		t.Errorf("expected 32 hex chars after prefix, got %d", len(id)-len("sess_"))
	}

	other := NewID("sess_")
	if id == other {
		t.Error("expected unique ids")
	}
}

func TestNormalizeDeviceID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AA:BB:CC", "AA:BB:CC"},
		{"  aa:bb:cc\n", "aa:bb:cc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDeviceID(tt.in); got != tt.want {
			t.Errorf("NormalizeDeviceID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
