package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddr != ":8003" {
		t.Errorf("expected :8003, got %s", cfg.ServerAddr)
	}
	if cfg.DeviceWSPath != "/xiaozhi/v1/" {
		t.Errorf("expected /xiaozhi/v1/, got %s", cfg.DeviceWSPath)
	}
	if cfg.GracePeriod != 500*time.Millisecond {
		t.Errorf("expected 500ms grace period, got %v", cfg.GracePeriod)
	}
	if len(cfg.MusicExtensions) != 3 || cfg.MusicExtensions[2] != ".p3" {
		t.Errorf("unexpected extensions: %v", cfg.MusicExtensions)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("expected burst 20, got %d", cfg.RateLimitBurst)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("MUSIC_EXT", "MP3, wav")
	t.Setenv("DEVICE_WS_PATH", "ws/")
	t.Setenv("MUSIC_REFRESH", "2m")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddr != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.ServerAddr)
	}
	if len(cfg.MusicExtensions) != 2 || cfg.MusicExtensions[0] != ".mp3" || cfg.MusicExtensions[1] != ".wav" {
		t.Errorf("unexpected extensions: %v", cfg.MusicExtensions)
	}
	if cfg.DeviceWSPath != "/ws/" {
		t.Errorf("expected /ws/, got %s", cfg.DeviceWSPath)
	}
	if cfg.MusicRefresh != 2*time.Minute {
		t.Errorf("expected 2m, got %v", cfg.MusicRefresh)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CONTENT_API_BASE_URL=http://content.local\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONTENT_API_BASE_URL", "")
	os.Unsetenv("CONTENT_API_BASE_URL")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ContentAPIBaseURL != "http://content.local" {
		t.Errorf("expected value from env file, got %q", cfg.ContentAPIBaseURL)
	}
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug": "DEBUG",
		"warn":  "WARN",
		"error": "ERROR",
		"":      "INFO",
		"bogus": "INFO",
	}
	for in, want := range tests {
		if got := parseLogLevel(in).String(); got != want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
