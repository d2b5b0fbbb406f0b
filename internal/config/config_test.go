package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "OTTO_") {
			key, _, _ := strings.Cut(kv, "=")
			t.Setenv(key, "")
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "otto.yaml")
	yaml := `
api_url: https://api.otto.dev
surface: recipe_creator
auto_reconnect: false
reconnect_delay_ms: 1500
sse_max_retries: 2
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("OTTO_SSE_MAX_RETRIES", "9")
	t.Setenv("OTTO_USER_ID", "u-7")
	t.Setenv("OTTO_RECONNECT_DELAY_MS", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"api url from file", cfg.APIURL, "https://api.otto.dev"},
		{"surface from file", cfg.Surface, domain.SessionRecipeCreator},
		{"auto reconnect from file", cfg.AutoReconnect, false},
		{"bad env keeps file value", cfg.ReconnectDelay, 1500 * time.Millisecond},
		{"env beats file", cfg.SSEMaxRetries, 9},
		{"env only", cfg.UserID, "u-7"},
		{"default kept", cfg.SSERetryDelay, 5 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad api url", map[string]string{"OTTO_API_URL": "::not a url"}},
		{"unknown surface", map[string]string{"OTTO_SURFACE": "pantry"}},
		{"relative sse path", map[string]string{"OTTO_SSE_PATH": "api/events"}},
		{"negative retries", map[string]string{"OTTO_SSE_MAX_RETRIES": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
