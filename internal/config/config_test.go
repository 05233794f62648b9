package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("POSTDECK_API_BASE_URL", "")
	t.Setenv("POSTDECK_DB_PATH", "")
	t.Setenv("POSTDECK_FEED_LIMIT", "")
	t.Setenv("POSTDECK_INTERWEAVE", "")
	t.Setenv("POSTDECK_ROSTER_PATH", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected base URL: %s", cfg.APIBaseURL)
	}
	if cfg.DBPath != "postdeck.db" {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.FeedLimit != defaultFeedLimit {
		t.Fatalf("unexpected feed limit: %d", cfg.FeedLimit)
	}
	if cfg.Interweave {
		t.Fatal("interweave should default off")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("POSTDECK_API_BASE_URL", "https://reader.example.com")
	t.Setenv("POSTDECK_DB_PATH", "/tmp/deck.db")
	t.Setenv("POSTDECK_FEED_LIMIT", "25")
	t.Setenv("POSTDECK_INTERWEAVE", "true")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.APIBaseURL != "https://reader.example.com" || cfg.FeedLimit != 25 || !cfg.Interweave {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadFromEnv_RejectsBadValues(t *testing.T) {
	t.Setenv("POSTDECK_FEED_LIMIT", "zero")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error for non-numeric feed limit")
	}

	t.Setenv("POSTDECK_FEED_LIMIT", "10")
	t.Setenv("POSTDECK_API_BASE_URL", "https://reader.example.com/")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error for trailing slash")
	}
}

func TestLoadRoster_DefaultWhenUnset(t *testing.T) {
	roster, err := LoadRoster("")
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(roster.Subs) == 0 {
		t.Fatal("expected default sub options")
	}
}

func TestLoadRoster_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	data := []byte("subs:\n  - label: Go\n    value: golang\n  - value: rust\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(roster.Subs) != 2 {
		t.Fatalf("expected 2 subs, got %d", len(roster.Subs))
	}
	if roster.Subs[0].Value != "golang" || roster.Subs[0].Label != "Go" {
		t.Fatalf("unexpected first sub: %+v", roster.Subs[0])
	}
	if roster.Subs[1].Label != "rust" {
		t.Fatalf("expected label fallback to value, got %+v", roster.Subs[1])
	}
}

func TestLoadRoster_BadFile(t *testing.T) {
	if _, err := LoadRoster(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("subs: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRoster(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
