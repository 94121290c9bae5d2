package config

import (
	"path/filepath"
	"testing"

	"mixterm/network"
)

func TestLoadOrCreateCreatesAndReloadsConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("MIXTERM_DATA_DIR", tempDir)
	t.Setenv("MIXTERM_ACCESS_TOKEN", "")

	firstCfg, firstPath, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("first LoadOrCreate failed: %v", err)
	}
	if firstCfg.AppID == "" {
		t.Fatalf("expected non-empty app ID")
	}
	if firstCfg.APIHost != network.DefaultAPIHost {
		t.Fatalf("expected default API host %q, got %q", network.DefaultAPIHost, firstCfg.APIHost)
	}
	if firstCfg.BlazeHost != network.DefaultBlazeHost {
		t.Fatalf("expected default blaze host %q, got %q", network.DefaultBlazeHost, firstCfg.BlazeHost)
	}

	expectedConfigPath := filepath.Join(tempDir, "config.json")
	if firstPath != expectedConfigPath {
		t.Fatalf("expected config path %q, got %q", expectedConfigPath, firstPath)
	}

	secondCfg, secondPath, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}

	if secondPath != firstPath {
		t.Fatalf("expected config path to be stable, got %q then %q", firstPath, secondPath)
	}
	if secondCfg.AppID != firstCfg.AppID {
		t.Fatalf("expected stable app ID, got %q then %q", firstCfg.AppID, secondCfg.AppID)
	}
}

func TestLoadOrCreateFillsMissingHosts(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("MIXTERM_DATA_DIR", tempDir)
	t.Setenv("MIXTERM_ACCESS_TOKEN", "")

	if err := EnsureDataDirectory(tempDir); err != nil {
		t.Fatalf("EnsureDataDirectory failed: %v", err)
	}
	cfgPath := filepath.Join(tempDir, "config.json")
	if err := Save(cfgPath, &AppConfig{AppID: "fixed-app"}); err != nil {
		t.Fatalf("Save sparse config failed: %v", err)
	}

	cfg, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.AppID != "fixed-app" {
		t.Fatalf("expected app ID to be retained, got %q", cfg.AppID)
	}
	if cfg.APIHost != network.DefaultAPIHost || cfg.BlazeHost != network.DefaultBlazeHost {
		t.Fatalf("expected hosts to be backfilled, got %q and %q", cfg.APIHost, cfg.BlazeHost)
	}

	// The backfilled defaults are persisted.
	saved, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if saved.APIHost != network.DefaultAPIHost {
		t.Fatalf("expected persisted API host, got %q", saved.APIHost)
	}
}

func TestAccessTokenEnvOverrideIsNotPersisted(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("MIXTERM_DATA_DIR", tempDir)
	t.Setenv("MIXTERM_ACCESS_TOKEN", "env-token")

	cfg, cfgPath, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.AccessToken != "env-token" {
		t.Fatalf("expected env token to win, got %q", cfg.AccessToken)
	}

	saved, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if saved.AccessToken != "" {
		t.Fatalf("env token must never be written to disk, got %q", saved.AccessToken)
	}
}
