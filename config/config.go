package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"

	"mixterm/network"
)

const (
	// AppDirectoryName is the per-user application data directory name.
	AppDirectoryName = "mixterm"
	// configFileName is the persisted configuration file.
	configFileName = "config.json"

	// dataDirEnv overrides the resolved data directory when set.
	dataDirEnv = "MIXTERM_DATA_DIR"
	// accessTokenEnv overrides the configured access token for one run. The
	// override is never written back to config.json.
	accessTokenEnv = "MIXTERM_ACCESS_TOKEN"
)

// AppConfig contains persistent local-client settings.
type AppConfig struct {
	AppID       string `json:"app_id"`
	APIHost     string `json:"api_host"`
	BlazeHost   string `json:"blaze_host"`
	AccessToken string `json:"access_token"`
}

// ResolveDataDir returns the OS-aware app data directory.
//
// If MIXTERM_DATA_DIR is set, its value is used as an explicit override.
func ResolveDataDir() (string, error) {
	if override := os.Getenv(dataDirEnv); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(base, AppDirectoryName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppDirectoryName), nil
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, AppDirectoryName), nil
	}
}

// ConfigPath returns the full path to config.json for a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// EnsureDataDirectory creates the app data directory if needed.
func EnsureDataDirectory(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create directory %q: %w", dataDir, err)
	}
	return nil
}

// Load reads and unmarshals config.json from disk.
func Load(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// Save marshals and writes config.json to disk.
func Save(path string, cfg *AppConfig) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// LoadOrCreate ensures the data directory and config exist, then returns both.
// Environment overrides are applied to the returned config only, never saved.
func LoadOrCreate() (*AppConfig, string, error) {
	dataDir, err := ResolveDataDir()
	if err != nil {
		return nil, "", err
	}
	if err := EnsureDataDirectory(dataDir); err != nil {
		return nil, "", err
	}

	cfgPath := ConfigPath(dataDir)
	cfg, err := Load(cfgPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}

		cfg = defaultConfig()
		if err := Save(cfgPath, cfg); err != nil {
			return nil, "", err
		}

		applyEnvOverrides(cfg)
		return cfg, cfgPath, nil
	}

	if normalizeDefaults(cfg) {
		if err := Save(cfgPath, cfg); err != nil {
			return nil, "", err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, cfgPath, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		AppID:     uuid.NewString(),
		APIHost:   network.DefaultAPIHost,
		BlazeHost: network.DefaultBlazeHost,
	}
}

func normalizeDefaults(cfg *AppConfig) bool {
	updated := false

	if cfg.AppID == "" {
		cfg.AppID = uuid.NewString()
		updated = true
	}
	if cfg.APIHost == "" {
		cfg.APIHost = network.DefaultAPIHost
		updated = true
	}
	if cfg.BlazeHost == "" {
		cfg.BlazeHost = network.DefaultBlazeHost
		updated = true
	}

	return updated
}

func applyEnvOverrides(cfg *AppConfig) {
	if token := os.Getenv(accessTokenEnv); token != "" {
		cfg.AccessToken = token
	}
}
