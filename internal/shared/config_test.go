package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "sub000.db" {
			t.Errorf("expected database path sub000.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Label.CountryCode != "VN" {
			t.Errorf("expected country code VN, got %s", config.Label.CountryCode)
		}

		if config.Label.Registrant != "A0K" {
			t.Errorf("expected registrant A0K, got %s", config.Label.Registrant)
		}

		if config.Notify.WebhookURL != "" {
			t.Errorf("expected notifications disabled by default, got %s", config.Notify.WebhookURL)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[label]
name = "Test Label"
country_code = "GB"
registrant = "ZZ9"
review_workers = 3

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080
rate_limit = 5.0
rate_burst = 10

[notify]
webhook_url = "https://hooks.example.com/status"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Label.Registrant != "ZZ9" {
			t.Errorf("expected registrant ZZ9, got %s", config.Label.Registrant)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected custom database path, got %s", config.Database.Path)
		}
		if config.Server.Host != "0.0.0.0" {
			t.Errorf("expected host 0.0.0.0, got %s", config.Server.Host)
		}
		if config.Server.RateLimit != 5.0 {
			t.Errorf("expected rate limit 5.0, got %f", config.Server.RateLimit)
		}
		if config.Notify.WebhookURL != "https://hooks.example.com/status" {
			t.Errorf("expected webhook URL, got %s", config.Notify.WebhookURL)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("LoadConfig malformed TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		if err := os.WriteFile(configPath, []byte("[label\nbroken"), 0644); err != nil {
			t.Fatalf("failed to write malformed config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for malformed TOML")
		}
	})
}
