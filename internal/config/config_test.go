// Verifies the bootstrap configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		if cfg.Port != 8080 {
			t.Errorf("Expected default port 8080, got %d", cfg.Port)
		}
		if cfg.Database.Path != "./comi.db" {
			t.Errorf("Expected default db path './comi.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Data.Dir != "./data" {
			t.Errorf("Expected default data dir './data', got '%s'", cfg.Data.Dir)
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		configContent := `
port: 9999
database:
  path: "/tmp/test.db"
data:
  dir: "/tmp/test-data"
unknown_setting: "should be ignored"
`
		// Viper looks in the CWD, so the file has to live there.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Database.Path != "/tmp/test.db" {
			t.Errorf("Expected db path '/tmp/test.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Data.Dir != "/tmp/test-data" {
			t.Errorf("Expected data dir '/tmp/test-data', got '%s'", cfg.Data.Dir)
		}
	})
}
