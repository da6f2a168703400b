// This file defines the bootstrap configuration for the application:
// everything needed before the settings document can be loaded.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the deployment-level settings. User-facing preferences
// (directory formats, concurrency, intervals) live in the settings
// document under data.dir, not here.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Data struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"data"`
}

// Load reads configuration from a file named "config.yml" in the current
// directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")

	// Environment variable overrides with a "COMI_" prefix, e.g.
	// COMI_DATABASE_PATH overrides the `database.path` key.
	viper.SetEnvPrefix("COMI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./comi.db")
	viper.SetDefault("data.dir", "./data")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
		} else {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
