// Package config provides configuration loading for the documentation browser.
package config

import (
	"time"

	configloader "github.com/GabrielNunesIT/go-libs/config-loader"
)

// EnvPrefix prefixes every environment variable the loader reads, e.g. NEXTDOC_BASE_URL.
const EnvPrefix = "NEXTDOC_"

// Config holds the application configuration.
type Config struct {
	// BaseURL is the server the document paths are resolved against.
	// Empty means the paths are local files.
	BaseURL    string `koanf:"base_url"`
	DocPath    string `koanf:"doc_path"`
	ConfigPath string `koanf:"config_path"`

	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
	ProbeTimeout  time.Duration `koanf:"probe_timeout"`
	RetryAttempts uint          `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`

	// StateFile persists the selected service and tab state. Empty uses the user config dir.
	StateFile string `koanf:"state_file"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DocPath:       "/v3/api-docs",
		ConfigPath:    "/v3/api-docs/swagger-config",
		FetchTimeout:  10 * time.Second,
		ProbeTimeout:  3 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    200 * time.Millisecond,
	}
}

// Load returns the application configuration using go-libs config-loader.
func Load() (*Config, error) {
	loader := configloader.NewConfigLoader(
		configloader.WithDefaults(Defaults()),
		configloader.WithEnv[Config](EnvPrefix),
	)

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
