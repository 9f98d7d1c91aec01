package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvFile is loaded from the working directory before the environment is read
const EnvFile = ".env"

// Load loads the configuration from file and environment. A config file is
// optional unless configPath names one explicitly.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", EnvFile, err)
	}

	v := viper.New()

	setDefaults(v)

	if err := v.BindEnv("openstates.api_key", "OPEN_STATES_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".openstates"))
		}

		v.AddConfigPath("/etc/openstates/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("openstates.base_url", "https://openstates.org/api/v1/")
	v.SetDefault("openstates.timeout", "30s")
	v.SetDefault("openstates.region", "tx")
	v.SetDefault("openstates.status_check", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("output.format", "console")
}

// validate checks if the configuration is valid. The API key is left to the
// client, which reports a missing key when a request is attempted.
func validate(cfg *Config) error {
	if cfg.OpenStates.BaseURL == "" {
		return fmt.Errorf("openstates.base_url is required")
	}

	if cfg.OpenStates.Timeout <= 0 {
		return fmt.Errorf("openstates.timeout must be positive: %s", cfg.OpenStates.Timeout)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}
	if !validFormats[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s", cfg.Output.Format)
	}

	for name, expression := range cfg.Filters {
		if expression == "" {
			return fmt.Errorf("filter '%s' has an empty expression", name)
		}
	}

	return nil
}
