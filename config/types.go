package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	OpenStates OpenStatesConfig `mapstructure:"openstates"`
	Filters    FilterConfig     `mapstructure:"filters"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
}

// OpenStatesConfig holds Open States API connection details
type OpenStatesConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Region      string        `mapstructure:"region"`
	StatusCheck bool          `mapstructure:"status_check"`
}

// FilterConfig maps preset names to filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"`
}
