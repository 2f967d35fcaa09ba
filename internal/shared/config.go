package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API        APIConfig        `toml:"api"`
	Polling    PollingConfig    `toml:"polling"`
	Processing ProcessingConfig `toml:"processing"`
	Export     ExportConfig     `toml:"export"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// APIConfig describes how to reach the flashcard backend.
type APIConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
	FallbackDeck   string `toml:"fallback_deck"`
}

// PollingConfig controls the processing status poller.
type PollingConfig struct {
	IntervalMS     int `toml:"interval_ms" validate:"gt=0"`
	DisplayDelayMS int `toml:"display_delay_ms" validate:"gte=0"`
}

// ProcessingConfig holds the options sent with POST /api/process.
type ProcessingConfig struct {
	IncludeTopicCards bool `toml:"include_topic_cards"`
	CardsPerTopic     int  `toml:"cards_per_topic" validate:"gt=0"`
}

// ExportConfig controls where and how packages are written.
type ExportConfig struct {
	Dir       string  `toml:"dir"`
	Workers   int     `toml:"workers" validate:"gte=0,lte=10"`
	RateLimit float64 `toml:"rate_limit" validate:"gte=0"`
}

// DatabaseConfig contains the export history database location. An empty path disables history.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ServerConfig contains settings for the development backend.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
}

// LogConfig sets the log level and the file used while the TUI is running.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error fatal"`
	File  string `toml:"file"`
}

// PollInterval returns the configured status poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMS) * time.Millisecond
}

// DisplayDelay returns how long a completed job is shown before navigating to review.
func (c *Config) DisplayDelay() time.Duration {
	return time.Duration(c.Polling.DisplayDelayMS) * time.Millisecond
}

// Timeout returns the HTTP client timeout; zero means no timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overrides file values with ANKIX_* environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("ANKIX_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := getenv("ANKIX_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := getenv("ANKIX_DB_PATH"); v != "" {
		c.Database.Path = v
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
