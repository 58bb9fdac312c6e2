package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warm3snow/pytutor/internal/settings"
)

const (
	// FileName is the configuration file looked up in the working directory
	// and in the user's ~/.pytutor directory.
	FileName = "pytutor.yaml"
	// DirName is the per-user directory under the home directory.
	DirName = ".pytutor"

	envAPIKey       = "PYTUTOR_API_KEY"
	envGeminiAPIKey = "GEMINI_API_KEY"
)

// Config represents the application configuration
type Config struct {
	Storage  StorageConfig     `yaml:"storage"`
	Logging  LoggingConfig     `yaml:"logging"`
	HTTP     HTTPConfig        `yaml:"http"`
	Defaults settings.Settings `yaml:"defaults"`

	// path is where the config was read from; empty for defaults.
	path string
}

// StorageConfig represents the durable store configuration
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Dir    string `yaml:"dir"`
	Level  string `yaml:"level"`
	Stderr bool   `yaml:"stderr"`
}

// HTTPConfig represents the backend HTTP client configuration
type HTTPConfig struct {
	// TimeoutSeconds bounds each backend request; 0 means no timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path: "~/.pytutor/pytutor.db",
		},
		Logging: LoggingConfig{
			Dir:   "~/.pytutor/logs",
			Level: "info",
		},
		Defaults: settings.Default(),
	}
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Validate checks the values a run cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path must not be empty")
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must not be negative, got %d", c.HTTP.TimeoutSeconds)
	}
	if err := c.Defaults.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

// Load loads the configuration. An explicit path must exist. Without one,
// pytutor.yaml in the working directory is used, then ~/.pytutor/pytutor.yaml,
// which is created with the defaults when missing.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		path, err = locate()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	cfg.path = path

	cfg.applyEnv()
	cfg.Storage.Path, err = ExpandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func locate() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}
	path := filepath.Join(home, DirName, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := DefaultConfig().Save(path); err != nil {
			return "", err
		}
		fmt.Fprintf(os.Stderr, "Created default configuration at %s\n", path)
	}
	return path, nil
}

// applyEnv fills API keys from the environment when the file leaves them empty.
func (c *Config) applyEnv() {
	if c.Defaults.Remote.APIKey == "" {
		c.Defaults.Remote.APIKey = os.Getenv(envAPIKey)
	}
	if c.Defaults.Gemini.APIKey == "" {
		c.Defaults.Gemini.APIKey = os.Getenv(envGeminiAPIKey)
	}
}

// Save writes the configuration to path, or to ~/.pytutor/pytutor.yaml when
// path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error getting user home directory: %w", err)
		}
		path = filepath.Join(home, DirName, FileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
