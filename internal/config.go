package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appDirName = ".flad-analysis"

type Config struct {
	// StorePath is the SQLite file holding imported datasets and selections
	StorePath string `yaml:"store_path,omitempty"`

	// Currency and Locale control amount formatting (defaults: CLP, es-CL)
	Currency string `yaml:"currency,omitempty"`
	Locale   string `yaml:"locale,omitempty"`

	// LogLevel is one of debug, info, warn, error. LogFormat is human or json.
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`

	// ViewMode and Granularity are used when the corresponding flags are not given
	ViewMode    string `yaml:"view_mode,omitempty"`
	Granularity string `yaml:"granularity,omitempty"`

	// MatrixStatuses is the default status filter of the matrix view. Empty means all.
	MatrixStatuses []string `yaml:"matrix_statuses,omitempty"`

	// compiled fields (not serialized)
	viewMode    ViewMode    `yaml:"-"`
	granularity Granularity `yaml:"-"`
	statuses    StatusSet   `yaml:"-"`
}

// DefaultConfigPath returns the default config file path (~/.flad-analysis/config.yaml)
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, appDirName, "config.yaml")
}

// DefaultStorePath returns the default store path (~/.flad-analysis/flad.db)
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(appDirName, "flad.db")
	}
	return filepath.Join(home, appDirName, "flad.db")
}

// NewDefaultConfig creates a config with every default applied.
// Use this when no config file exists.
func NewDefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides settings from FLAD_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("FLAD_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("FLAD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FLAD_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("FLAD_CURRENCY"); v != "" {
		c.Currency = v
	}
	return c.compile()
}

// compile fills defaults and parses the enum settings
func (c *Config) compile() error {
	if c.StorePath == "" {
		c.StorePath = DefaultStorePath()
	}
	if strings.HasPrefix(c.StorePath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.StorePath = filepath.Join(home, c.StorePath[2:])
		}
	}
	if c.Currency == "" {
		c.Currency = "CLP"
	}
	if c.Locale == "" {
		c.Locale = "es-CL"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "human"
	}
	if c.ViewMode == "" {
		c.ViewMode = string(ViewCount)
	}
	if c.Granularity == "" {
		c.Granularity = string(Monthly)
	}

	mode, err := ParseViewMode(c.ViewMode)
	if err != nil {
		return fmt.Errorf("invalid view_mode: %w", err)
	}
	c.viewMode = mode

	gran, err := ParseGranularity(c.Granularity)
	if err != nil {
		return fmt.Errorf("invalid granularity: %w", err)
	}
	c.granularity = gran

	if len(c.MatrixStatuses) == 0 {
		c.statuses = AllStatusSet()
	} else {
		set, err := ParseStatusSet(c.MatrixStatuses)
		if err != nil {
			return fmt.Errorf("invalid matrix_statuses: %w", err)
		}
		c.statuses = set
	}
	return nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultViewMode returns the configured view mode
func (c *Config) DefaultViewMode() ViewMode {
	if c == nil || c.viewMode == "" {
		return ViewCount
	}
	return c.viewMode
}

// DefaultGranularity returns the configured period granularity
func (c *Config) DefaultGranularity() Granularity {
	if c == nil || c.granularity == "" {
		return Monthly
	}
	return c.granularity
}

// DefaultMatrixStatuses returns a copy of the configured matrix status filter
func (c *Config) DefaultMatrixStatuses() StatusSet {
	if c == nil || c.statuses == nil {
		return AllStatusSet()
	}
	out := make(StatusSet, len(c.statuses))
	for k, v := range c.statuses {
		out[k] = v
	}
	return out
}
