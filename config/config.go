// Package config loads the file assistant configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingAPIKey is returned by RequireAPIKey when no credential is configured.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")
	// ErrInvalidConfig is returned when a loaded value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the complete runtime configuration.
type Config struct {
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// Roots are walked by the indexer.
	Roots []string `yaml:"roots"`
	// SymbolicRoots maps leading path segments like "Downloads" to directories.
	SymbolicRoots map[string]string `yaml:"symbolic_roots"`
	IndexPath     string            `yaml:"index_path"`
	SearchLimit   int               `yaml:"search_limit"`
	Exclude       []string          `yaml:"exclude"`

	ListenAddr   string        `yaml:"listen_addr"`
	Watch        bool          `yaml:"watch"`
	SyncInterval time.Duration `yaml:"sync_interval"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// HomeDir is the base for "~" expansion and moveFileByName destinations.
	HomeDir string `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default(homeDir string) *Config {
	return &Config{
		Model:      "gemini-2.5-flash",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
		Roots: []string{
			filepath.Join(homeDir, "Downloads"),
			filepath.Join(homeDir, "Desktop"),
		},
		SymbolicRoots: map[string]string{
			"downloads": filepath.Join(homeDir, "Downloads"),
			"desktop":   filepath.Join(homeDir, "Desktop"),
		},
		IndexPath:   filepath.Join("index", "file_index.json"),
		SearchLimit: 5,
		ListenAddr:  "127.0.0.1:5000",
		LogLevel:    "info",
		HomeDir:     homeDir,
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// and environment overrides, in that order. ${VAR} references in the file are expanded.
func Load(path string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	cfg := Default(homeDir)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.expandHome()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("FILEASSIST_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("FILEASSIST_INDEX_PATH"); v != "" {
		c.IndexPath = v
	}
	if v := os.Getenv("FILEASSIST_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("FILEASSIST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FILEASSIST_SEARCH_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: FILEASSIST_SEARCH_LIMIT: %v", ErrInvalidConfig, err)
		}
		c.SearchLimit = limit
	}
	return nil
}

func (c *Config) expandHome() {
	for i, root := range c.Roots {
		c.Roots[i] = ExpandHome(root, c.HomeDir)
	}
	roots := make(map[string]string, len(c.SymbolicRoots))
	for name, dir := range c.SymbolicRoots {
		roots[strings.ToLower(name)] = ExpandHome(dir, c.HomeDir)
	}
	c.SymbolicRoots = roots
	c.IndexPath = ExpandHome(c.IndexPath, c.HomeDir)
	c.LogFile = ExpandHome(c.LogFile, c.HomeDir)
}

// ExpandHome replaces a leading "~" with homeDir.
func ExpandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return fmt.Errorf("%w: at least one root is required", ErrInvalidConfig)
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("%w: search_limit must be positive, got %d", ErrInvalidConfig, c.SearchLimit)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// RequireAPIKey fails when no model credential is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
