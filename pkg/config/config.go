package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"audiofetch/pkg/catalog"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv
const EnvPrefix = "AUDIOFETCH_"

// Config holds all configuration options for audiofetch
type Config struct {
	Site      SiteConfig      `yaml:"site" json:"site"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Download  DownloadConfig  `yaml:"download" json:"download"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry" json:"retry"`
	History   HistoryConfig   `yaml:"history" json:"history"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Catalog   catalog.Catalog `yaml:"catalog" json:"catalog"`
}

// SiteConfig describes the asset site and its search endpoint
type SiteConfig struct {
	BaseURL    string   `yaml:"base_url" json:"base_url"`
	SearchPath string   `yaml:"search_path" json:"search_path"`
	ArtTypes   []string `yaml:"art_types" json:"art_types"`
	Licenses   []string `yaml:"licenses" json:"licenses"`
	SortBy     string   `yaml:"sort_by" json:"sort_by"`
	SortOrder  string   `yaml:"sort_order" json:"sort_order"`
	UserAgent  string   `yaml:"user_agent" json:"user_agent"`
	// FilePrefix is the storage path every candidate link must live under
	FilePrefix    string `yaml:"file_prefix" json:"file_prefix"`
	RespectRobots bool   `yaml:"respect_robots" json:"respect_robots"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	MaxPerQuery int           `yaml:"max_per_query" json:"max_per_query"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxFileSize int64         `yaml:"max_file_size" json:"max_file_size"`
	Workers     int           `yaml:"workers" json:"workers"`
	DryRun      bool          `yaml:"dry_run" json:"dry_run"`
}

// RateLimitConfig caps the request rate across search and download requests
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig controls per-request retries. MaxAttempts of 1 disables retrying.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// HistoryConfig points at the SQLite download ledger. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns a Config matching the behaviour of the original
// download scripts
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:       "https://opengameart.org",
			SearchPath:    "/art-search-advanced",
			ArtTypes:      []string{"13"},
			Licenses:      []string{"2"},
			SortBy:        "score",
			SortOrder:     "DESC",
			UserAgent:     "Mozilla/5.0",
			FilePrefix:    "/sites/default/files/",
			RespectRobots: false,
		},
		Output: OutputConfig{
			BaseDirectory: "./audio",
		},
		Download: DownloadConfig{
			MaxPerQuery: 2,
			Delay:       time.Second,
			Timeout:     30 * time.Second,
			MaxFileSize: 0, // 0 means no limit
			Workers:     1,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Retry: RetryConfig{
			MaxAttempts:  1,
			BaseDelay:    time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		History: HistoryConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Catalog: catalog.Default(),
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := getenv("OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := getenv("BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := getenv("USER_AGENT"); v != "" {
		c.Site.UserAgent = v
	}
	if v := getenv("HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("MAX_PER_QUERY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_PER_QUERY: %w", EnvPrefix, err))
		} else {
			c.Download.MaxPerQuery = n
		}
	}
	if v := getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sWORKERS: %w", EnvPrefix, err))
		} else {
			c.Download.Workers = n
		}
	}
	if v := getenv("REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", EnvPrefix, err))
		} else {
			c.RateLimit.RequestsPerMinute = n
		}
	}
	if v := getenv("DOWNLOAD_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDOWNLOAD_DELAY: %w", EnvPrefix, err))
		} else {
			c.Download.Delay = d
		}
	}

	return errors.Join(errs...)
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".audiofetch.yaml",
		".audiofetch.yml",
		filepath.Join(home, ".config", "audiofetch", "config.yaml"),
		filepath.Join(home, ".audiofetch.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site base URL %q must be absolute", c.Site.BaseURL))
	}
	if !strings.HasPrefix(c.Site.SearchPath, "/") {
		errs = append(errs, errors.New("site search path must start with /"))
	}
	if c.Site.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Site.FilePrefix == "" {
		errs = append(errs, errors.New("file prefix is required"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Download.MaxPerQuery <= 0 {
		errs = append(errs, errors.New("max per query must be positive"))
	}
	if c.Download.Delay < 0 {
		errs = append(errs, errors.New("download delay cannot be negative"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.MaxFileSize < 0 {
		errs = append(errs, errors.New("max file size cannot be negative"))
	}
	if c.Download.Workers <= 0 || c.Download.Workers > 8 {
		errs = append(errs, errors.New("workers must be between 1 and 8"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}
	if c.Retry.MaxAttempts > 1 && c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if err := c.Catalog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}

	return errors.Join(errs...)
}

// Save writes the configuration to path as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges explicitly set command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["max-per-query"].(int); ok {
		c.Download.MaxPerQuery = v
	}
	if v, ok := flags["delay"].(time.Duration); ok {
		c.Download.Delay = v
	}
	if v, ok := flags["workers"].(int); ok {
		c.Download.Workers = v
	}
	if v, ok := flags["dry-run"].(bool); ok {
		c.Download.DryRun = v
	}
	if v, ok := flags["history"].(string); ok {
		c.History.Path = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["no-color"].(bool); ok {
		c.Logging.NoColor = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".audiofetch.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
