// Package config loads and validates RegRadar configuration.
// Configuration lives at <app dir>/config.yaml (default ~/.regradar/config.yaml)
// with environment variable overrides for API credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all RegRadar configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM completion service
	LLM LLMConfig `yaml:"llm"`

	// Search/crawl service
	WebTools WebToolsConfig `yaml:"webtools"`

	// Long-term memory store
	Memory MemoryConfig `yaml:"memory"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the completion service client.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
}

// WebToolsConfig configures the search/crawl service client.
type WebToolsConfig struct {
	// Tavily API key; when empty, the keyless fallback provider
	// (DuckDuckGo search + direct page fetch) is used.
	TavilyAPIKey string `yaml:"tavily_api_key"`
	BaseURL      string `yaml:"base_url"`
	Timeout      string `yaml:"timeout"`

	// Crawl bounds
	MaxDepth     int `yaml:"max_depth"`
	CrawlLimit   int `yaml:"crawl_limit"`
	SearchLimit  int `yaml:"search_limit"`
	ExcerptLimit int `yaml:"excerpt_limit"`
}

// MemoryConfig configures the long-term memory store.
type MemoryConfig struct {
	// Mem0 API key; when empty, a local SQLite store is used instead.
	Mem0APIKey string `yaml:"mem0_api_key"`
	BaseURL    string `yaml:"base_url"`
	Timeout    string `yaml:"timeout"`

	// Local fallback store
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "RegRadar",
		Version: "1.0.0",

		LLM: LLMConfig{
			Model:       "gpt-4.1-mini",
			BaseURL:     "https://api.openai.com/v1",
			Temperature: 0.3,
			Timeout:     "120s",
		},

		WebTools: WebToolsConfig{
			BaseURL:      "https://api.tavily.com",
			Timeout:      "60s",
			MaxDepth:     2,
			CrawlLimit:   5,
			SearchLimit:  5,
			ExcerptLimit: 1500,
		},

		Memory: MemoryConfig{
			BaseURL:      "https://api.mem0.ai",
			Timeout:      "15s",
			DatabasePath: "memory.db",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// AppDir returns the RegRadar application directory. A workspace-local
// .regradar directory wins over the home directory one.
func AppDir() string {
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ".regradar")
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return local
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".regradar"
	}
	return filepath.Join(home, ".regradar")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Completion service credentials (check in priority order)
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("REGRADAR_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if url := os.Getenv("REGRADAR_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if model := os.Getenv("REGRADAR_MODEL"); model != "" {
		c.LLM.Model = model
	}

	// Search/crawl service
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		c.WebTools.TavilyAPIKey = key
	}

	// Memory store
	if key := os.Getenv("MEM0_API_KEY"); key != "" {
		c.Memory.Mem0APIKey = key
	}
	if path := os.Getenv("REGRADAR_DB"); path != "" {
		c.Memory.DatabasePath = path
	}
}

// Validate checks the configuration for fatal problems. Missing optional
// credentials are not errors; the affected clients fall back or degrade.
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.WebTools.ExcerptLimit <= 0 {
		return fmt.Errorf("webtools.excerpt_limit must be positive")
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("llm.timeout: %w", err)
	}
	return nil
}

// TimeoutDuration returns the completion service timeout as a duration.
func (c LLMConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// TimeoutDuration returns the search/crawl service timeout as a duration.
func (c WebToolsConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// TimeoutDuration returns the memory store timeout as a duration.
func (c MemoryConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

