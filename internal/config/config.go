// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document formats accepted as the default format.
var documentFormats = []string{"print", "slides", "pdf"}

// Config represents the studio configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	BrandFile  string `json:"brand_file,omitempty"`  // YAML brand override; the embedded brand is used when empty
	LocalStore string `json:"local_store,omitempty"` // SQLite file for offline sections
	OutputDir  string `json:"output_dir,omitempty"`  // Directory for assembled documents
	ChromePath string `json:"chrome_path,omitempty"` // Chrome binary for PDF printing

	// Documents
	Title  string `json:"title,omitempty"`  // Default document title
	Format string `json:"format,omitempty"` // Default document format (print, slides, pdf)

	// Research
	Feeds            []string `json:"feeds,omitempty"`             // Industry RSS/Atom feeds scanned by research runs
	FetchConcurrency int      `json:"fetch_concurrency,omitempty"` // Parallel page fetches per research run

	// Assistant
	ChatHistory int `json:"chat_history,omitempty"` // Turns kept per chat session

	// Behavior
	Port        int    `json:"port,omitempty"`         // HTTP port for serve
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA sites during research
	Verbose     bool   `json:"verbose,omitempty"`      // Enable debug logging
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Format != "" && !validFormat(c.Format) {
		return fmt.Errorf("config error: 'format' must be one of %s, got %q", strings.Join(documentFormats, ", "), c.Format)
	}

	// Validate numeric ranges
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.FetchConcurrency < 0 {
		return fmt.Errorf("config error: 'fetch_concurrency' must be non-negative")
	}
	if c.ChatHistory < 0 {
		return fmt.Errorf("config error: 'chat_history' must be non-negative")
	}
	if c.ChatHistory%2 != 0 {
		return fmt.Errorf("config error: 'chat_history' must be even so user and model turns stay paired")
	}

	for _, feed := range c.Feeds {
		if !strings.HasPrefix(feed, "http://") && !strings.HasPrefix(feed, "https://") {
			return fmt.Errorf("config error: feed %q must be an http(s) URL", feed)
		}
	}

	// Validate file paths exist (if specified)
	if c.BrandFile != "" {
		if _, err := os.Stat(c.BrandFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: brand file not found: %s", c.BrandFile)
		}
	}
	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}

	return nil
}

func validFormat(format string) bool {
	for _, f := range documentFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BrandFile == "" {
		result.BrandFile = defaults.BrandFile
	}
	if result.LocalStore == "" {
		result.LocalStore = defaults.LocalStore
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.Title == "" {
		result.Title = defaults.Title
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if len(result.Feeds) == 0 && len(defaults.Feeds) > 0 {
		result.Feeds = append([]string(nil), defaults.Feeds...)
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.FetchConcurrency == 0 {
		if defaults.FetchConcurrency > 0 {
			result.FetchConcurrency = defaults.FetchConcurrency
		} else {
			result.FetchConcurrency = 4
		}
	}
	if result.ChatHistory == 0 {
		if defaults.ChatHistory > 0 {
			result.ChatHistory = defaults.ChatHistory
		} else {
			result.ChatHistory = 20
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
