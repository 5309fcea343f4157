// Package config provides configuration loading and validation for the
// archiver. Configuration comes from a JSON file; flags and environment
// variables override it in the CLI layer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/news-archiver/internal/sites"
)

// Config is the archiver configuration. All fields are optional; missing
// values use defaults or must be provided via CLI flags.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `json:"database_url,omitempty" validate:"omitempty,url"`

	// APIKey is the Gemini API key; when empty the keyword classifier is
	// used instead.
	APIKey string `json:"api_key,omitempty"`

	// OutputRoot is where article text and images are written. Empty
	// disables on-disk persistence (content still goes to the store).
	OutputRoot string `json:"output_root,omitempty"`

	// CrawlIntervalMinutes is the delay between crawl cycles.
	CrawlIntervalMinutes int `json:"crawl_interval_minutes,omitempty" validate:"gte=0"`

	// NavigationTimeoutMs bounds each page navigation.
	NavigationTimeoutMs int `json:"navigation_timeout_ms,omitempty" validate:"gte=0"`

	// ScrollPages overrides the per-site scroll step count; 0 keeps each
	// site's default.
	ScrollPages int `json:"scroll_pages,omitempty" validate:"gte=0,lte=50"`

	// DisabledSites lists internal site names to exclude from crawling.
	DisabledSites []string `json:"disabled_sites,omitempty"`

	// Verbose enables detailed logging.
	Verbose bool `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// Validate checks field constraints and that every disabled site names a
// registered rule.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for _, name := range c.DisabledSites {
		if _, ok := sites.ByName(name); !ok {
			return fmt.Errorf("config error: unknown site %q in disabled_sites", name)
		}
	}
	return nil
}

// CrawlInterval returns the configured interval, or zero when unset so the
// scheduler default applies.
func (c *Config) CrawlInterval() time.Duration {
	return time.Duration(c.CrawlIntervalMinutes) * time.Minute
}

// NavigationTimeout returns the configured timeout, or zero when unset so
// the stage defaults apply.
func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// SiteEnabled reports whether the named site should be crawled.
func (c *Config) SiteEnabled(name string) bool {
	for _, disabled := range c.DisabledSites {
		if rule, ok := sites.ByName(disabled); ok && rule.Identity.Matches(name) {
			return false
		}
	}
	return true
}
