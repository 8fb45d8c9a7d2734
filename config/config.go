package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Conditions lists the accepted values for the condition filter.
var Conditions = []string{"New", "Pre-Owned", "Used"}

// Config holds crawler configuration.
type Config struct {
	StoreName   string
	BaseURL     string // overrides the derived storefront URL when set
	Condition   string // optional condition filter, one of Conditions
	DataDir     string
	LogDir      string
	UserAgent   string
	Timeout     time.Duration
	Delay       time.Duration // pause between page fetches
	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns the defaults for the sample storefront.
func DefaultConfig() *Config {
	return &Config{
		StoreName: "garlandcomputer",
		DataDir:   "data",
		LogDir:    "logs",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Timeout:   10 * time.Second,
		Delay:     0,
	}
}

// StartURL returns the first results page for the configured store.
func (c *Config) StartURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://www.ebay.com/sch/%s/m.html", c.StoreName)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.StoreName == "" {
		return fmt.Errorf("store name cannot be empty")
	}
	if strings.ContainsAny(c.StoreName, "/\\") {
		return fmt.Errorf("store name %q must not contain path separators", c.StoreName)
	}

	parsedURL, err := url.Parse(c.StartURL())
	if err != nil {
		return fmt.Errorf("invalid start URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("start URL must include a host")
	}

	if c.Condition != "" && !validCondition(c.Condition) {
		return fmt.Errorf("condition must be one of %s", strings.Join(Conditions, ", "))
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log directory cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}

	return nil
}

func validCondition(condition string) bool {
	for _, c := range Conditions {
		if strings.EqualFold(c, condition) {
			return true
		}
	}
	return false
}
