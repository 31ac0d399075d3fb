package vellum

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration persisted in the config directory
// (separate from the site settings stored in the database).
type Config struct {
	viper        *viper.Viper
	ConfigDir    string `mapstructure:"config_dir"`    // Current config dir
	Address      string `mapstructure:"address"`       // Listen address
	Port         string `mapstructure:"port"`          // Listen port
	DatabaseFile string `mapstructure:"database_file"` // SQLite database file name inside the config dir
	BaseURL      string `mapstructure:"base_url"`      // Canonical base URL used in feeds and the sitemap
	NATSURL      string `mapstructure:"nats_url"`      // Graph service NATS URL, empty disables publishing
	CookieName   string `mapstructure:"cookie_name"`   // Session cookie name
	SessionHours int    `mapstructure:"session_hours"` // Session lifetime in hours
	PrettyHTML   bool   `mapstructure:"pretty_html"`   // Reindent rendered HTML before writing it out
	FirstRun     bool   `mapstructure:"first_run"`
}

// SessionTTL returns the configured session lifetime.
func (cfg *Config) SessionTTL() time.Duration {
	return time.Duration(cfg.SessionHours) * time.Hour
}

// SetBaseURL validates and persists a new canonical base URL.
func (cfg *Config) SetBaseURL(base string) error {
	parsed, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parsing base url : %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base url must be http or https, got %q", base)
	}
	cfg.BaseURL = base
	cfg.viper.Set("base_url", base)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// SetFirstRun persists the first-run flag, flipped off once an admin
// account exists.
func (cfg *Config) SetFirstRun(firstRun bool) error {
	cfg.FirstRun = firstRun
	cfg.viper.Set("first_run", firstRun)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// SetPrettyHTML persists the output prettify flag.
func (cfg *Config) SetPrettyHTML(enabled bool) error {
	cfg.PrettyHTML = enabled
	cfg.viper.Set("pretty_html", enabled)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}
