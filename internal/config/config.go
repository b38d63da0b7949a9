// Package config resolves server configuration from defaults, an optional
// YAML file, and SCRAPEWORKS_* environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Duration wraps time.Duration so YAML configs can use values like "30m".
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds every recognized server option.
type Config struct {
	// Upstream control-plane API.
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	Debug bool `yaml:"debug"`

	// Transport selection: "stdio" or "http".
	Transport string `yaml:"transport"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`

	// OAuth surface for the network transport.
	OAuthIssuer   string `yaml:"oauth_issuer"`
	OAuthClientID string `yaml:"oauth_client_id"`
	DisableAuth   bool   `yaml:"disable_auth"`

	// Session lifecycle.
	MaxSessions        int      `yaml:"max_sessions"`
	SessionIdleTimeout Duration `yaml:"session_idle_timeout"`
	ReaperInterval     Duration `yaml:"reaper_interval"`

	// TrustProxy honors X-Forwarded-Proto/Host when computing the server's
	// canonical URL for discovery documents and challenges.
	TrustProxy bool `yaml:"trust_proxy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:            "https://api.scrapeworks.io",
		Transport:          TransportStdio,
		Host:               "0.0.0.0",
		Port:               8080,
		OAuthIssuer:        "https://auth.scrapeworks.io",
		MaxSessions:        100,
		SessionIdleTimeout: Duration(30 * time.Minute),
		ReaperInterval:     Duration(5 * time.Minute),
	}
}

// Load resolves the configuration. path may be empty; a missing explicit file
// is an error, since the operator asked for it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RequireAuth reports whether new network connections must present a bearer
// credential. The stdio transport runs with the operator's own key.
func (c *Config) RequireAuth() bool {
	return c.Transport == TransportHTTP && !c.DisableAuth
}

func (c *Config) validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, http)", c.Transport)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1")
	}
	// The interval must undercut the threshold so no session survives much
	// past threshold + interval.
	if c.ReaperInterval.Std() >= c.SessionIdleTimeout.Std() {
		return fmt.Errorf("reaper_interval (%s) must be shorter than session_idle_timeout (%s)",
			c.ReaperInterval.Std(), c.SessionIdleTimeout.Std())
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.BaseURL, "SCRAPEWORKS_BASE_URL")
	setString(&cfg.APIKey, "SCRAPEWORKS_API_KEY")
	setBool(&cfg.Debug, "SCRAPEWORKS_DEBUG")
	setString(&cfg.Transport, "SCRAPEWORKS_TRANSPORT")
	setString(&cfg.Host, "SCRAPEWORKS_HOST")
	setInt(&cfg.Port, "SCRAPEWORKS_PORT")
	setString(&cfg.OAuthIssuer, "SCRAPEWORKS_OAUTH_ISSUER")
	setString(&cfg.OAuthClientID, "SCRAPEWORKS_OAUTH_CLIENT_ID")
	setBool(&cfg.DisableAuth, "SCRAPEWORKS_DISABLE_AUTH")
	setInt(&cfg.MaxSessions, "SCRAPEWORKS_MAX_SESSIONS")
	setDuration(&cfg.SessionIdleTimeout, "SCRAPEWORKS_SESSION_IDLE_TIMEOUT")
	setDuration(&cfg.ReaperInterval, "SCRAPEWORKS_REAPER_INTERVAL")
	setBool(&cfg.TrustProxy, "SCRAPEWORKS_TRUST_PROXY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = Duration(parsed)
		}
	}
}
