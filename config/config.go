// Package config provides the explicit client configuration passed to all
// constructors. Core packages never read the process environment or any
// other ambient state; the only environment lookup happens here, in Load,
// at the edge of the program.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skbidisigma1/groupme-cli/errors"
)

// Default service endpoints.
const (
	DefaultAPIBase   = "https://api.groupme.com/v3"
	DefaultImageBase = "https://image.groupme.com"
	DefaultOAuthBase = "https://oauth.groupme.com"
	DefaultPushURL   = "wss://push.groupme.com/faye"
)

// EnvToken is the environment variable consulted by Load when the config
// file carries no token.
const EnvToken = "GROUPME_TOKEN"

// Config represents the complete client configuration
type Config struct {
	// Token is the API access token. Required. Never logged.
	Token string `yaml:"token" json:"token"`

	APIBase   string `yaml:"api_base,omitempty" json:"api_base,omitempty"`
	ImageBase string `yaml:"image_base,omitempty" json:"image_base,omitempty"`
	OAuthBase string `yaml:"oauth_base,omitempty" json:"oauth_base,omitempty"`
	PushURL   string `yaml:"push_url,omitempty" json:"push_url,omitempty"`

	// HTTPTimeout bounds every REST call.
	HTTPTimeout time.Duration `yaml:"http_timeout,omitempty" json:"http_timeout,omitempty"`
	// HandshakeTimeout bounds the websocket dial + protocol handshake.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout,omitempty" json:"handshake_timeout,omitempty"`

	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Web     WebConfig     `yaml:"web,omitempty" json:"web,omitempty"`
}

// LoggingConfig controls the slog handler built in cmd/groupme
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // json, text
}

// WebConfig controls the optional web GUI
type WebConfig struct {
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty"`
}

// Default returns a configuration with all endpoints and timeouts set to
// their defaults. The token is left empty and must be supplied by the caller.
func Default() *Config {
	return &Config{
		APIBase:          DefaultAPIBase,
		ImageBase:        DefaultImageBase,
		OAuthBase:        DefaultOAuthBase,
		PushURL:          DefaultPushURL,
		HTTPTimeout:      15 * time.Second,
		HandshakeTimeout: 45 * time.Second,
		Logging:          LoggingConfig{Level: "info", Format: "text"},
		Web:              WebConfig{Addr: ":8000"},
	}
}

// Load builds the configuration from an optional YAML file and the
// environment. File values win over defaults; an explicit token in the file
// wins over the environment. Pass an empty path to skip the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "parse config file")
		}
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv(EnvToken)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills any zero-valued field so a sparse config file works
func (c *Config) applyDefaults() {
	d := Default()
	if c.APIBase == "" {
		c.APIBase = d.APIBase
	}
	if c.ImageBase == "" {
		c.ImageBase = d.ImageBase
	}
	if c.OAuthBase == "" {
		c.OAuthBase = d.OAuthBase
	}
	if c.PushURL == "" {
		c.PushURL = d.PushURL
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Web.Addr == "" {
		c.Web.Addr = d.Web.Addr
	}
}

// Validate checks the configuration for required fields and consistency
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.WrapInvalid(errors.ErrMissingToken, "config", "Validate", "check token")
	}
	if c.APIBase == "" || c.PushURL == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: api_base and push_url must be set", errors.ErrInvalidConfig),
			"config", "Validate", "check endpoints")
	}
	if c.HTTPTimeout < 0 || c.HandshakeTimeout < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: timeouts cannot be negative", errors.ErrInvalidConfig),
			"config", "Validate", "check timeouts")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("%w: unknown log level %q", errors.ErrInvalidConfig, c.Logging.Level),
			"config", "Validate", "check log level")
	}
	return nil
}
