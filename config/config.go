package config

import (
	"time"

	"github.com/kbukum/gofetch/logger"
	"github.com/kbukum/gofetch/security"
	"github.com/kbukum/gofetch/util"
	"github.com/kbukum/gofetch/validation"
)

// Config is the full gofetch configuration. Every key can come from the
// config file, from a GOFETCH_* environment variable, or from a flag.
type Config struct {
	Request   RequestConfig      `yaml:"request" mapstructure:"request"`
	Auth      AuthConfig         `yaml:"auth" mapstructure:"auth"`
	TLS       security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	Output    OutputConfig       `yaml:"output" mapstructure:"output"`
	Telemetry TelemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
	Log       logger.Config      `yaml:"log" mapstructure:"log"`
}

// RequestConfig describes the request to issue.
type RequestConfig struct {
	Method       string            `yaml:"method" mapstructure:"method"`
	Headers      map[string]string `yaml:"headers" mapstructure:"headers"`
	Body         string            `yaml:"body" mapstructure:"body"`
	Credentials  string            `yaml:"credentials" mapstructure:"credentials" validate:"omitempty,oneof=omit same-origin include"`
	Backend      string            `yaml:"backend" mapstructure:"backend" validate:"oneof=net fast"`
	Timeout      time.Duration     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	MaxRedirects int               `yaml:"max_redirects" mapstructure:"max_redirects" validate:"gte=0,lte=100"`
}

// AuthConfig holds at most one credential source.
type AuthConfig struct {
	Bearer       string `yaml:"bearer" mapstructure:"bearer"`
	User         string `yaml:"user" mapstructure:"user"`
	Password     string `yaml:"password" mapstructure:"password"`
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	APIKeyHeader string `yaml:"api_key_header" mapstructure:"api_key_header"`
}

// OutputConfig controls how the response is printed.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=body json yaml headers"`
	Fail   bool   `yaml:"fail" mapstructure:"fail"`
}

// TelemetryConfig enables OTLP export of xhr spans and metrics.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	c.Request.Backend = util.Coalesce(c.Request.Backend, "net")
	c.Request.MaxRedirects = util.Coalesce(c.Request.MaxRedirects, 20)
	c.Output.Format = util.Coalesce(c.Output.Format, "body")
	c.Auth.APIKeyHeader = util.Coalesce(c.Auth.APIKeyHeader, "X-API-Key")
	c.Log.ApplyDefaults()
}

// Validate checks the struct tags and the cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	sources := 0
	for _, set := range []bool{c.Auth.Bearer != "", c.Auth.User != "", c.Auth.APIKey != ""} {
		if set {
			sources++
		}
	}
	v := validation.New().
		Token("request.method", c.Request.Method).
		Custom(sources <= 1, "auth", "only one of bearer, user or api_key may be set").
		Custom(c.Auth.Password == "" || c.Auth.User != "", "auth.password", "requires auth.user").
		Token("auth.api_key_header", c.Auth.APIKeyHeader).
		Custom(!c.Telemetry.Enabled || c.Telemetry.Endpoint != "", "telemetry.endpoint", "is required when telemetry is enabled")
	for name := range c.Request.Headers {
		v.Token("request.headers", name)
	}
	if err := c.TLS.Validate(); err != nil {
		v.AddError("tls", err.Error())
	}
	if err := c.Log.Validate(); err != nil {
		v.AddError("log", err.Error())
	}
	return v.Err()
}
