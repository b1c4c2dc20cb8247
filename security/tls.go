package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/kbukum/gofetch/errors"
)

// TLSConfig holds the client TLS settings applied to the transport backends.
type TLSConfig struct {
	// Insecure disables server certificate verification.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`

	// CAFile is a PEM bundle that replaces the system roots when set.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile and KeyFile hold the client certificate for mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`

	// ServerName overrides the name checked against the server certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is "1.2" or "1.3". Defaults to "1.2".
	MinVersion string `yaml:"min_version" mapstructure:"min_version"`
}

var tlsVersions = map[string]uint16{
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// Enabled reports whether any setting differs from the system defaults.
func (c *TLSConfig) Enabled() bool {
	if c == nil {
		return false
	}
	return c.Insecure || c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.MinVersion != ""
}

// Validate checks the settings without touching the filesystem.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("tls.cert_file and tls.key_file must be set together")
	}
	if c.MinVersion != "" {
		if _, ok := tlsVersions[c.MinVersion]; !ok {
			return fmt.Errorf("tls.min_version must be one of %v (got: %s)", slices.Sorted(maps.Keys(tlsVersions)), c.MinVersion)
		}
	}
	return nil
}

// Build loads the referenced files and returns the client tls.Config.
// It returns nil, nil when no setting is configured so callers keep the
// default transport. Load failures are CONFIG_ERROR app errors.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, tlsError(err)
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.Insecure, //nolint:gosec // opt-in via --insecure
		ServerName:         c.ServerName,
		MinVersion:         tls.VersionTLS12,
	}
	if v, ok := tlsVersions[c.MinVersion]; ok {
		cfg.MinVersion = v
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, tlsError(fmt.Errorf("read CA file: %w", err))
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, tlsError(fmt.Errorf("no certificates found in %s", c.CAFile))
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, tlsError(fmt.Errorf("load client certificate: %w", err))
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

func tlsError(cause error) *errors.AppError {
	return errors.New(errors.ErrCodeConfig, "invalid TLS settings").WithCause(cause)
}
