package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Environment names accepted by the Visa API.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

// Base URLs for the two Visa environments.
const (
	sandboxBaseURL    = "https://sandbox.api.visa.com"
	productionBaseURL = "https://api.visa.com"
)

// Transport names for the MCP server.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is the top-level configuration for visamcp. It is built once at
// startup by Load and never mutated afterwards.
type Config struct {
	// Visa API credentials (basic auth over mutual TLS).
	UserID   string `yaml:"userId" validate:"required"`
	Password string `yaml:"password" validate:"required"`

	// Client certificate and private key for the mutual-TLS handshake.
	CertPath string `yaml:"certPath" validate:"required"`
	KeyPath  string `yaml:"keyPath" validate:"required"`

	// Optional extra trust anchors for verifying the Visa server certificate.
	// When empty the system cert pool is used.
	CAPath string `yaml:"caPath,omitempty"`

	// Environment selects the Visa API environment.
	Environment string `yaml:"environment" validate:"oneof=sandbox production"`

	// BaseURL overrides the environment-derived base URL. Intended for tests
	// and corporate proxies; leave empty in normal operation.
	BaseURL string `yaml:"baseUrl,omitempty" validate:"omitempty,url"`

	Server ServerConfig `yaml:"server"`
}

// ServerConfig defines how the MCP server is exposed.
type ServerConfig struct {
	Transport string `yaml:"transport" validate:"oneof=stdio sse"`
	Host      string `yaml:"host,omitempty"`
	Port      int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
}

// DefaultConfig returns the built-in defaults: sandbox environment and the
// stdio transport. Credentials and certificate paths have no defaults; they
// must come from a config file or the environment.
func DefaultConfig() Config {
	return Config{
		Environment: EnvSandbox,
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "localhost",
			Port:      8080,
		},
	}
}

// VisaBaseURL returns the base URL for the configured environment, honoring
// an explicit BaseURL override.
func (c Config) VisaBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Environment == EnvProduction {
		return productionBaseURL
	}
	return sandboxBaseURL
}

var validate = validator.New()

// Validate checks the configuration for completeness. It is called once by
// the serve command before any client is constructed.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "required":
				return fmt.Errorf("missing required configuration: %s", yamlName(fe.Field()))
			case "oneof":
				return fmt.Errorf("invalid value for %s: must be one of [%s]", yamlName(fe.Field()), fe.Param())
			default:
				return fmt.Errorf("invalid configuration for %s: %s constraint failed", yamlName(fe.Field()), fe.Tag())
			}
		}
		return err
	}
	return nil
}

// yamlName maps a Go field name to the name users see in config files and
// environment variable documentation.
func yamlName(field string) string {
	switch field {
	case "UserID":
		return "userId (VISA_USER_ID)"
	case "Password":
		return "password (VISA_PASSWORD)"
	case "CertPath":
		return "certPath (VISA_CERT_PATH)"
	case "KeyPath":
		return "keyPath (VISA_KEY_PATH)"
	case "Environment":
		return "environment (VISA_ENV)"
	case "BaseURL":
		return "baseUrl (VISA_BASE_URL)"
	default:
		return field
	}
}
