package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
// This is the root configuration structure loaded from YAML files.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Schema    SchemaConfig    `yaml:"schema"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
}

// TransportConfig defines transport settings.
// Specifies whether to use stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SchemaConfig points at the schema document that declares the tool
// contracts served by this process.
type SchemaConfig struct {
	Path string `yaml:"path"`
}

// UpstreamConfig defines the weather data provider settings. The API key
// is deliberately not part of the file: it comes from the WEATHER_API_KEY
// environment variable and is owned by the upstream client.
type UpstreamConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Configuration defaults applied before validation.
const (
	DefaultSchemaPath      = "schemas.yaml"
	DefaultUpstreamBaseURL = "https://api.weatherapi.com/v1"
	DefaultTimeoutSeconds  = 10
)

// LoadConfig reads and validates configuration from a YAML file.
// Returns an error if the file is missing, has invalid syntax, or fails validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns the configuration used when no file is present:
// stdio transport against the public weather API.
func DefaultConfig() *Config {
	config := &Config{Transport: TransportConfig{Type: "stdio"}}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Transport.Type == "" {
		c.Transport.Type = "stdio"
	}
	if c.Schema.Path == "" {
		c.Schema.Path = DefaultSchemaPath
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errors []string

	if err := c.validateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.Schema.Path == "" {
		errors = append(errors, "schema path is required")
	}

	if err := c.validateUpstream(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errors []string

	if c.Transport.Type == "" {
		errors = append(errors, "transport type is required")
	} else if c.Transport.Type != "stdio" && c.Transport.Type != "http" {
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	if c.Transport.Type == "http" {
		if c.Transport.HTTP.Host == "" {
			errors = append(errors, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// validateUpstream validates the weather provider configuration.
func (c *Config) validateUpstream() error {
	var errors []string

	if c.Upstream.BaseURL == "" {
		errors = append(errors, "upstream base_url is required")
	} else {
		parsedURL, err := url.Parse(c.Upstream.BaseURL)
		if err != nil {
			errors = append(errors, fmt.Sprintf("upstream base_url is invalid: %v", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, "upstream base_url must use http or https scheme")
		} else if parsedURL.Host == "" {
			errors = append(errors, "upstream base_url must include a host")
		}
	}

	if c.Upstream.TimeoutSeconds <= 0 {
		errors = append(errors, fmt.Sprintf("invalid upstream timeout %d: must be positive", c.Upstream.TimeoutSeconds))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
