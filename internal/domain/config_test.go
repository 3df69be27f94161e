package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// TestLoadConfig_Valid tests loading a complete configuration file
func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfigFile(t, `
transport:
  type: http
  http:
    host: 127.0.0.1
    port: 8080
schema:
  path: contracts.yaml
upstream:
  base_url: https://api.weatherapi.com/v1
  timeout_seconds: 5
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected config to load, got error: %v", err)
	}

	if config.Transport.Type != "http" {
		t.Errorf("Expected transport type 'http', got '%s'", config.Transport.Type)
	}
	if config.Transport.HTTP.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", config.Transport.HTTP.Port)
	}
	if config.Schema.Path != "contracts.yaml" {
		t.Errorf("Expected schema path 'contracts.yaml', got '%s'", config.Schema.Path)
	}
	if config.Upstream.TimeoutSeconds != 5 {
		t.Errorf("Expected timeout 5, got %d", config.Upstream.TimeoutSeconds)
	}
}

// TestLoadConfig_AppliesDefaults tests that omitted fields fall back to
// defaults
func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
transport:
  type: stdio
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected config to load, got error: %v", err)
	}

	if config.Schema.Path != DefaultSchemaPath {
		t.Errorf("Expected default schema path '%s', got '%s'", DefaultSchemaPath, config.Schema.Path)
	}
	if config.Upstream.BaseURL != DefaultUpstreamBaseURL {
		t.Errorf("Expected default base URL '%s', got '%s'", DefaultUpstreamBaseURL, config.Upstream.BaseURL)
	}
	if config.Upstream.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("Expected default timeout %d, got %d", DefaultTimeoutSeconds, config.Upstream.TimeoutSeconds)
	}
}

// TestLoadConfig_MissingFile tests the error for a nonexistent path
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' in error, got: %v", err)
	}
}

// TestLoadConfig_InvalidYAMLSyntax tests the error for malformed YAML
func TestLoadConfig_InvalidYAMLSyntax(t *testing.T) {
	path := writeConfigFile(t, "transport: [unclosed")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "invalid YAML syntax") {
		t.Errorf("Expected YAML syntax error, got: %v", err)
	}
}

// TestValidate_MultipleErrors tests that validation reports
// every problem at once
func TestValidate_MultipleErrors(t *testing.T) {
	config := &Config{
		Transport: TransportConfig{Type: "http"},
		Schema:    SchemaConfig{Path: "x.yaml"},
		Upstream: UpstreamConfig{
			BaseURL:        "ftp://example.com",
			TimeoutSeconds: -1,
		},
	}

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation errors, got nil")
	}

	message := err.Error()
	for _, expected := range []string{
		"HTTP host is required",
		"invalid HTTP port",
		"http or https scheme",
		"invalid upstream timeout",
	} {
		if !strings.Contains(message, expected) {
			t.Errorf("Expected '%s' in validation error, got: %v", expected, message)
		}
	}
}

// TestValidate_InvalidTransportType tests rejection of unknown transports
func TestValidate_InvalidTransportType(t *testing.T) {
	config := DefaultConfig()
	config.Transport.Type = "websocket"

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected error for unknown transport type, got nil")
	}
	if !strings.Contains(err.Error(), "invalid transport type 'websocket'") {
		t.Errorf("Expected transport type error, got: %v", err)
	}
}

// TestDefaultConfigIsValid tests that the built-in defaults pass their
// own validation
func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got: %v", err)
	}
	if config.Transport.Type != "stdio" {
		t.Errorf("Expected stdio transport, got '%s'", config.Transport.Type)
	}
}
