package application

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

// captureLogEntry runs fn while capturing the standard logger output
// and returns the decoded JSON entry.
func captureLogEntry(t *testing.T, fn func(logger *StructuredLogger)) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	fn(NewStructuredLogger())

	line := buf.String()
	start := strings.Index(line, "{")
	if start < 0 {
		t.Fatalf("Expected JSON entry in log output, got %q", line)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(line[start:])), &entry); err != nil {
		t.Fatalf("Failed to parse log entry: %v", err)
	}
	return entry
}

// TestLogInfo tests the structure of informational entries
func TestLogInfo(t *testing.T) {
	entry := captureLogEntry(t, func(logger *StructuredLogger) {
		logger.LogInfo("server started", map[string]interface{}{
			"transport_type": "stdio",
			"tools":          7,
		})
	})

	if entry["level"] != "INFO" {
		t.Errorf("Expected level INFO, got %v", entry["level"])
	}
	if entry["message"] != "server started" {
		t.Errorf("Expected message 'server started', got %v", entry["message"])
	}
	if entry["transport_type"] != "stdio" {
		t.Errorf("Expected transport_type context, got %v", entry["transport_type"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("Expected timestamp in entry")
	}
}

// TestLogErrorIncludesCause tests that the wrapped error is serialized
func TestLogErrorIncludesCause(t *testing.T) {
	entry := captureLogEntry(t, func(logger *StructuredLogger) {
		logger.LogError("tool invocation failed", errors.New("connection refused"), map[string]interface{}{
			"tool": "get_current_weather",
		})
	})

	if entry["level"] != "ERROR" {
		t.Errorf("Expected level ERROR, got %v", entry["level"])
	}
	if entry["error"] != "connection refused" {
		t.Errorf("Expected error detail, got %v", entry["error"])
	}
	if entry["tool"] != "get_current_weather" {
		t.Errorf("Expected tool context, got %v", entry["tool"])
	}
}
