package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const sampleToken = "bot7301550412:AAGx9cPqW3vThM5rZ2kLbYd0NfUjQe8oS1w"

func TestMaskTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    `Post "https://api.telegram.org/` + sampleToken + `/sendMessage": context deadline exceeded`,
			expected: `Post "https://api.telegram.org/bot***:***masked-token***/sendMessage": context deadline exceeded`,
		},
		{
			input:    "no secrets in this line",
			expected: "no secrets in this line",
		},
		{
			input:    sampleToken + " and " + sampleToken,
			expected: "bot***:***masked-token*** and bot***:***masked-token***",
		},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got := maskTokens(tt.input); got != tt.expected {
				t.Errorf("maskTokens(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTokenMaskerHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil))

	logger.Info("request failed for "+sampleToken,
		slog.String("url", "https://api.telegram.org/"+sampleToken+"/getUpdates"),
		slog.Any("error", errors.New("Get "+sampleToken+": EOF")))

	output := buf.String()
	if strings.Contains(output, sampleToken) {
		t.Errorf("expected output to not contain original token, got %q", output)
	}
	if !strings.Contains(output, "***masked-token***") {
		t.Errorf("expected output to contain masked token, got %q", output)
	}
}

func TestTokenMaskerHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil))

	logger = logger.With(slog.String("token", sampleToken))
	logger.Info("message with token in attr")

	output := buf.String()
	if strings.Contains(output, sampleToken) {
		t.Errorf("expected output to not contain original token, got %q", output)
	}
	if !strings.Contains(output, "***masked-token***") {
		t.Errorf("expected output to contain masked token, got %q", output)
	}
}

func TestTokenMaskerHandler_GroupAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil))

	logger.Info("grouped",
		slog.Group("request", slog.String("url", "https://api.telegram.org/"+sampleToken)))

	if output := buf.String(); strings.Contains(output, sampleToken) {
		t.Errorf("expected output to not contain original token, got %q", output)
	}
}
