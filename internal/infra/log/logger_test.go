package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	prod := newLogger(&buf, "prod")
	prod.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be suppressed outside dev, got %q", buf.String())
	}
	dev := newLogger(&buf, "dev")
	dev.Debug().Msg("visible")
	if !strings.Contains(buf.String(), `"message":"visible"`) {
		t.Fatalf("expected debug line in dev, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"service":"support-bot"`) {
		t.Fatalf("expected service field, got %q", buf.String())
	}
}
