package logger

import (
	"testing"

	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("%s: New returned error: %v", format, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("%s: expected debug level enabled", format)
		}
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Errorf("Expected an error for an unknown level")
	}
}
