package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("Discard() returned nil")
	}

	// Should not panic when logging.
	logger.Info("test message")
	logger.Debug("debug message")

	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should never be enabled")
	}
}

func TestDefault(t *testing.T) {
	t.Run("nil returns discard", func(t *testing.T) {
		logger := Default(nil)
		if logger == nil {
			t.Fatal("Default(nil) returned nil")
		}
		if logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Error("Default(nil) should return a discard logger")
		}
	})

	t.Run("non-nil returns same logger", func(t *testing.T) {
		var buf bytes.Buffer
		original := slog.New(slog.NewTextHandler(&buf, nil))
		result := Default(original)
		if result != original {
			t.Error("Default should return the same logger when non-nil")
		}
	})
}

func TestScope(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	logger := Scope(base, "store")
	logger.Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte(`component=store`)) {
		t.Errorf("expected component=store attribute in output, got: %s", buf.String())
	}

	buf.Reset()
	Scope(nil, "cache").Info("hello")
	if buf.Len() != 0 {
		t.Errorf("Scope(nil, ...) should discard, got: %s", buf.String())
	}
}
