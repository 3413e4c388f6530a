package server

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(zap.NewNop(), "test-render-123", messageChan)

	logger.Info("render started")

	select {
	case msg := <-messageChan:
		if msg.Message != "render started" {
			t.Errorf("Expected message 'render started', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestWebLogger_Fields(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(zap.NewNop(), "test-render-format", messageChan).
		With(zap.String("integrator", "ltc"))

	logger.Info("tile done", zap.Int("tile", 3), zap.Int("total", 12))

	select {
	case msg := <-messageChan:
		expected := "tile done integrator=ltc tile=3 total=12"
		if msg.Message != expected {
			t.Errorf("Expected formatted message '%s', got '%s'", expected, msg.Message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for formatted message")
	}
}

func TestWebLogger_LevelFilter(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(zap.NewNop(), "test-render-debug", messageChan)

	logger.Debug("tile done")
	logger.Warn("large render requested")

	select {
	case msg := <-messageChan:
		if msg.Level != "warn" {
			t.Errorf("Expected only the warning, got %+v", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for warning")
	}
	if len(messageChan) != 0 {
		t.Errorf("Expected debug messages to be filtered, %d left", len(messageChan))
	}
}

func TestWebLogger_KeepsBaseLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(zap.New(core), "render-7", messageChan)

	logger.Debug("tile done")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 base log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["render"]; got != "render-7" {
		t.Errorf("Expected render id field, got %v", got)
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger(zap.NewNop(), "test-render-789", messageChan)

	logger.Info("Message 1")

	select {
	case <-messageChan:
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for first message")
	}

	// These must not block even though the channel fills up
	logger.Info("Message 2")
	logger.Info("Message 3")
	logger.Info("Message 4")
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger(zap.NewNop(), "test-render-nil", nil)
	logger.Info("Test message with nil channel")
}
