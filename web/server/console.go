package server

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warn", "error"
}

// consoleCore is a zapcore.Core that forwards entries to a render's console
// channel. Sends never block; messages are dropped when the channel is full.
type consoleCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
	out    chan<- ConsoleMessage
}

func newConsoleCore(level zapcore.LevelEnabler, out chan<- ConsoleMessage) zapcore.Core {
	return &consoleCore{LevelEnabler: level, out: out}
}

func (c *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	return &consoleCore{
		LevelEnabler: c.LevelEnabler,
		fields:       append(append([]zapcore.Field(nil), c.fields...), fields...),
		out:          c.out,
	}
}

func (c *consoleCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *consoleCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	msg := ConsoleMessage{
		Message:   formatEntry(ent.Message, append(append([]zapcore.Field(nil), c.fields...), fields...)),
		Timestamp: ent.Time,
		Level:     ent.Level.String(),
	}
	select {
	case c.out <- msg:
	default:
	}
	return nil
}

func (c *consoleCore) Sync() error { return nil }

// formatEntry renders a message and its fields as "msg key=value ..."
func formatEntry(message string, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	if len(enc.Fields) == 0 {
		return message
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, enc.Fields[k])
	}
	return b.String()
}

// NewWebLogger returns base extended to also send info and above to a
// render's console channel
func NewWebLogger(base *zap.Logger, renderID string, out chan<- ConsoleMessage) *zap.Logger {
	return base.With(zap.String("render", renderID)).WithOptions(
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, newConsoleCore(zapcore.InfoLevel, out))
		}))
}
