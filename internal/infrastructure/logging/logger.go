package logging

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process logger. Components log through named children.
type Logger struct {
	*zap.Logger
}

// Config selects the level and the encoding. Development switches to the
// colored console encoder.
type Config struct {
	Level       string
	Development bool
	OutputPaths []string
}

// New builds a logger from one of zap's presets. Call output goes to stdout,
// so logs default to stderr.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.NameKey = "component"
	zapCfg.EncoderConfig.MessageKey = "message"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = !cfg.Development
	zapCfg.OutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// NewDefault returns an info-level JSON logger, or a no-op logger when stderr
// cannot be opened.
func NewDefault() *Logger {
	logger, err := New(Config{Level: "info"})
	if err != nil {
		return NewNop()
	}
	return logger
}

// NewNop creates a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Component returns a child logger named after a reqflow component.
func (l *Logger) Component(name string) *zap.Logger {
	return l.Logger.Named(name)
}

// Credential headers are logged as "[redacted]".
var sensitiveHeaders = []string{
	"Authorization",
	"Proxy-Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Api-Key",
}

const redacted = "[redacted]"

// Headers logs a header map with credential values masked.
func Headers(key string, h map[string]string) zap.Field {
	return zap.Object(key, headerMap(h))
}

type headerMap map[string]string

func (h headerMap) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := h[name]
		if isSensitive(name) {
			value = redacted
		}
		enc.AddString(name, value)
	}
	return nil
}

func isSensitive(name string) bool {
	for _, s := range sensitiveHeaders {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}
