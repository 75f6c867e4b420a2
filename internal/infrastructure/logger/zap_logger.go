package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a production zap logger. Unknown levels fall back to
// info; encoding is "json" (default) or "console".
func NewLogger(level, encoding string) (*zap.Logger, error) {
	config := newConfig(level, encoding)
	return config.Build()
}

// NewFileLogger is NewLogger writing to path in addition to stderr.
func NewFileLogger(path, level, encoding string) (*zap.Logger, error) {
	config := newConfig(level, encoding)
	config.OutputPaths = []string{"stderr", path}
	return config.Build()
}

func newConfig(level, encoding string) zap.Config {
	config := zap.NewProductionConfig()

	// Parse level
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		l = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(l)

	if encoding == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config
}
