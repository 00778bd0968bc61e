package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger used by command code. Components get a
// logger injected instead.
var Log = zap.NewNop()

// Init initializes the global logger with level and encoding from config.
func Init(level, encoding string) error {
	l, err := New(level, encoding)
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// New builds a logger writing to stdout. Unknown levels fall back to info.
func New(level, encoding string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	default:
		lvl = zap.InfoLevel
	}
	if encoding != "console" {
		encoding = "json"
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(lvl),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}
