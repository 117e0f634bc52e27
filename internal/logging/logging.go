// Package logging provides structured logging with zap.
package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu           sync.Mutex
	globalLogger *zap.Logger
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stderr, stdout, or a file path; empty disables logging
}

// Init builds the global logger. The TUI owns the terminal, so an empty
// OutputPath yields a no-op logger rather than writing to stderr.
func Init(cfg Config) (*zap.Logger, error) {
	if strings.TrimSpace(cfg.OutputPath) == "" {
		mu.Lock()
		globalLogger = zap.NewNop()
		mu.Unlock()
		return globalLogger, nil
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{cfg.OutputPath}
	config.ErrorOutputPaths = []string{cfg.OutputPath}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
	return logger, nil
}

// L returns the global logger, a no-op logger until Init is called.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		globalLogger = zap.NewNop()
	}
	return globalLogger
}

// Sync flushes any buffered log entries.
func Sync() error {
	return L().Sync()
}
