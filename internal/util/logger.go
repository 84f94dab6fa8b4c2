package util

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger
)

// InitLogger initializes the global logger. level is optional and overrides
// the env's default level.
func InitLogger(env, level string) error {
	config, err := loggerConfig(env, level)
	if err != nil {
		return err
	}

	l, err := config.Build(zap.Fields(zap.String("service", "fast-order")))
	if err != nil {
		return err
	}

	SetLogger(l)
	return nil
}

func loggerConfig(env, level string) (zap.Config, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return config, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = lvl
	}
	return config, nil
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}

// SetLogger replaces the global logger and returns a func restoring the
// previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	mu.Lock()
	previous := logger
	logger = l
	mu.Unlock()

	undo := zap.ReplaceGlobals(l)
	return func() {
		undo()
		mu.Lock()
		logger = previous
		mu.Unlock()
	}
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if l := GetLogger(); l != nil {
		_ = l.Sync()
	}
}
