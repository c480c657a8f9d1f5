// Package logging provides zap logger helpers.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the shared application logger. It is a no-op logger until
// InitLogger runs.
var L = zap.NewNop()

var initOnce sync.Once

// InitLogger builds the shared production logger exactly once. Safe to
// call from TestMain and from Execute in any order.
func InitLogger() {
	initOnce.Do(func() {
		logger, err := New(false)
		if err != nil {
			// Nothing sensible to do without a logger.
			panic(fmt.Sprintf("initialize logger: %v", err))
		}
		L = logger
	})
}

// New builds a zap.Logger configured for development or production.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}
