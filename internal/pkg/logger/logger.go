// Package logger holds the process-wide zap logger.
//
// Until Init runs every entry is dropped, so packages and tests can log
// without setup.
package logger

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current  atomic.Pointer[zap.Logger]
	level    = zap.NewAtomicLevel()
	initOnce sync.Once
)

func init() {
	current.Store(zap.NewNop())
}

// Init builds the global logger. Only the first call has an effect.
// level: debug, info, warn, error. format: json or console.
func Init(lvl, format string) error {
	var err error
	initOnce.Do(func() {
		err = build(lvl, format)
	})
	return err
}

func build(lvl, format string) error {
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		return fmt.Errorf("parse log level %q: %w", lvl, err)
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]interface{}{"service": "warden"}

	// Skip the package-level helpers when reporting the caller.
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	current.Store(l)
	return nil
}

// Level returns the active log level.
func Level() zapcore.Level {
	return level.Level()
}

// L returns the global logger.
func L() *zap.Logger {
	return current.Load()
}

// Named returns a component logger, e.g. "notification". Its entries report
// the caller of its own methods.
func Named(component string) *zap.Logger {
	return L().WithOptions(zap.AddCallerSkip(-1)).Named(component)
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Sync flushes buffered entries.
func Sync() error {
	return L().Sync()
}
