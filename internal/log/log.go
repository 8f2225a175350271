// Package log holds the process-wide zap logger used by the commands, the
// ingestion adapter and the batch runner.
package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugar discards everything until Init is called, so library code and tests
// can log without setup
var sugar = zap.NewNop().Sugar()

// Init replaces the package logger. debug selects the development encoder
// and level.
func Init(debug bool) error {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logger, err = cfg.Build(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	sugar = logger.Sugar()
	return nil
}

// Set replaces the package logger with l
func Set(l *zap.Logger) {
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// Sync flushes buffered entries
func Sync() {
	_ = sugar.Sync()
}

func Debugw(msg string, keysAndValues ...interface{}) {
	sugar.Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	sugar.Warnw(msg, keysAndValues...)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}
