// Package logging builds the process-wide structured logger. Grounded on
// the teacher's internal/logger package (lcgerke-schedCU/reimplement),
// adapted from its SugaredLogger to a plain *zap.Logger since every caller
// in this tree already logs with typed zap.Field values rather than the
// key/value varargs SugaredLogger style.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger configured for env. If env is empty it reads
// APP_ENV, defaulting to production (JSON, info level) when unset or
// unrecognized.
func New(env string) (*zap.Logger, error) {
	if env == "" {
		env = os.Getenv("APP_ENV")
	}

	var config zap.Config
	switch env {
	case "development", "dev":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger, nil
}
