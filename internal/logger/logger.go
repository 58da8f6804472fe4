package logger

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewConsoleLogger builds the CLI logger. Verbose enables V(1) detail,
// jsonFormat switches the encoder from colored console to JSON lines.
func NewConsoleLogger(verbose bool, jsonFormat bool) logr.Logger {
	var config zap.Config
	if jsonFormat {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.TimeKey = ""
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return zapr.NewLogger(zapLogger)
}
