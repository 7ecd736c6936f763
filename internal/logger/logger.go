// Package logger builds the zap backed slog.Logger shared by every layer.
package logger

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns the logger and a flush function to defer in main.
// The json format uses zap's production encoder, anything else the colored
// development one.
func New(level, format string) (*slog.Logger, func() error, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("logger.New: %w", err)
	}

	var cfg zap.Config
	if format == FormatJSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = lvl

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("logger.New: %w", err)
	}

	return FromZap(zapLogger), zapLogger.Sync, nil
}

func FromZap(l *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(l.Core()))
}

func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
