// Package logger builds the application zap logger
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger for the given level and format ("json" or "console")
// Unknown levels keep the preset of the chosen format.
func New(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config

	if strings.EqualFold(format, "json") {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if lvl, ok := parseLevel(level); ok {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return zapCfg.Build()
}

func parseLevel(level string) (zapcore.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel, true
	case "info":
		return zap.InfoLevel, true
	case "warn":
		return zap.WarnLevel, true
	case "error":
		return zap.ErrorLevel, true
	}
	return zap.InfoLevel, false
}
