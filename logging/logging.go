// Package logging builds the zap loggers used by the store, the bridge, and
// the command line tool.
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spachava753/contactbridge/config"
)

// New builds a logger from cfg. The console format uses zap's development
// encoder; anything else logs JSON.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		zc = zap.NewProductionConfig()
	}

	level := zapcore.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
		}
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: building logger failed: %w", err)
	}
	return logger, nil
}

// OrNop returns logger, or a no-op logger when logger is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Redact returns a field that carries a short hash of value instead of the
// value itself. Search terms go through Redact before they reach a log line;
// contact values are never logged.
func Redact(key string, value string) zap.Field {
	return zap.String(key, Hash(value))
}

// Hash returns the redacted form of value.
func Hash(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}
