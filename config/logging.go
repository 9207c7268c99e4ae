package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLevel converts the configured level name into a zap level.
func (c LoggingConfig) ZapLevel() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

// NewLogger builds a zap logger from the logging section. The returned
// AtomicLevel can be adjusted at runtime when the config file changes.
func NewLogger(c LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := c.ZapLevel()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	var zcfg zap.Config
	if c.Format == "text" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	atom := zap.NewAtomicLevelAt(lvl)
	zcfg.Level = atom

	logger, err := zcfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("build logger: %w", err)
	}
	return logger, atom, nil
}
