package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// CreateLogger builds the process logger. debug forces a development logger
// at debug level.
func (c *Config) CreateLogger(debug bool) (*zap.Logger, error) {
	lc := LogConfig{Level: defaultLogLevel}
	if c.Logger != nil {
		lc = *c.Logger
	}

	var zc zap.Config
	if debug || lc.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, errors.Wrap(err, "create logger")
		}
		zc.Level = level
	}

	logger, err := zc.Build()
	return logger, errors.Wrap(err, "create logger")
}
