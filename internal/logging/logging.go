// Package logging builds the service logger and points the library loggers
// at the same configuration.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minefall/internal/config"
	"github.com/vancomm/minefall/internal/driver"
	"github.com/vancomm/minefall/internal/game"
	"github.com/vancomm/minefall/internal/mines"
	"github.com/vancomm/minefall/internal/session"
)

type Options struct {
	Development bool
	// LogFile, when set, also writes JSON lines to a rotated file.
	LogFile string
}

func OptionsFrom(cfg *config.App) Options {
	return Options{Development: cfg.Development, LogFile: cfg.LogFile}
}

// Libraries are the package loggers configured along with the service one.
func Libraries() []*logrus.Logger {
	return []*logrus.Logger{mines.Log, driver.Log, game.Log, session.Log}
}

// New returns the service logger and configures [Libraries] the same way.
// All of them share one file hook.
func New(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Development {
		level = logrus.DebugLevel
	}

	var hook logrus.Hook
	if opts.LogFile != "" {
		var err error
		hook, err = rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   opts.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
	}

	log := logrus.New()
	for _, l := range append(Libraries(), log) {
		l.SetLevel(level)
		l.SetFormatter(formatter(opts))
		if hook != nil {
			l.AddHook(hook)
		}
	}
	return log, nil
}

func formatter(opts Options) logrus.Formatter {
	if opts.Development {
		return &logrus.TextFormatter{
			ForceColors:     true,
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		}
	}
	return &logrus.JSONFormatter{}
}
