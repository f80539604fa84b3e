// Package logging builds the hclog loggers used across todoflow.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/sandeepkv93/todoflow/internal/config"
)

const Name = "todoflow"

// New returns a logger writing to cfg.LogFile when set, otherwise to fallback.
// A nil fallback with no log file yields a null logger, which keeps the TUI
// screen clean. The returned close func is never nil.
func New(cfg config.RuntimeConfig, fallback io.Writer) (hclog.Logger, func() error, error) {
	noop := func() error { return nil }
	level := hclog.LevelFromString(cfg.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, noop, fmt.Errorf("open log file: %w", err)
		}
		return newLogger(level, f, false), f.Close, nil
	}
	if fallback == nil {
		return hclog.NewNullLogger(), noop, nil
	}
	return newLogger(level, fallback, true), noop, nil
}

func newLogger(level hclog.Level, out io.Writer, color bool) hclog.Logger {
	opts := &hclog.LoggerOptions{
		Name:   Name,
		Level:  level,
		Output: out,
	}
	if color {
		opts.Color = hclog.AutoColor
	}
	return hclog.New(opts)
}
