// Package logging builds the process zerolog.Logger from settings.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"paketetl/internal/config"
)

// Config selects level, encoding and destination.
type Config struct {
	Level   string // trace, debug, info, warn, error; default info
	Format  string // json (default) or console
	Service string
	// Writer receives log lines; nil means stderr.
	Writer io.Writer
}

// New returns a logger for c. Unknown levels and formats are errors.
func New(c Config) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if s := strings.TrimSpace(c.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: level %q: %w", c.Level, err)
		}
		lvl = l
	}

	w := c.Writer
	if w == nil {
		w = os.Stderr
	}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", c.Format)
	}

	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if c.Service != "" {
		ctx = ctx.Str("service", c.Service)
	}
	return ctx.Logger(), nil
}

// FromSettings opens the configured output and builds the logger. The
// returned close func releases a file output and is a no-op otherwise.
func FromSettings(l config.Log) (zerolog.Logger, func() error, error) {
	nop := func() error { return nil }
	w, closeFn, err := Open(l.Output)
	if err != nil {
		return zerolog.Nop(), nop, err
	}
	log, err := New(Config{Level: l.Level, Format: l.Format, Service: l.Service, Writer: w})
	if err != nil {
		_ = closeFn()
		return zerolog.Nop(), nop, err
	}
	return log, closeFn, nil
}

// Open resolves an output name: "", "stderr", "stdout" or a file path
// opened for append.
func Open(name string) (io.Writer, func() error, error) {
	nop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "stderr":
		return os.Stderr, nop, nil
	case "stdout":
		return os.Stdout, nop, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nop, fmt.Errorf("logging: open %s: %w", name, err)
	}
	return f, f.Close, nil
}
