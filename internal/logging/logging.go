// Package logging builds the zerolog loggers shared by the binaries.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with component. Output is human readable when
// API_ENV is "dev" or "development", JSON otherwise.
func New(component string) zerolog.Logger {
	return NewWithWriter(component, os.Stdout)
}

// NewWithWriter is New writing to w.
func NewWithWriter(component string, w io.Writer) zerolog.Logger {
	switch strings.ToLower(os.Getenv("API_ENV")) {
	case "dev", "development":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// SetLevel sets the global level from its name ("debug", "info", ...).
// An empty name leaves the level unchanged.
func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
