// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// Init sets the global level and replaces log.Logger. An unknown level falls back to info.
func Init(level, format, appName string) {
	InitWriter(os.Stdout, level, format, appName)
}

// InitWriter is Init with an explicit output.
func InitWriter(w io.Writer, level, format, appName string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	switch strings.ToLower(format) {
	case FormatConsole, FormatPretty:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(w).With().Timestamp()
	if appName != "" {
		logger = logger.Str("app", appName)
	}
	log.Logger = logger.Logger()
}
