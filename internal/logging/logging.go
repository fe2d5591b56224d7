// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	LevelKey   = "log.level"
	FormatKey  = "log.format"
	NoColorKey = "log.no_color"

	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options describes the global logger.
type Options struct {
	Level   string
	Format  string
	NoColor bool
}

// FromViper reads the logger options bound by the CLI.
func FromViper() Options {
	return Options{
		Level:   viper.GetString(LevelKey),
		Format:  viper.GetString(FormatKey),
		NoColor: viper.GetBool(NoColorKey),
	}
}

// InitDefault sets up a console logger at info level. It is used until the
// flags are parsed.
func InitDefault() {
	Setup(os.Stderr, Options{Level: "info", Format: FormatConsole})
}

// Init configures the global logger from viper. A nil writer means stderr.
func Init(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	Setup(w, FromViper())
}

// Setup replaces the global logger and returns it.
func Setup(w io.Writer, opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if opts.Format != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    opts.NoColor,
			TimeFormat: time.Kitchen,
		}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
