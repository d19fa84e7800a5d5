package letterpress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the application logger from cfg. Unknown levels fall back
// to info.
func NewLogger(cfg Config) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "letterpress").Logger()
}

// SetGlobalLogger installs l as the zerolog global logger.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}

// gooseLogger routes migration output through zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func newGooseLogger(l zerolog.Logger) goose.Logger {
	return &gooseLogger{log: l.With().Str("component", "migrate").Logger()}
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
