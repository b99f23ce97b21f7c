package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
	logFile   string

	rootCmd = &cobra.Command{
		Use:   "winloop-demo",
		Short: "Drive a winloop event loop over one of the bundled backends",
		Long: `winloop-demo runs an event loop session over a chosen backend and logs
every dispatched callback, to make the iteration protocol visible.

Backends:
  headless  no native source; synthetic events are injected (default)
  term      the current terminal via tcell; Ctrl+C requests close
  x11       an X11 window; closing the window ends the session`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a file instead of stderr")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the logiface logger shared by the engine and the demo
// application, backed by zerolog. quietConsole suppresses stderr output for
// backends that own the terminal; an explicit --log-file always wins.
func newLogger(quietConsole bool) (*logiface.Logger[logiface.Event], func(), error) {
	var (
		out     io.Writer
		cleanup = func() {}
	)
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		cleanup = func() { _ = f.Close() }
	case quietConsole:
		out = io.Discard
	default:
		out = os.Stderr
	}

	if logFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	zlLevel, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	zl := zerolog.New(out).Level(zlLevel).With().Timestamp().Logger()
	logger := izerolog.L.New(
		izerolog.L.WithZerolog(zl),
		izerolog.L.WithLevel(logifaceLevel(zlLevel)),
	).Logger()
	return logger, cleanup, nil
}

func logifaceLevel(lvl zerolog.Level) logiface.Level {
	switch lvl {
	case zerolog.TraceLevel:
		return logiface.LevelTrace
	case zerolog.DebugLevel:
		return logiface.LevelDebug
	case zerolog.InfoLevel:
		return logiface.LevelInformational
	case zerolog.WarnLevel:
		return logiface.LevelWarning
	default:
		return logiface.LevelError
	}
}
