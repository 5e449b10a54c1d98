package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/logging"
	"github.com/urfave/cli/v3"
)

// SetupLogger configures the default logger based on provided log level
func SetupLogger(logLevel string) {
	logging.SetupLogger(logLevel)
}

// hostLogHandler builds the handler a host logs through from its boot config.
// A non-empty override replaces the configured level.
func hostLogHandler(cfg *config.BootConfig, override string) (slog.Handler, func() error, error) {
	level := cfg.Logging.Level
	if override != "" {
		level = override
	}
	return logging.NewHandler(level, cfg.Logging.Format, cfg.Logging.Output)
}

// output is where command results are printed.
func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
