// Package logging builds the CLI's structured logger. Verbosity follows the
// qpmx convention: --quiet limits output to errors, --verbose adds debug
// output, and both together mean warnings only.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/qpmx-labs/qpmx-setup/internal/branding"
)

// LevelFor maps the --verbose and --quiet flags to a log level.
func LevelFor(verbose, quiet bool) log.Level {
	switch {
	case quiet && verbose:
		return log.WarnLevel
	case quiet:
		return log.ErrorLevel
	case verbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// New returns a logger writing to w at the level selected by the flags.
func New(w io.Writer, verbose, quiet bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           LevelFor(verbose, quiet),
		Prefix:          branding.CLIName(),
		ReportTimestamp: false,
	})
}
