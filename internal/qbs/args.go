package qbs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLogLevel is returned by ParseLogLevel.
var ErrUnknownLogLevel = errors.New("unknown log level")

// LogLevel is the qbs-side verbosity setting forwarded to qpmx.
type LogLevel int

// Log levels, from least to most output.
const (
	LevelQuiet LogLevel = iota
	LevelWarnOnly
	LevelNormal
	LevelVerbose
)

var levelNames = map[LogLevel]string{
	LevelQuiet:    "quiet",
	LevelWarnOnly: "warn-only",
	LevelNormal:   "normal",
	LevelVerbose:  "verbose",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLogLevel parses one of "quiet", "warn-only", "normal" or "verbose".
func ParseLogLevel(s string) (LogLevel, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if v == name {
			return level, nil
		}
	}
	return LevelNormal, fmt.Errorf("%w %q (expected quiet, warn-only, normal or verbose)", ErrUnknownLogLevel, s)
}

// Flags passed to qpmx.
const (
	FlagDir     = "--dir"
	FlagQuiet   = "--quiet"
	FlagVerbose = "--verbose"
	FlagNoColor = "--no-color"
)

// BaseArgs appends the directory, verbosity and color flags to args and
// returns the extended slice. Warn-only is expressed as --quiet --verbose.
func BaseArgs(args []string, dir string, level LogLevel, colors bool) []string {
	args = append(args, FlagDir, dir)
	switch level {
	case LevelQuiet:
		args = append(args, FlagQuiet)
	case LevelWarnOnly:
		args = append(args, FlagQuiet, FlagVerbose)
	case LevelVerbose:
		args = append(args, FlagVerbose)
	}
	if !colors {
		args = append(args, FlagNoColor)
	}
	return args
}
