// Package logging is the small leveled console logger used throughout this
// module. It is grounded on the teacher's output.Print{Error,Success,Warning}
// functions (colorized via github.com/jedib0t/go-pretty/v6/text) but writes
// to stderr and adds a Debug level, since parsers and the orchestrator log
// diagnostics independently of the CLI's table/JSON output on stdout.
package logging

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	colorDebug = text.Colors{text.FgHiBlack}
	colorInfo  = text.Colors{text.FgCyan}
	colorWarn  = text.Colors{text.FgYellow}
	colorError = text.Colors{text.FgRed, text.Bold}
)

// Level is the minimum level Debugf, Infof and Warnf print at. Errorf always
// prints.
var Level = LevelInfo

type level int

const (
	LevelDebug level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Debugf prints a debug-level message to stderr when Level permits it.
func Debugf(format string, args ...any) {
	if Level > LevelDebug {
		return
	}
	fmt.Fprintln(os.Stderr, colorDebug.Sprintf("[debug] "+format, args...))
}

// Infof prints an info-level message to stderr.
func Infof(format string, args ...any) {
	if Level > LevelInfo {
		return
	}
	fmt.Fprintln(os.Stderr, colorInfo.Sprintf(format, args...))
}

// Warnf prints a warning to stderr, prefixed with a warning glyph. Used by
// the data-group parsers to report an outer-tag mismatch or an unsupported
// biometric variant without aborting the read.
func Warnf(format string, args ...any) {
	if Level > LevelWarn {
		return
	}
	fmt.Fprintln(os.Stderr, colorWarn.Sprintf("⚠ "+format, args...))
}

// Errorf prints an error to stderr, prefixed with a cross glyph.
func Errorf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorError.Sprintf("✗ "+format, args...))
}
