// Package logger provides the process-wide structured logger for Atlus.
// Messages carry key/value pairs and are rendered as coloured text on a
// terminal, or as logfmt or JSON otherwise. Debug messages are shown only
// in verbose mode, enabled via the --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Output formats accepted by SetFormat.
const (
	FormatAuto   = "auto"
	FormatText   = "text"
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatAuto
	std               = build()
)

func build() *log.Logger {
	l := log.NewWithOptions(output, log.Options{
		Level:     log.InfoLevel,
		Formatter: formatter(),
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

func formatter() log.Formatter {
	switch format {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	case FormatText:
		return log.TextFormatter
	default:
		if isTerminal(output) {
			return log.TextFormatter
		}
		return log.LogfmtFormatter
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	std = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	std = build()
}

// SetFormat selects the output format: auto, text, logfmt or json.
func SetFormat(f string) error {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "" {
		f = FormatAuto
	}
	switch f {
	case FormatAuto, FormatText, FormatLogfmt, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", f)
	}
	mu.Lock()
	defer mu.Unlock()
	format = f
	std = build()
	return nil
}

// Default returns the current process-wide logger.
func Default() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// With returns a child logger that always carries the given key/value pairs.
func With(keyvals ...any) *log.Logger {
	return Default().With(keyvals...)
}

// Debug logs a message when verbose mode is enabled.
func Debug(msg string, keyvals ...any) {
	Default().Debug(msg, keyvals...)
}

// Info logs an informational message.
func Info(msg string, keyvals ...any) {
	Default().Info(msg, keyvals...)
}

// Warn logs a warning.
func Warn(msg string, keyvals ...any) {
	Default().Warn(msg, keyvals...)
}

// Error logs an error.
func Error(msg string, keyvals ...any) {
	Default().Error(msg, keyvals...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
