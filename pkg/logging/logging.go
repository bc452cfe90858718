// Package logging sets up the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Config controls logger initialization.
type Config struct {
	Format    string // "json", "console", or "auto"
	Level     string // "trace", "debug", "info", "warn", "error"
	Component string // optional component name
	FilePath  string // log to this file instead of stderr
	// Output overrides stderr; used by tests.
	Output io.Writer
}

var (
	mu         sync.Mutex
	fileCloser io.Closer

	isTerminalFn = term.IsTerminal
)

const defaultTimeFmt = time.RFC3339

// Init configures zerolog globals, sets log.Logger and returns it. A log
// file that cannot be opened falls back to stderr with a notice.
func Init(cfg Config) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	closePreviousLocked()

	zerolog.TimeFieldFormat = defaultTimeFmt
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.FilePath != "" {
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: unable to open %s: %v\n", cfg.FilePath, err)
		} else {
			out = f
			fileCloser = f
		}
	}

	builder := zerolog.New(selectWriter(cfg.Format, out)).With().Timestamp()
	if component := strings.TrimSpace(cfg.Component); component != "" {
		builder = builder.Str("component", component)
	}
	logger := builder.Logger()
	log.Logger = logger
	return logger
}

// Shutdown closes the log file, if any.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	closePreviousLocked()
}

func closePreviousLocked() {
	if fileCloser == nil {
		return
	}
	if err := fileCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "logging: unable to close log file: %v\n", err)
	}
	fileCloser = nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether ParseLevel knows level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info", "trace", "debug", "warn", "warning", "error", "disabled", "off":
		return true
	}
	return false
}

// ValidFormat reports whether format is json, console, auto or empty.
func ValidFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "json", "console":
		return true
	}
	return false
}

func selectWriter(format string, out io.Writer) io.Writer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console":
		return newConsoleWriter(out)
	case "json":
		return out
	default:
		if isTerminal(out) {
			return newConsoleWriter(out)
		}
		return out
	}
}

func newConsoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isTerminalFn(int(f.Fd()))
}

// DefaultFilePath is where the TUI logs: the user cache directory, falling
// back to the temp directory.
func DefaultFilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "poolnav", "poolnav.log")
}
