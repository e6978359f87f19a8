// Package logging builds the structured logger used by the obfuscator.
// Settings come from the environment and can be overridden by flags.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// Settings controls logger construction.
//
//	EVMOBF_LOG_LEVEL:   debug, info, warn, error (default: warn)
//	EVMOBF_LOG_PREFIX:  prefix for log lines (default: "evmobf")
//	EVMOBF_LOG_TO_FILE: "1" writes to evmobf-<timestamp>.log instead of stderr
type Settings struct {
	Level  log.Level
	Prefix string
	ToFile bool
}

// FromEnv reads Settings from the environment.
func FromEnv() Settings {
	s := Settings{Level: log.WarnLevel, Prefix: "evmobf"}
	if v := os.Getenv("EVMOBF_LOG_LEVEL"); v != "" {
		if lvl, err := log.ParseLevel(v); err == nil {
			s.Level = lvl
		}
	}
	if p := os.Getenv("EVMOBF_LOG_PREFIX"); p != "" {
		s.Prefix = p
	}
	s.ToFile = os.Getenv("EVMOBF_LOG_TO_FILE") == "1"
	return s
}

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// FilePattern matches the log files created by New.
const FilePattern = "evmobf-*.log"

// LatestFile returns the newest log file in dir. Timestamped names sort in
// creation order.
func LatestFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, FilePattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s in %s", FilePattern, dir)
	}
	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

// New creates a logger writing to stderr, or to a timestamped file when
// s.ToFile is set and the file can be created.
func New(s Settings) *LoggerCloser {
	if s.ToFile {
		name := fmt.Sprintf("evmobf-%s.log", time.Now().Format("20060102-150405"))
		if f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644); err == nil {
			return NewWithWriter(f, s)
		}
	}
	return NewWithWriter(os.Stderr, s)
}

// NewWithWriter creates a logger on w. w is closed by Close if it is an io.Closer
// other than stderr.
func NewWithWriter(w io.Writer, s Settings) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           s.Level,
		Prefix:          s.Prefix,
	})

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr {
		closer = c
	}
	return &LoggerCloser{Logger: lg, closer: closer}
}
