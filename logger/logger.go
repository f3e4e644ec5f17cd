// Package logger configures logrus loggers for reportview commands.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tasmanium/reportview"
)

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return log, nil
}

// Open returns a logger writing to the file at path, or to stderr when path
// is empty. The returned closer must be closed when the logger is no longer
// needed.
func Open(path, level string) (*logrus.Logger, io.Closer, error) {
	if path == "" {
		log, err := New(os.Stderr, level)
		return log, nopCloser{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log, err := New(f, level)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return log, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ParseLevel converts a level name into a logrus level. An empty name means
// info.
func ParseLevel(level string) (logrus.Level, error) {
	if level == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}

// Diagnostic logs an event that did not apply. Stale attachment responses
// are expected during fast navigation and are logged at debug level; every
// other diagnostic is a warning.
func Diagnostic(log logrus.FieldLogger, ev reportview.Event, err error) {
	entry := log.WithField("event", fmt.Sprintf("%T", ev)).WithError(err)
	if errors.Is(err, reportview.ErrStaleResponse) {
		entry.Debug("dropped stale response")
		return
	}
	entry.Warn("event not applied")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
