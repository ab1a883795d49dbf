// Package log provides a categorized logger for the measurement pipeline.
package log

import (
	"context"
	"io"
	"os"
	"regexp"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus and attaches a category field to every entry. A
// category filter, when set, drops entries whose category does not match.
type Logger struct {
	ctx context.Context
	*logrus.Logger

	debugOverride  bool
	categoryFilter *regexp.Regexp
}

// New returns a Logger writing to stderr. Stdout must stay clean: it is
// reserved for the single sidecar protocol document.
func New(ctx context.Context) *Logger {
	ll := logrus.New()
	ll.SetOutput(os.Stderr)
	return NewLogger(ctx, ll, false, nil)
}

// NewLogger wraps an existing logrus logger.
func NewLogger(ctx context.Context, logger *logrus.Logger, debugOverride bool, categoryFilter *regexp.Regexp) *Logger {
	return &Logger{
		ctx:            ctx,
		Logger:         logger,
		debugOverride:  debugOverride,
		categoryFilter: categoryFilter,
	}
}

// NullLogger returns a Logger that discards everything. Useful in tests.
func NullLogger() *Logger {
	ll := logrus.New()
	ll.SetOutput(io.Discard)
	return NewLogger(context.Background(), ll, false, nil)
}

func (l *Logger) Debugf(category, msg string, args ...interface{}) {
	l.logf(logrus.DebugLevel, category, msg, args...)
}

func (l *Logger) Infof(category, msg string, args ...interface{}) {
	l.logf(logrus.InfoLevel, category, msg, args...)
}

func (l *Logger) Warnf(category, msg string, args ...interface{}) {
	l.logf(logrus.WarnLevel, category, msg, args...)
}

func (l *Logger) Errorf(category, msg string, args ...interface{}) {
	l.logf(logrus.ErrorLevel, category, msg, args...)
}

func (l *Logger) logf(level logrus.Level, category, msg string, args ...interface{}) {
	if l.categoryFilter != nil && !l.categoryFilter.MatchString(category) {
		return
	}

	entry := l.WithField("category", category)
	if l.GetLevel() < level && l.debugOverride {
		entry.Printf(msg, args...)
		return
	}
	entry.Logf(level, msg, args...)
}

// SetLevel sets the logger level from a level string ("debug", "info", ...).
func (l *Logger) SetLevel(level string) error {
	pl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.Logger.SetLevel(pl)
	return nil
}

// DebugMode returns true if the logger level is set to Debug or higher.
func (l *Logger) DebugMode() bool {
	return l.Logger.GetLevel() >= logrus.DebugLevel
}
