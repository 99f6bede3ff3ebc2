// Package logger is the leveled logger used by the recipe service commands.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	LevelOff Level = iota
	LevelNormal
	LevelVerbose
)

// ParseLevel maps "off", "normal" and "verbose" (or "debug") to a Level.
// Unknown values fall back to LevelNormal.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off", "quiet":
		return LevelOff
	case "verbose", "debug":
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// logrusLevel is the most verbose logrus level shown at l. Off keeps only
// panics, which the service never logs.
func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelOff:
		return logrus.PanicLevel
	case LevelVerbose:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is safe for concurrent use. A nil *Logger drops everything.
type Logger struct {
	log *logrus.Logger
}

// New creates a logger writing to out, or os.Stderr when out is nil.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	l.SetLevel(level.logrusLevel())
	return &Logger{log: l}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(LevelOff, io.Discard)
}

func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.log.SetLevel(level.logrusLevel())
}

// WithField returns an entry carrying key=value on every line it writes.
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	if l == nil {
		return logrus.NewEntry(Discard().log)
	}
	return l.log.WithField(key, value)
}

func (l *Logger) Debug(format string, args ...any) {
	if l != nil {
		l.log.Debugf(format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l != nil {
		l.log.Infof(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l != nil {
		l.log.Warnf(format, args...)
	}
}

func (l *Logger) Error(format string, args ...any) {
	if l != nil {
		l.log.Errorf(format, args...)
	}
}
