// Package log provides the logging interface shared by every component of
// the emulator core, backed by logrus.
package log

import (
	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New returns a Logger writing plain text to stderr at info level.
func New() Logger {
	return newLogrus(logrus.InfoLevel)
}

// NewWithLevel returns a Logger at the given level, e.g. "debug" or "warn".
func NewWithLevel(level string) (Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return newLogrus(lvl), nil
}

func newLogrus(level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}
