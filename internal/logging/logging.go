// Package logging owns the process logger. Log lines go to stderr so command
// output on stdout stays machine-readable.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetDebug widens the level to debug.
func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects all log lines; tests pass io.Discard.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// L returns the process logger.
func L() *logrus.Logger { return logger }

// Component tags entries with the subsystem that emits them.
func Component(name string) *logrus.Entry {
	return logger.WithField("component", name)
}
