package ext2

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the diagnostic sink the core writes to instead of the
// process-wide logging the original driver used. A *logrus.Logger
// satisfies this directly.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// nopLogger discards everything; used only if a caller explicitly
// asks for silence via WithLogger(nil) being disallowed would be
// surprising, so nil is normalized to this instead.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

func defaultLogger() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}
