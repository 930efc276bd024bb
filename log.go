package engine

import "github.com/sirupsen/logrus"

// Logger is the injection seam for driver diagnostics. Unlike the
// teacher's single-method fasthttp.Logger (Printf only), the driver
// distinguishes level by call site: Debugf on every state change taken
// from the transition table (direct resets such as CLOSED, MUST_CLOSE,
// SWITCHED_PROTOCOL or ERROR are not logged at Debug),
// Warnf on a peer protocol violation, Errorf on a local one (spec.md
// §4), so callers can plug in any logger that separates those without
// forcing a hard dependency on logrus from the public API.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// defaultLogger backs Logger with logrus, matching how docker-compose
// wires a structured logger through its command tree rather than
// calling the standard library's log package directly.
type defaultLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger adapts a *logrus.Logger into a Logger.
func NewLogrusLogger(l *logrus.Logger) Logger {
	return &defaultLogger{entry: logrus.NewEntry(l)}
}

func (d *defaultLogger) Debugf(format string, args ...any) { d.entry.Debugf(format, args...) }
func (d *defaultLogger) Warnf(format string, args ...any)  { d.entry.Warnf(format, args...) }
func (d *defaultLogger) Errorf(format string, args ...any) { d.entry.Errorf(format, args...) }

func defaultLoggerInstance() Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return NewLogrusLogger(l)
}
