// Package logrus adapts a *logrus.Entry to throughcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	tc "github.com/unkn0wn-root/throughcache"
)

var _ tc.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New wraps l with a "component" field set to component.
func New(l *logrus.Logger, component string) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", component)}
}

func (l LogrusLogger) Debug(msg string, f tc.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f tc.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f tc.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f tc.Fields) { l.with(f).Error(msg) }

// with maps an "err" field to logrus' error key.
func (l LogrusLogger) with(f tc.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	lf := make(logrus.Fields, len(f))
	for k, v := range f {
		if k == "err" {
			k = logrus.ErrorKey
		}
		lf[k] = v
	}
	return l.E.WithFields(lf)
}
