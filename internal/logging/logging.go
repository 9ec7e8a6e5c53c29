// Package logging hands out a shared logrus logger to every component in
// the linker. Each constructor accepts an optional *logrus.Entry and falls
// back to a package default, so call sites never branch on nil.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}()

// For returns the default entry for a named component, e.g. "resolver"
// or "image.writer".
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetLevel adjusts verbosity for the whole process; used by the CLI's
// --verbose flag.
func SetLevel(lvl logrus.Level) {
	base.SetLevel(lvl)
}

// Or returns entry if non-nil, otherwise the default entry for component.
func Or(entry *logrus.Entry, component string) *logrus.Entry {
	if entry != nil {
		return entry
	}
	return For(component)
}
