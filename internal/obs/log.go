// Package obs wires up structured logging shared by the three binaries.
package obs

import (
	log "github.com/sirupsen/logrus"
)

// NewLogger returns an entry on a new logrus.Logger filtered at level and
// tagged with the given component name (sim, ingest, fanout).
func NewLogger(component, level string) *log.Entry {
	l := log.New()
	l.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)

	return l.WithField("component", component)
}
