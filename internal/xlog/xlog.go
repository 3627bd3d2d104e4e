// Package xlog provides the small leveled logger interface used across
// the store, access-record, dispatch, and compression layers. The
// default implementation wraps the standard library's log.Logger, the
// same primitive the teacher corpus reaches for throughout.
package xlog

import (
	"io"
	"log"
)

// Logger is the leveled logging surface every component accepts.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Std wraps a standard library *log.Logger, emitting every level.
type Std struct {
	l *log.Logger
}

// NewStd returns a Logger writing to w with the given prefix.
func NewStd(w io.Writer, prefix string) *Std {
	return &Std{l: log.New(w, prefix, log.LstdFlags)}
}

func (s *Std) Debugf(format string, args ...any) { s.l.Printf("debug: "+format, args...) }
func (s *Std) Infof(format string, args ...any)  { s.l.Printf("info: "+format, args...) }
func (s *Std) Warnf(format string, args ...any)  { s.l.Printf("warn: "+format, args...) }
func (s *Std) Errorf(format string, args ...any) { s.l.Printf("error: "+format, args...) }

// discard silently drops every message; it backs Discard, the logger a
// Store uses unless WithLogger installs another.
type discard struct{}

func (discard) Debugf(string, ...any) {}
func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}

// Discard is the shared no-op Logger.
var Discard Logger = discard{}
