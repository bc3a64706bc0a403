// Package exceptions turns Go errors into exception records: a chain of
// class name, message, code, source location, and stack trace linked
// through the previous exception.
package exceptions

import (
	"runtime"
)

// MaxChainDepth bounds every walk over a previous-exception chain.
const MaxChainDepth = 256

const maxStackDepth = 64

// Throwable is the read-only view of an exception record. Anything that
// exposes these methods is rendered as an exception.
type Throwable interface {
	ClassName() string
	Message() string
	Code() int
	File() string
	Line() int
	TraceAsString() string
	Previous() Throwable
}

// Exception is the concrete exception record. It is an error; Unwrap
// returns the error it was wrapped around.
type Exception struct {
	className string
	message   string
	code      int
	file      string
	line      int
	trace     string
	previous  Throwable
	cause     error
}

// Option customises an Exception built by New or Wrap.
type Option func(*Exception)

// WithCode sets the numeric exception code.
func WithCode(code int) Option {
	return func(e *Exception) { e.code = code }
}

// WithClassName overrides the class name shown in reports.
func WithClassName(name string) Option {
	return func(e *Exception) {
		if name != "" {
			e.className = name
		}
	}
}

// New creates an exception at the caller's location.
func New(message string, opts ...Option) *Exception {
	return build(nil, message, opts)
}

// Wrap creates an exception whose previous exception is derived from
// previous. A nil previous behaves like New.
func Wrap(previous error, message string, opts ...Option) *Exception {
	return build(previous, message, opts)
}

func build(previous error, message string, opts []Option) *Exception {
	// Skip runtime.Callers, callers, build, and New/Wrap.
	pcs := callers(4)
	e := &Exception{
		className: exceptionClassName,
		message:   message,
		cause:     previous,
	}
	e.file, e.line = firstFrame(pcs)
	e.trace = formatTrace(pcs)
	if previous != nil {
		e.previous = FromError(previous)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var exceptionClassName = typeName(&Exception{})

func (e *Exception) Error() string         { return e.message }
func (e *Exception) Unwrap() error         { return e.cause }
func (e *Exception) ClassName() string     { return e.className }
func (e *Exception) Message() string       { return e.message }
func (e *Exception) Code() int             { return e.code }
func (e *Exception) File() string          { return e.file }
func (e *Exception) Line() int             { return e.line }
func (e *Exception) TraceAsString() string { return e.trace }

// Previous returns the exception this one was raised from, or nil at the
// root of the chain.
func (e *Exception) Previous() Throwable { return e.previous }

func callers(skip int) []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	return pcs[:n]
}
