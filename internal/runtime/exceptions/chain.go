package exceptions

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

type coder interface {
	Code() int
}

// FromError adapts err and the errors it wraps into a Throwable chain.
// A Throwable in the chain is used as is, together with its own previous
// exceptions. Foreign errors take their class name from their dynamic type,
// their code from an optional Code() int method, and their location and
// stack from a github.com/pkg/errors stack trace when one is attached.
// It returns nil for a nil error.
func FromError(err error) Throwable {
	if err == nil {
		return nil
	}

	var links []error
	for cur := err; cur != nil && len(links) < MaxChainDepth; cur = unwrapOnce(cur) {
		if seen(links, cur) {
			break
		}
		links = append(links, cur)
		if _, ok := cur.(Throwable); ok {
			break
		}
	}

	// Build from the root upwards so each record can point at its previous.
	var previous Throwable
	for i := len(links) - 1; i >= 0; i-- {
		if t, ok := links[i].(Throwable); ok {
			previous = t
			continue
		}
		previous = adapt(links[i], previous)
	}
	return previous
}

// Resolve returns the exception record behind an event payload: a Throwable
// as is, any other error adapted with FromError, nil for anything else. A
// typed nil pointer counts as no exception.
func Resolve(payload any) Throwable {
	if payload == nil {
		return nil
	}
	if v := reflect.ValueOf(payload); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	switch p := payload.(type) {
	case Throwable:
		return p
	case error:
		return FromError(p)
	}
	return nil
}

// Chain returns the previous exceptions of t, nearest first and root last.
// t itself is not included. The walk stops on a repeated record and after
// MaxChainDepth entries, so it terminates even on a cyclic chain.
func Chain(t Throwable) []Throwable {
	if t == nil {
		return nil
	}
	var chain []Throwable
	visited := []Throwable{t}
	for prev := t.Previous(); prev != nil && len(chain) < MaxChainDepth; prev = prev.Previous() {
		if seenThrowable(visited, prev) {
			break
		}
		chain = append(chain, prev)
		visited = append(visited, prev)
	}
	return chain
}

func adapt(err error, previous Throwable) *Exception {
	e := &Exception{
		className: typeName(err),
		message:   err.Error(),
		previous:  previous,
		cause:     unwrapOnce(err),
	}
	if c, ok := err.(coder); ok {
		e.code = c.Code()
	}
	if st, ok := err.(stackTracer); ok {
		trace := st.StackTrace()
		pcs := make([]uintptr, len(trace))
		for i, frame := range trace {
			pcs[i] = uintptr(frame)
		}
		e.file, e.line = firstFrame(pcs)
		e.trace = formatTrace(pcs)
	} else {
		e.trace = "#0 {main}"
	}
	return e
}

func unwrapOnce(err error) error {
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return u.Unwrap()
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if inner != nil {
				return inner
			}
		}
	}
	return nil
}

func seen(links []error, err error) bool {
	if !reflect.TypeOf(err).Comparable() {
		return false
	}
	for _, l := range links {
		if reflect.TypeOf(l) == reflect.TypeOf(err) && l == err {
			return true
		}
	}
	return false
}

func seenThrowable(visited []Throwable, t Throwable) bool {
	if !reflect.TypeOf(t).Comparable() {
		return false
	}
	for _, v := range visited {
		if reflect.TypeOf(v) == reflect.TypeOf(t) && v == t {
			return true
		}
	}
	return false
}

// typeName returns the package-qualified name of v's dynamic type,
// dereferencing pointers.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func firstFrame(pcs []uintptr) (string, int) {
	if len(pcs) == 0 {
		return "", 0
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	return frame.File, frame.Line
}

// formatTrace renders frames as "#N file(line): function()" lines closed by
// a final "#N {main}" entry.
func formatTrace(pcs []uintptr) string {
	var b strings.Builder
	i := 0
	if len(pcs) > 0 {
		frames := runtime.CallersFrames(pcs)
		for {
			frame, more := frames.Next()
			if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
				fmt.Fprintf(&b, "#%d %s(%d): %s()\n", i, frame.File, frame.Line, frame.Function)
				i++
			}
			if !more {
				break
			}
		}
	}
	fmt.Fprintf(&b, "#%d {main}", i)
	return b.String()
}
