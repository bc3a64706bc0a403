package exceptions

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	code int
}

func (e codedError) Error() string { return fmt.Sprintf("coded %d", e.code) }
func (e codedError) Code() int     { return e.code }

// loopError unwraps to itself through a second node.
type loopError struct {
	name string
	next *loopError
}

func (e *loopError) Error() string { return e.name }
func (e *loopError) Unwrap() error { return e.next }

// sliceError is not comparable; cycle detection must not panic on it.
type sliceError struct {
	parts []string
}

func (e sliceError) Error() string { return strings.Join(e.parts, ",") }

func TestNewCapturesCallerLocation(t *testing.T) {
	e := New("boom", WithCode(42))

	assert.Equal(t, "boom", e.Message())
	assert.Equal(t, "boom", e.Error())
	assert.Equal(t, 42, e.Code())
	assert.Equal(t, "github.com/drblury/consolemvc/internal/runtime/exceptions.Exception", e.ClassName())
	assert.True(t, strings.HasSuffix(e.File(), "exception_test.go"), "file %q", e.File())
	assert.Positive(t, e.Line())
	assert.Nil(t, e.Previous())
	assert.Nil(t, e.Unwrap())

	trace := e.TraceAsString()
	assert.True(t, strings.HasPrefix(trace, "#0 "), trace)
	assert.Contains(t, trace, "TestNewCapturesCallerLocation()")
	assert.Contains(t, trace, fmt.Sprintf("exception_test.go(%d)", e.Line()))
	assert.True(t, strings.HasSuffix(trace, "{main}"), trace)
}

func TestWithClassName(t *testing.T) {
	e := New("boom", WithClassName("App\\DomainException"))
	assert.Equal(t, "App\\DomainException", e.ClassName())

	unchanged := New("boom", WithClassName(""))
	assert.Equal(t, exceptionClassName, unchanged.ClassName())
}

func TestWrapBuildsPreviousChain(t *testing.T) {
	root := errors.New("disk full")
	middle := Wrap(root, "cannot write cache", WithCode(7))
	top := Wrap(middle, "request failed")

	require.NotNil(t, top.Previous())
	assert.Same(t, middle, top.Previous())
	assert.True(t, errors.Is(top, root))
	assert.Equal(t, middle, top.Unwrap())

	chain := Chain(top)
	require.Len(t, chain, 2)
	assert.Equal(t, "cannot write cache", chain[0].Message())
	assert.Equal(t, 7, chain[0].Code())
	assert.Equal(t, "disk full", chain[1].Message())
	assert.Equal(t, "errors.errorString", chain[1].ClassName())
	assert.Equal(t, "#0 {main}", chain[1].TraceAsString())
	assert.Empty(t, chain[1].File())
	assert.Zero(t, chain[1].Line())
}

func TestWrapNilBehavesLikeNew(t *testing.T) {
	e := Wrap(nil, "alone")
	assert.Nil(t, e.Previous())
	assert.Empty(t, Chain(e))
}

func TestFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("throwable passes through", func(t *testing.T) {
		e := New("mine")
		assert.Same(t, e, FromError(e))
	})

	t.Run("foreign chain with fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", codedError{code: 404})
		got := FromError(err)
		require.NotNil(t, got)
		assert.Equal(t, "fmt.wrapError", got.ClassName())
		assert.Equal(t, "handler: coded 404", got.Message())
		assert.Zero(t, got.Code(), "code is taken from the link itself")

		prev := got.Previous()
		require.NotNil(t, prev)
		assert.Equal(t, "github.com/drblury/consolemvc/internal/runtime/exceptions.codedError", prev.ClassName())
		assert.Equal(t, 404, prev.Code())
		assert.Nil(t, prev.Previous())
	})

	t.Run("exception inside foreign chain keeps its own previous", func(t *testing.T) {
		inner := Wrap(errors.New("root"), "inner")
		err := fmt.Errorf("outer: %w", inner)

		got := FromError(err)
		chain := Chain(got)
		require.Len(t, chain, 2)
		assert.Same(t, inner, chain[0])
		assert.Equal(t, "root", chain[1].Message())
	})

	t.Run("joined errors follow the first branch", func(t *testing.T) {
		err := errors.Join(nil, errors.New("first"), errors.New("second"))
		got := FromError(err)
		chain := Chain(got)
		require.Len(t, chain, 1)
		assert.Equal(t, "first", chain[0].Message())
	})

	t.Run("pkg/errors stack supplies location", func(t *testing.T) {
		err := pkgerrors.New("with stack")
		got := FromError(err)
		require.NotNil(t, got)
		assert.True(t, strings.HasSuffix(got.File(), "exception_test.go"), got.File())
		assert.Positive(t, got.Line())
		assert.Contains(t, got.TraceAsString(), "TestFromError")
	})

	t.Run("cyclic chain terminates", func(t *testing.T) {
		a := &loopError{name: "a"}
		b := &loopError{name: "b", next: a}
		a.next = b

		got := FromError(a)
		chain := Chain(got)
		require.Len(t, chain, 1)
		assert.Equal(t, "b", chain[0].Message())
	})

	t.Run("non comparable errors", func(t *testing.T) {
		got := FromError(sliceError{parts: []string{"x", "y"}})
		require.NotNil(t, got)
		assert.Equal(t, "x,y", got.Message())
	})
}

// cyclicThrowable lets two records point at each other.
type cyclicThrowable struct {
	*Exception
	next Throwable
}

func (c *cyclicThrowable) Previous() Throwable { return c.next }

func TestChainStopsOnCycle(t *testing.T) {
	a := &cyclicThrowable{Exception: New("a")}
	b := &cyclicThrowable{Exception: New("b"), next: a}
	a.next = b

	chain := Chain(a)
	require.Len(t, chain, 1)
	assert.Equal(t, "b", chain[0].Message())
	assert.Nil(t, Chain(nil))
}

// endless builds a fresh previous on every call, so identity never repeats.
type endless struct {
	depth int
}

func (e endless) ClassName() string     { return "endless" }
func (e endless) Message() string       { return fmt.Sprint(e.depth) }
func (e endless) Code() int             { return e.depth }
func (e endless) File() string          { return "" }
func (e endless) Line() int             { return 0 }
func (e endless) TraceAsString() string { return "" }
func (e endless) Previous() Throwable   { return endless{depth: e.depth + 1} }

func TestChainIsBounded(t *testing.T) {
	chain := Chain(endless{})
	assert.Len(t, chain, MaxChainDepth)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "", typeName(nil))
	assert.Equal(t, "string", typeName("x"))
	assert.Equal(t, "errors.errorString", typeName(errors.New("x")))
	assert.Equal(t, "struct {}", typeName(struct{}{}))
}

func TestFormatTraceWithoutFrames(t *testing.T) {
	assert.Equal(t, "#0 {main}", formatTrace(nil))
	file, line := firstFrame(nil)
	assert.Empty(t, file)
	assert.Zero(t, line)
}

func TestResolve(t *testing.T) {
	var typedNil *Exception
	exc := New("boom")

	assert.Nil(t, Resolve(nil))
	assert.Nil(t, Resolve(typedNil))
	assert.Nil(t, Resolve("not an error"))
	assert.Same(t, exc, Resolve(exc))

	adapted := Resolve(errors.New("plain"))
	require.NotNil(t, adapted)
	assert.Equal(t, "plain", adapted.Message())
	assert.Equal(t, "errors.errorString", adapted.ClassName())
}
