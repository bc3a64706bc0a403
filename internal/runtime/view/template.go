package view

import (
	"strconv"
	"strings"

	"github.com/drblury/consolemvc/internal/runtime/exceptions"
)

// DefaultMessageTemplate is the top-level report shown in the console.
const DefaultMessageTemplate = `======================================================================
   The application has thrown an exception!
======================================================================
 :className
 :message
----------------------------------------------------------------------
:file::line
:stack
======================================================================
   Previous Exception(s):
:previous
`

// DefaultPreviousMessageTemplate renders one previous exception.
const DefaultPreviousMessageTemplate = `======================================================================
 :className
 :message
----------------------------------------------------------------------
:file::line
:stack
`

// Formatter fully formats the report for an exception payload. It receives
// the raw payload (which may be nil or not an error at all) and the display
// flag.
type Formatter func(exception any, displayExceptions bool) string

// MessageTemplate is either a literal template with :placeholders or a
// Formatter that produces the whole report.
type MessageTemplate struct {
	literal   string
	formatter Formatter
}

// LiteralTemplate returns a placeholder template.
func LiteralTemplate(template string) MessageTemplate {
	return MessageTemplate{literal: template}
}

// FuncTemplate returns a template backed by f. A nil f behaves like an
// empty literal.
func FuncTemplate(f Formatter) MessageTemplate {
	return MessageTemplate{formatter: f}
}

// IsFunc reports whether the template is backed by a Formatter.
func (t MessageTemplate) IsFunc() bool { return t.formatter != nil }

// Literal returns the placeholder text; empty for a Formatter template.
func (t MessageTemplate) Literal() string { return t.literal }

// Func returns the Formatter, or nil for a literal template.
func (t MessageTemplate) Func() Formatter { return t.formatter }

// blankPairs maps every placeholder to the empty string.
var blankPairs = []string{
	":className", "",
	":message", "",
	":code", "",
	":file", "",
	":line", "",
	":stack", "",
	":previous", "",
}

// fieldPairs maps the record placeholders of t. The stack placeholder takes
// stack rather than t's own trace so previous blocks can share the trace of
// the exception being rendered.
func fieldPairs(t exceptions.Throwable, stack string) []string {
	return []string{
		":className", t.ClassName(),
		":message", t.Message(),
		":code", strconv.Itoa(t.Code()),
		":file", t.File(),
		":line", strconv.Itoa(t.Line()),
		":stack", stack,
	}
}

// replaceInOrder substitutes each placeholder/value pair in turn over the
// running result. A value containing a placeholder later in the list is
// expanded again; text inserted by a pair is never revisited by that pair.
func replaceInOrder(template string, pairs []string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		template = strings.ReplaceAll(template, pairs[i], pairs[i+1])
	}
	return template
}

// renderBlank clears every placeholder in template.
func renderBlank(template string) string {
	return replaceInOrder(template, blankPairs)
}

// renderPrevious renders one previous-exception block. The :previous
// placeholder is not part of a block and stays as written.
func renderPrevious(template string, t exceptions.Throwable, stack string) string {
	return replaceInOrder(template, fieldPairs(t, stack))
}

// renderTop renders the top-level report for t. The previous section is
// substituted last.
func renderTop(template string, t exceptions.Throwable, previous string) string {
	pairs := append(fieldPairs(t, t.TraceAsString()), ":previous", previous)
	return replaceInOrder(template, pairs)
}
