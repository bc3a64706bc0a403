package view

import (
	"fmt"
	"strings"

	"github.com/drblury/consolemvc/internal/runtime/events"
	"github.com/drblury/consolemvc/internal/runtime/exceptions"
	loggingpkg "github.com/drblury/consolemvc/internal/runtime/logging"
	"github.com/drblury/consolemvc/internal/runtime/response"
)

// ErrorLevel is the error level of every rendered exception model.
const ErrorLevel = 1

// RenderHook runs after the strategy attached model to e.
type RenderHook func(e *events.MvcEvent, model *ConsoleModel)

// ExceptionStrategy listens for dispatch and render errors and turns the
// exception into a console report. Configure it before attaching; the
// settings are read without locking while events are handled.
type ExceptionStrategy struct {
	displayExceptions bool
	message           MessageTemplate
	previousMessage   string

	logger    loggingpkg.ServiceLogger
	hooks     []RenderHook
	listeners events.ListenerSet
}

// StrategyOption configures an ExceptionStrategy.
type StrategyOption func(*ExceptionStrategy)

func WithDisplayExceptions(display bool) StrategyOption {
	return func(s *ExceptionStrategy) { s.displayExceptions = display }
}

func WithMessageTemplate(t MessageTemplate) StrategyOption {
	return func(s *ExceptionStrategy) { s.message = t }
}

func WithPreviousMessage(template string) StrategyOption {
	return func(s *ExceptionStrategy) { s.previousMessage = template }
}

func WithLogger(log loggingpkg.ServiceLogger) StrategyOption {
	return func(s *ExceptionStrategy) { s.logger = loggingpkg.OrNop(log) }
}

// WithRenderHook registers a hook that observes every produced model.
func WithRenderHook(hook RenderHook) StrategyOption {
	return func(s *ExceptionStrategy) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// NewExceptionStrategy returns a strategy that displays exceptions using the
// default templates.
func NewExceptionStrategy(opts ...StrategyOption) *ExceptionStrategy {
	s := &ExceptionStrategy{
		displayExceptions: true,
		message:           LiteralTemplate(DefaultMessageTemplate),
		previousMessage:   DefaultPreviousMessageTemplate,
		logger:            loggingpkg.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach subscribes the strategy to the dispatch and render error events.
func (s *ExceptionStrategy) Attach(em *events.EventManager, priority int) {
	s.listeners.Add(em.Attach(events.EventDispatchError, priority, s.PrepareExceptionViewModel))
	s.listeners.Add(em.Attach(events.EventRenderError, priority, s.PrepareExceptionViewModel))
}

// Detach removes the subscriptions made by Attach, and only those.
func (s *ExceptionStrategy) Detach(em *events.EventManager) {
	s.listeners.DetachAll(em)
}

func (s *ExceptionStrategy) SetDisplayExceptions(display bool) *ExceptionStrategy {
	s.displayExceptions = display
	return s
}

// DisplayExceptions reports whether exception details are rendered.
func (s *ExceptionStrategy) DisplayExceptions() bool { return s.displayExceptions }

// SetMessage replaces the top-level template. Literal templates accept
// :className, :message, :code, :file, :line, :stack and :previous.
func (s *ExceptionStrategy) SetMessage(t MessageTemplate) *ExceptionStrategy {
	s.message = t
	return s
}

func (s *ExceptionStrategy) Message() MessageTemplate { return s.message }

// SetPreviousMessage replaces the template used for each previous exception.
func (s *ExceptionStrategy) SetPreviousMessage(template string) *ExceptionStrategy {
	s.previousMessage = template
	return s
}

func (s *ExceptionStrategy) PreviousMessage() string { return s.previousMessage }

// PrepareExceptionViewModel handles a dispatch or render error event. It
// leaves the event alone when there is no error, when the result already is
// a response, or when the error is a routing miss that the route-not-found
// handling owns. Otherwise it sets a ConsoleModel with the rendered report
// and error level 1 as the event result.
func (s *ExceptionStrategy) PrepareExceptionViewModel(e *events.MvcEvent) {
	code := e.Error()
	if code == "" {
		return
	}
	if _, ok := e.Result().(response.Response); ok {
		return
	}

	switch code {
	case events.ErrorControllerNotFound,
		events.ErrorControllerInvalid,
		events.ErrorRouterNoMatch:
		return
	}

	model := NewConsoleModel().
		SetResult(s.Render(e.Param(events.ParamException))).
		SetErrorLevel(ErrorLevel)
	e.SetResult(model)

	s.logger.Debug("Rendered console exception report", loggingpkg.LogFields{
		"event":      e.Name(),
		"error_code": code,
		"bytes":      len(model.Result()),
	})
	for _, hook := range s.hooks {
		s.runHook(hook, e, model)
	}
}

// runHook calls hook, logging instead of propagating a panic so the event
// keeps its model.
func (s *ExceptionStrategy) runHook(hook RenderHook, e *events.MvcEvent, model *ConsoleModel) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Render hook panicked", fmt.Errorf("%v", r), loggingpkg.LogFields{
				"event": e.Name(),
			})
		}
	}()
	hook(e, model)
}

// Render formats the report for an exception payload. It never panics: a
// failing formatter or exception falls back to the blank template.
func (s *ExceptionStrategy) Render(exception any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Exception report formatting panicked", fmt.Errorf("%v", r), loggingpkg.LogFields{
				"payload_type": fmt.Sprintf("%T", exception),
			})
			out = s.blank()
		}
	}()

	if s.message.IsFunc() {
		return s.message.Func()(exception, s.displayExceptions)
	}

	t := exceptions.Resolve(exception)
	if !s.displayExceptions || t == nil {
		return s.blank()
	}

	// Every previous block carries the stack of the exception being
	// rendered, not the ancestor's own stack.
	stack := t.TraceAsString()
	var previous strings.Builder
	for _, prev := range exceptions.Chain(t) {
		previous.WriteString(renderPrevious(s.previousMessage, prev, stack))
	}
	return renderTop(s.message.Literal(), t, previous.String())
}

func (s *ExceptionStrategy) blank() string {
	if s.message.IsFunc() {
		return renderBlank(DefaultMessageTemplate)
	}
	return renderBlank(s.message.Literal())
}

var _ events.ListenerAggregate = (*ExceptionStrategy)(nil)
