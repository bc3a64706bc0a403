package events

import "context"

// MvcEvent is the mutable object passed to every listener of a lifecycle
// event. It carries the error code, the exception payload, the result that
// listeners produce, and the response selected for the request.
type MvcEvent struct {
	name               string
	ctx                context.Context
	errorCode          string
	result             any
	response           any
	params             map[string]any
	propagationStopped bool
}

// NewMvcEvent returns an event with an empty parameter set.
func NewMvcEvent() *MvcEvent {
	return &MvcEvent{params: make(map[string]any)}
}

// NewErrorEvent returns an event carrying errorCode and, when non-nil, the
// exception payload under ParamException.
func NewErrorEvent(ctx context.Context, errorCode string, exception any) *MvcEvent {
	e := NewMvcEvent()
	e.ctx = ctx
	e.errorCode = errorCode
	if exception != nil {
		e.params[ParamException] = exception
	}
	return e
}

// Name returns the name of the event currently being dispatched.
func (e *MvcEvent) Name() string { return e.name }

// Context returns the context associated with the event, never nil.
func (e *MvcEvent) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// SetContext replaces the event context.
func (e *MvcEvent) SetContext(ctx context.Context) *MvcEvent {
	e.ctx = ctx
	return e
}

// Error returns the error code, or "" when the event carries no error.
func (e *MvcEvent) Error() string { return e.errorCode }

// SetError sets the error code.
func (e *MvcEvent) SetError(code string) *MvcEvent {
	e.errorCode = code
	return e
}

// IsError reports whether an error code is set.
func (e *MvcEvent) IsError() bool { return e.errorCode != "" }

func (e *MvcEvent) Result() any { return e.result }

func (e *MvcEvent) SetResult(result any) *MvcEvent {
	e.result = result
	return e
}

func (e *MvcEvent) Response() any { return e.response }

func (e *MvcEvent) SetResponse(response any) *MvcEvent {
	e.response = response
	return e
}

// Param returns the named parameter or nil.
func (e *MvcEvent) Param(name string) any {
	if e.params == nil {
		return nil
	}
	return e.params[name]
}

func (e *MvcEvent) SetParam(name string, value any) *MvcEvent {
	if e.params == nil {
		e.params = make(map[string]any)
	}
	e.params[name] = value
	return e
}

// StopPropagation prevents listeners after the current one from running.
func (e *MvcEvent) StopPropagation(stop bool) {
	e.propagationStopped = stop
}

// PropagationIsStopped reports whether a listener stopped propagation.
func (e *MvcEvent) PropagationIsStopped() bool { return e.propagationStopped }
