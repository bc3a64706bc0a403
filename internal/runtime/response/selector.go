package response

import (
	"github.com/drblury/consolemvc/internal/runtime/console"
)

// Factory builds the default response. It is only called when the
// environment is not a console.
type Factory func() Response

// Container is the service container the delegator is registered with. The
// delegator accepts it for signature compatibility and never consults it.
type Container interface {
	Has(name string) bool
	Get(name string) (any, error)
}

// Select returns a console response when isConsole is true, without calling
// defaultFactory. Otherwise it returns defaultFactory() unchanged. A nil
// factory yields a fresh HTTPResponse.
func Select(isConsole bool, defaultFactory Factory) Response {
	if isConsole {
		return NewConsoleResponse()
	}
	if defaultFactory == nil {
		return NewHTTPResponse()
	}
	return defaultFactory()
}

// DelegatorFactory wraps resolution of the response service and substitutes
// a console response when Env reports a console.
type DelegatorFactory struct {
	Env console.Environment
}

// NewDelegatorFactory returns a delegator bound to env. A nil env falls back
// to process detection.
func NewDelegatorFactory(env console.Environment) *DelegatorFactory {
	if env == nil {
		env = console.Process()
	}
	return &DelegatorFactory{Env: env}
}

// Create resolves the response service named name.
func (f *DelegatorFactory) Create(container Container, name string, callback Factory) Response {
	env := f.Env
	if env == nil {
		env = console.Process()
	}
	return Select(env.IsConsole(), callback)
}

// CreateWithName is the older registration entry point taking both the
// canonical and the requested name. It proxies to Create with requestedName.
func (f *DelegatorFactory) CreateWithName(container Container, name, requestedName string, callback Factory) Response {
	return f.Create(container, requestedName, callback)
}
