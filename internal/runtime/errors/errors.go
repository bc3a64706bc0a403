package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrConfigRequired        = sterrors.New("consolemvc: configuration is required")
	ErrLoggerRequired        = sterrors.New("consolemvc: logger is required")
	ErrPublisherRequired     = sterrors.New("consolemvc: publisher is required")
	ErrTopicRequired         = sterrors.New("consolemvc: topic is required")
	ErrUnknownConsoleMode    = sterrors.New("consolemvc: unknown console mode")
	ErrUnknownTransport      = sterrors.New("consolemvc: unknown report transport")
	ErrReportPayloadRequired = sterrors.New("consolemvc: report payload is required")
)

// ConfigValidationError marks configuration problems detected before any
// collaborator is built.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("consolemvc: invalid configuration: %v", e.Err)
}

func (e ConfigValidationError) Unwrap() error {
	return e.Err
}

// NewConfigValidationError wraps err, returning nil when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}
