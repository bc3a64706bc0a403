// Package reporting publishes rendered exception reports to a message
// broker so operators can follow console failures outside the terminal.
package reporting

import (
	"fmt"
	"time"

	errspkg "github.com/drblury/consolemvc/internal/runtime/errors"
	"github.com/drblury/consolemvc/internal/runtime/events"
	"github.com/drblury/consolemvc/internal/runtime/exceptions"
	idspkg "github.com/drblury/consolemvc/internal/runtime/ids"
	"github.com/drblury/consolemvc/internal/runtime/jsoncodec"
	"github.com/drblury/consolemvc/internal/runtime/view"
)

var now = time.Now

// Report is the payload published for every rendered exception.
type Report struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	ErrorCode  string    `json:"error_code"`
	ClassName  string    `json:"class_name"`
	Message    string    `json:"message"`
	Code       int       `json:"code"`
	File       string    `json:"file,omitempty"`
	Line       int       `json:"line,omitempty"`
	Previous   []string  `json:"previous,omitempty"`
	Rendered   string    `json:"rendered"`
	ErrorLevel int       `json:"error_level"`
	RenderedAt time.Time `json:"rendered_at"`
}

// NewReport builds the report for an error event and the model the
// exception strategy produced for it. It returns ErrReportPayloadRequired
// when the event carries no exception.
func NewReport(e *events.MvcEvent, model *view.ConsoleModel) (*Report, error) {
	if e == nil || model == nil {
		return nil, errspkg.ErrReportPayloadRequired
	}
	t := exceptions.Resolve(e.Param(events.ParamException))
	if t == nil {
		return nil, errspkg.ErrReportPayloadRequired
	}

	chain := exceptions.Chain(t)
	previous := make([]string, 0, len(chain))
	for _, p := range chain {
		previous = append(previous, p.ClassName())
	}

	return &Report{
		ID:         idspkg.CreateULID(),
		Event:      e.Name(),
		ErrorCode:  e.Error(),
		ClassName:  t.ClassName(),
		Message:    t.Message(),
		Code:       t.Code(),
		File:       t.File(),
		Line:       t.Line(),
		Previous:   previous,
		Rendered:   model.Result(),
		ErrorLevel: model.ErrorLevel(),
		RenderedAt: now().UTC(),
	}, nil
}

// Marshal encodes the report as JSON.
func (r *Report) Marshal() ([]byte, error) {
	payload, err := jsoncodec.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exception report: %w", err)
	}
	return payload, nil
}

// DecodeReport parses a published report payload.
func DecodeReport(payload []byte) (*Report, error) {
	var r Report
	if err := jsoncodec.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode exception report: %w", err)
	}
	return &r, nil
}
