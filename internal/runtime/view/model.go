// Package view renders exceptions raised during dispatch or rendering into
// console view models.
package view

import (
	"github.com/drblury/consolemvc/internal/runtime/response"
)

// ConsoleModel is the result a console listener attaches to an event: the
// text to print and the error level the process should exit with.
type ConsoleModel struct {
	result     string
	errorLevel int
}

// NewConsoleModel returns an empty model with error level 0.
func NewConsoleModel() *ConsoleModel {
	return &ConsoleModel{}
}

func (m *ConsoleModel) Result() string { return m.result }

func (m *ConsoleModel) SetResult(result string) *ConsoleModel {
	m.result = result
	return m
}

func (m *ConsoleModel) ErrorLevel() int { return m.errorLevel }

func (m *ConsoleModel) SetErrorLevel(level int) *ConsoleModel {
	m.errorLevel = level
	return m
}

// InjectResponse copies the model's text into resp. A console response also
// takes over the model's error level.
func InjectResponse(model *ConsoleModel, resp response.Response) {
	if model == nil || resp == nil {
		return
	}
	resp.SetContent(model.Result())
	if cr, ok := resp.(*response.ConsoleResponse); ok {
		cr.SetErrorLevel(model.ErrorLevel())
	}
}
