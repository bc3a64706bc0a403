// Package response holds the response kinds an application can emit and the
// selector that swaps the default response for a console one.
package response

import (
	"io"
	"net/http"
	"sync"
)

// Response is the minimal capability every response exposes. Code that
// needs to know whether a value is "already a response" checks for this
// interface, never for a concrete type.
type Response interface {
	Content() string
	SetContent(content string)
	Metadata(key string) (any, bool)
	SetMetadata(key string, value any)
}

type metadata struct {
	mu     sync.RWMutex
	values map[string]any
}

func (m *metadata) Metadata(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *metadata) SetMetadata(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]any)
	}
	m.values[key] = value
}

// ConsoleResponse is written to a terminal; its error level becomes the
// process exit status.
type ConsoleResponse struct {
	metadata
	content    string
	errorLevel int
}

// NewConsoleResponse returns an empty console response with error level 0.
func NewConsoleResponse() *ConsoleResponse {
	return &ConsoleResponse{}
}

func (r *ConsoleResponse) Content() string           { return r.content }
func (r *ConsoleResponse) SetContent(content string) { r.content = content }
func (r *ConsoleResponse) ErrorLevel() int           { return r.errorLevel }

func (r *ConsoleResponse) SetErrorLevel(level int) *ConsoleResponse {
	r.errorLevel = level
	return r
}

// Send writes the content to w.
func (r *ConsoleResponse) Send(w io.Writer) (int, error) {
	return io.WriteString(w, r.content)
}

// HTTPResponse is the default response of a request served over HTTP. The
// zero value is a 200 response with no headers.
type HTTPResponse struct {
	metadata
	statusCode int
	header     http.Header
	content    string
}

// NewHTTPResponse returns a 200 response with empty headers.
func NewHTTPResponse() *HTTPResponse {
	return &HTTPResponse{statusCode: http.StatusOK, header: make(http.Header)}
}

func (r *HTTPResponse) Content() string           { return r.content }
func (r *HTTPResponse) SetContent(content string) { r.content = content }

func (r *HTTPResponse) StatusCode() int {
	if r.statusCode == 0 {
		return http.StatusOK
	}
	return r.statusCode
}

func (r *HTTPResponse) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

func (r *HTTPResponse) SetStatusCode(code int) *HTTPResponse {
	r.statusCode = code
	return r
}

// Send writes headers, status, and body to w.
func (r *HTTPResponse) Send(w http.ResponseWriter) error {
	for key, values := range r.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(r.StatusCode())
	_, err := io.WriteString(w, r.content)
	return err
}

var (
	_ Response = (*ConsoleResponse)(nil)
	_ Response = (*HTTPResponse)(nil)
)
