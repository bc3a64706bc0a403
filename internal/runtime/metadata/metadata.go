// Package metadata holds the headers attached to published exception
// reports.
package metadata

// Reserved keys set on every exception report message.
const (
	// KeyEvent is the name of the event that carried the exception.
	KeyEvent = "consolemvc_event"

	// KeyError is the error code of the event, e.g. "error-exception".
	KeyError = "consolemvc_error"

	// KeyClassName is the class name of the top-level exception.
	KeyClassName = "consolemvc_exception_class"

	// KeyContentType describes the payload encoding.
	KeyContentType = "content_type"

	// KeyTraceID and KeySpanID carry the publishing span when tracing is on.
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"
)

// ContentTypeJSON is the content type of report payloads.
const ContentTypeJSON = "application/json"

// Metadata represents the headers carried alongside a report.
type Metadata map[string]string

func (m Metadata) cloneWithExtra(extra int) Metadata {
	size := len(m) + extra
	if size <= 0 {
		return Metadata{}
	}

	cloned := make(Metadata, size)
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

// Clone returns a shallow copy of the metadata map.
func (m Metadata) Clone() Metadata {
	return m.cloneWithExtra(0)
}

// With returns a copy containing key. Empty values are skipped.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.cloneWithExtra(1)
	if value != "" {
		cloned[key] = value
	}
	return cloned
}

// WithAll returns a copy with entries merged in; entries win on conflict.
func (m Metadata) WithAll(entries Metadata) Metadata {
	cloned := m.cloneWithExtra(len(entries))
	for k, v := range entries {
		cloned[k] = v
	}
	return cloned
}

// IsReserved reports whether key is one of the keys the publisher owns.
func IsReserved(key string) bool {
	switch key {
	case KeyEvent, KeyError, KeyClassName, KeyContentType, KeyTraceID, KeySpanID:
		return true
	}
	return false
}
