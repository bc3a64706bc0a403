package reporting

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Publish outcomes recorded on the published counter.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics counts rendered exceptions and published reports. A nil *Metrics
// records nothing.
type Metrics struct {
	rendered  *prometheus.CounterVec
	published *prometheus.CounterVec
}

func newReportingCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "consolemvc",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewMetrics creates the counters and registers them with registerer
// (prometheus.DefaultRegisterer when nil). Registering twice against the
// same registerer reuses the collectors already there.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	rendered, err := register(registerer, newReportingCounterVec(
		"exceptions_rendered_total",
		"Total number of exceptions rendered into console reports",
		[]string{"event", "error"},
	))
	if err != nil {
		return nil, err
	}
	published, err := register(registerer, newReportingCounterVec(
		"reports_published_total",
		"Total number of exception reports handed to the report transport",
		[]string{"topic", "status"},
	))
	if err != nil {
		return nil, err
	}

	return &Metrics{rendered: rendered, published: published}, nil
}

func register(registerer prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		return existing, nil
	}
	return c, nil
}

// ObserveRendered counts one rendered exception.
func (m *Metrics) ObserveRendered(event, errorCode string) {
	if m == nil {
		return
	}
	m.rendered.WithLabelValues(event, errorCode).Inc()
}

// ObservePublished counts one publish attempt with its outcome.
func (m *Metrics) ObservePublished(topic, status string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(topic, status).Inc()
}
