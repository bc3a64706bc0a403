package reporting

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/drblury/consolemvc/internal/runtime/config"
	errspkg "github.com/drblury/consolemvc/internal/runtime/errors"
	"github.com/drblury/consolemvc/internal/runtime/events"
	loggingpkg "github.com/drblury/consolemvc/internal/runtime/logging"
	metadatapkg "github.com/drblury/consolemvc/internal/runtime/metadata"
	"github.com/drblury/consolemvc/internal/runtime/view"
)

// Priority is the listener priority Publisher uses when attached by an
// Application. It runs after the exception strategy has set the model.
const Priority = -100

const tracerName = "consolemvc-reporting"

// Publisher sends a Report for every console model produced on the error
// events. Publish failures are logged and never reach the event bus.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    loggingpkg.ServiceLogger
	metrics   *Metrics
	metadata  metadatapkg.Metadata
	tracer    trace.Tracer

	listeners events.ListenerSet
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithTopic overrides config.DefaultReportTopic.
func WithTopic(topic string) Option {
	return func(p *Publisher) { p.topic = topic }
}

func WithLogger(log loggingpkg.ServiceLogger) Option {
	return func(p *Publisher) { p.logger = loggingpkg.OrNop(log) }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithMetadata adds static headers to every report. Reserved keys are
// ignored.
func WithMetadata(md metadatapkg.Metadata) Option {
	return func(p *Publisher) {
		for k, v := range md {
			if !metadatapkg.IsReserved(k) {
				p.metadata[k] = v
			}
		}
	}
}

// WithTracer replaces the global "consolemvc-reporting" tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Publisher) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// NewPublisher returns a Publisher writing to publisher.
func NewPublisher(publisher message.Publisher, opts ...Option) (*Publisher, error) {
	if publisher == nil {
		return nil, errspkg.ErrPublisherRequired
	}
	p := &Publisher{
		publisher: publisher,
		topic:     config.DefaultReportTopic,
		logger:    loggingpkg.NopLogger(),
		metadata:  metadatapkg.Metadata{},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.topic == "" {
		return nil, errspkg.ErrTopicRequired
	}
	return p, nil
}

// Topic returns the topic reports are published on.
func (p *Publisher) Topic() string { return p.topic }

// Attach subscribes the publisher to the dispatch and render error events.
func (p *Publisher) Attach(em *events.EventManager, priority int) {
	p.listeners.Add(em.Attach(events.EventDispatchError, priority, p.onError))
	p.listeners.Add(em.Attach(events.EventRenderError, priority, p.onError))
}

// Detach removes the subscriptions made by Attach.
func (p *Publisher) Detach(em *events.EventManager) {
	p.listeners.DetachAll(em)
}

func (p *Publisher) onError(e *events.MvcEvent) {
	model, ok := e.Result().(*view.ConsoleModel)
	if !ok {
		return
	}
	p.Hook(e, model)
}

// Hook publishes the report for model. Its signature matches
// view.RenderHook so the publisher can also be registered on a strategy
// directly instead of attaching to the bus.
func (p *Publisher) Hook(e *events.MvcEvent, model *view.ConsoleModel) {
	err := p.Publish(e.Context(), e, model)
	switch {
	case err == nil:
	case errors.Is(err, errspkg.ErrReportPayloadRequired):
		p.logger.Debug("Skipping exception report without exception", loggingpkg.LogFields{
			"event": e.Name(),
		})
	default:
		p.logger.Error("Failed to publish exception report", err, loggingpkg.LogFields{
			"event": e.Name(),
			"topic": p.topic,
		})
	}
}

// Publish builds the report for e and model and hands it to the transport.
func (p *Publisher) Publish(ctx context.Context, e *events.MvcEvent, model *view.ConsoleModel) error {
	report, err := NewReport(e, model)
	if err != nil {
		return err
	}
	p.metrics.ObserveRendered(report.Event, report.ErrorCode)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := p.tracer.Start(ctx, "PublishExceptionReport")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.id", report.ID),
		attribute.String("report.event", report.Event),
		attribute.String("report.error_code", report.ErrorCode),
		attribute.String("report.class_name", report.ClassName),
		attribute.String("messaging.destination", p.topic),
	)

	msg, err := p.newMessage(span.SpanContext(), report)
	if err == nil {
		msg.SetContext(ctx)
		err = p.publisher.Publish(p.topic, msg)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.ObservePublished(p.topic, StatusFailure)
		return err
	}

	p.metrics.ObservePublished(p.topic, StatusSuccess)
	p.logger.Debug("Published exception report", loggingpkg.LogFields{
		"report_id": report.ID,
		"topic":     p.topic,
	})
	return nil
}

func (p *Publisher) newMessage(sc trace.SpanContext, report *Report) (*message.Message, error) {
	payload, err := report.Marshal()
	if err != nil {
		return nil, err
	}

	md := p.metadata.WithAll(metadatapkg.Metadata{
		metadatapkg.KeyEvent:       report.Event,
		metadatapkg.KeyError:       report.ErrorCode,
		metadatapkg.KeyClassName:   report.ClassName,
		metadatapkg.KeyContentType: metadatapkg.ContentTypeJSON,
	})
	if sc.IsValid() {
		md = md.With(metadatapkg.KeyTraceID, sc.TraceID().String()).
			With(metadatapkg.KeySpanID, sc.SpanID().String())
	}

	msg := message.NewMessage(report.ID, payload)
	msg.Metadata = metadatapkg.ToWatermill(md)
	return msg, nil
}

var _ events.ListenerAggregate = (*Publisher)(nil)
