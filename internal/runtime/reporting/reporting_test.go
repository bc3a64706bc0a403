package reporting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/drblury/consolemvc/internal/runtime/config"
	errspkg "github.com/drblury/consolemvc/internal/runtime/errors"
	"github.com/drblury/consolemvc/internal/runtime/events"
	"github.com/drblury/consolemvc/internal/runtime/exceptions"
	metadatapkg "github.com/drblury/consolemvc/internal/runtime/metadata"
	"github.com/drblury/consolemvc/internal/runtime/view"
)

type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	messages []*message.Message
	err      error
}

func (p *recordingPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.messages = append(p.messages, messages...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
	return at
}

func wiredBus(t *testing.T, pub message.Publisher, opts ...Option) (*events.EventManager, *Publisher) {
	t.Helper()
	em := events.NewEventManager()
	view.NewExceptionStrategy().Attach(em, 1)

	p, err := NewPublisher(pub, opts...)
	require.NoError(t, err)
	p.Attach(em, Priority)
	return em, p
}

func TestNewReport(t *testing.T) {
	at := fixedNow(t)
	exc := exceptions.Wrap(errors.New("disk full"), "cannot write cache", exceptions.WithCode(28))

	e := events.NewErrorEvent(context.Background(), events.ErrorException, exc)
	model := view.NewConsoleModel().SetResult("rendered").SetErrorLevel(view.ErrorLevel)

	r, err := NewReport(e, model)
	require.NoError(t, err)

	assert.Len(t, r.ID, 26)
	assert.Equal(t, events.ErrorException, r.ErrorCode)
	assert.Equal(t, exc.ClassName(), r.ClassName)
	assert.Equal(t, "cannot write cache", r.Message)
	assert.Equal(t, 28, r.Code)
	assert.Equal(t, exc.File(), r.File)
	assert.Equal(t, exc.Line(), r.Line)
	assert.Equal(t, []string{"errors.errorString"}, r.Previous)
	assert.Equal(t, "rendered", r.Rendered)
	assert.Equal(t, 1, r.ErrorLevel)
	assert.True(t, at.Equal(r.RenderedAt))

	payload, err := r.Marshal()
	require.NoError(t, err)
	decoded, err := DecodeReport(payload)
	require.NoError(t, err)
	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, r.Previous, decoded.Previous)
	assert.True(t, at.Equal(decoded.RenderedAt))
}

func TestNewReportRequiresException(t *testing.T) {
	model := view.NewConsoleModel()

	_, err := NewReport(events.NewErrorEvent(context.Background(), events.ErrorException, nil), model)
	assert.ErrorIs(t, err, errspkg.ErrReportPayloadRequired)

	_, err = NewReport(events.NewErrorEvent(context.Background(), events.ErrorException, "not an error"), model)
	assert.ErrorIs(t, err, errspkg.ErrReportPayloadRequired)

	_, err = NewReport(nil, model)
	assert.ErrorIs(t, err, errspkg.ErrReportPayloadRequired)
}

func TestDecodeReportRejectsGarbage(t *testing.T) {
	_, err := DecodeReport([]byte("{"))
	assert.Error(t, err)
}

func TestNewPublisherValidation(t *testing.T) {
	_, err := NewPublisher(nil)
	assert.ErrorIs(t, err, errspkg.ErrPublisherRequired)

	_, err = NewPublisher(&recordingPublisher{}, WithTopic(""))
	assert.ErrorIs(t, err, errspkg.ErrTopicRequired)

	p, err := NewPublisher(&recordingPublisher{})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultReportTopic, p.Topic())
}

func TestPublisherPublishesOverGoChannel(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	messages, err := pubSub.Subscribe(context.Background(), "reports")
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	em, _ := wiredBus(t, pubSub,
		WithTopic("reports"),
		WithMetrics(metrics),
		WithMetadata(metadatapkg.Metadata{"service": "billing-cli", metadatapkg.KeyEvent: "spoofed"}),
	)

	exc := exceptions.New("invoice run failed")
	e := events.NewErrorEvent(context.Background(), events.ErrorException, exc)
	em.Trigger(events.EventDispatchError, e)

	var msg *message.Message
	select {
	case msg = <-messages:
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for report")
	}

	assert.Equal(t, events.EventDispatchError, msg.Metadata.Get(metadatapkg.KeyEvent))
	assert.Equal(t, events.ErrorException, msg.Metadata.Get(metadatapkg.KeyError))
	assert.Equal(t, exc.ClassName(), msg.Metadata.Get(metadatapkg.KeyClassName))
	assert.Equal(t, metadatapkg.ContentTypeJSON, msg.Metadata.Get(metadatapkg.KeyContentType))
	assert.Equal(t, "billing-cli", msg.Metadata.Get("service"))

	report, err := DecodeReport(msg.Payload)
	require.NoError(t, err)
	assert.Equal(t, msg.UUID, report.ID)
	assert.Equal(t, "invoice run failed", report.Message)
	assert.Contains(t, report.Rendered, "invoice run failed")
	assert.Equal(t, view.ErrorLevel, report.ErrorLevel)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.rendered.WithLabelValues(events.EventDispatchError, events.ErrorException)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.published.WithLabelValues("reports", StatusSuccess)))
}

func TestPublisherSkipsEventsWithoutModel(t *testing.T) {
	pub := &recordingPublisher{}
	em, _ := wiredBus(t, pub)

	em.Trigger(events.EventDispatchError, events.NewErrorEvent(context.Background(), events.ErrorRouterNoMatch, exceptions.New("no route")))
	em.Trigger(events.EventRenderError, events.NewMvcEvent())

	assert.Zero(t, pub.count())
}

func TestPublisherSkipsModelWithoutException(t *testing.T) {
	pub := &recordingPublisher{}
	em, _ := wiredBus(t, pub)

	em.Trigger(events.EventRenderError, events.NewErrorEvent(context.Background(), events.ErrorException, nil))

	assert.Zero(t, pub.count())
}

func TestPublisherFailureStaysOffTheBus(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	em, p := wiredBus(t, pub, WithMetrics(metrics))

	e := events.NewErrorEvent(context.Background(), events.ErrorException, errors.New("boom"))
	assert.NotPanics(t, func() { em.Trigger(events.EventRenderError, e) })

	_, ok := e.Result().(*view.ConsoleModel)
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.published.WithLabelValues(p.Topic(), StatusFailure)))

	err = p.Publish(context.Background(), e, e.Result().(*view.ConsoleModel))
	assert.EqualError(t, err, "broker unavailable")
}

func TestPublisherAsRenderHook(t *testing.T) {
	pub := &recordingPublisher{}
	p, err := NewPublisher(pub)
	require.NoError(t, err)

	em := events.NewEventManager()
	view.NewExceptionStrategy(view.WithRenderHook(p.Hook)).Attach(em, 1)

	em.Trigger(events.EventDispatchError, events.NewErrorEvent(context.Background(), events.ErrorException, errors.New("hooked")))

	require.Equal(t, 1, pub.count())
	assert.Equal(t, []string{config.DefaultReportTopic}, pub.topics)
}

func TestPublisherDetachRemovesOnlyItsListeners(t *testing.T) {
	pub := &recordingPublisher{}
	em, p := wiredBus(t, pub)
	require.Equal(t, 2, em.ListenerCount(events.EventDispatchError))

	p.Detach(em)

	assert.Equal(t, 1, em.ListenerCount(events.EventDispatchError))
	assert.Equal(t, 1, em.ListenerCount(events.EventRenderError))
	em.Trigger(events.EventDispatchError, events.NewErrorEvent(context.Background(), events.ErrorException, errors.New("boom")))
	assert.Zero(t, pub.count())
}

func TestPublisherPropagatesTraceContext(t *testing.T) {
	pub := &recordingPublisher{}
	em, _ := wiredBus(t, pub)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), sc)

	em.Trigger(events.EventDispatchError, events.NewErrorEvent(ctx, events.ErrorException, errors.New("traced")))

	require.Equal(t, 1, pub.count())
	msg := pub.messages[0]
	assert.Equal(t, sc.TraceID().String(), msg.Metadata.Get(metadatapkg.KeyTraceID))
	assert.NotEmpty(t, msg.Metadata.Get(metadatapkg.KeySpanID))
}

func TestNewMetricsIsIdempotent(t *testing.T) {
	registry := prometheus.NewRegistry()
	first, err := NewMetrics(registry)
	require.NoError(t, err)
	second, err := NewMetrics(registry)
	require.NoError(t, err)

	first.ObservePublished("reports", StatusSuccess)
	second.ObservePublished("reports", StatusSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.published.WithLabelValues("reports", StatusSuccess)))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRendered("dispatch.error", "error-exception")
		m.ObservePublished("reports", StatusFailure)
	})
}
