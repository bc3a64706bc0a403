// Package consolemvc renders exceptions raised while dispatching or
// rendering a request into console reports, and picks the right response
// type for the process: a console response when running from a command line,
// whatever the default factory builds otherwise.
//
// An Application wires the pieces onto one EventManager. The
// ExceptionStrategy listens for EventDispatchError and EventRenderError,
// ignores routing misses (controller not found, controller invalid, router
// no match) and results that already are a response, and otherwise sets a
// ConsoleModel with error level 1 as the event result. The report is built
// from a template with :className, :message, :code, :file, :line, :stack,
// and :previous placeholders; each previous exception in the chain is
// rendered with the previous-message template. A Formatter may replace the
// template entirely.
//
// # Reporting
//
// When Config.ReportTransport is set, every rendered exception is also
// published as a JSON Report through Watermill:
//   - channel: In-memory Go channels for tests and in-process consumers
//   - kafka: Kafka topics
//   - rabbitmq: AMQP durable exchanges
//   - nats: Core NATS subjects
//   - http: POST to ReportHTTPURL + topic
//   - aws: AWS SNS topics with LocalStack support
//
// Publishing runs inside an OpenTelemetry span and, with MetricsEnabled,
// counts rendered exceptions and published reports in Prometheus.
//
// When you need more control, ApplicationDependencies lets you bring your own
// Environment, EventManager, TransportFactory, Prometheus registerer, or
// render hooks.
package consolemvc
