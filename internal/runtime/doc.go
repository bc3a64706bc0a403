/*
Package runtime assembles the console exception handling of consolemvc.

# Architecture Overview

An Application owns one event manager. On it, the exception strategy
listens for "dispatch.error" and "render.error" and turns the exception
payload into a console model with error level 1. A finish listener copies
the model into the response the selector chose for the environment, and an
optional report publisher sends every rendered exception to a Watermill
transport.

# Package Structure

## Application (application.go)

NewApplication validates Config, resolves the console Environment, builds
the exception strategy from the configured templates, and, when a report
transport is selected, the report publisher with its metrics.

# Sub-packages

  - config/: Application configuration with validation
  - console/: Console environment detection
  - errors/: Sentinel errors and error types
  - events/: Event manager, MvcEvent, and listener aggregates
  - exceptions/: Exception records and previous-exception chains
  - ids/: ULID generation for report IDs
  - jsoncodec/: JSON marshaling utilities
  - logging/: Logger interface and adapters
  - metadata/: Report message metadata
  - reporting/: Report publishing, metrics, and tracing
  - response/: Console and HTTP responses and the response selector
  - transport/: Report transports (channel, Kafka, RabbitMQ, NATS, HTTP, AWS SNS)
  - view/: Console models, message templates, and the exception strategy

# Usage Example

	conf := consolemvc.DefaultConfig()
	app, err := consolemvc.NewApplication(&conf, logger, ctx, consolemvc.ApplicationDependencies{})
	if err != nil {
		return err
	}
	defer app.Close()

	e := app.HandleError(ctx, consolemvc.EventDispatchError, consolemvc.ErrorException, err)
	if resp, ok := e.Response().(*consolemvc.ConsoleResponse); ok {
		resp.Send(os.Stderr)
		os.Exit(resp.ErrorLevel())
	}
*/
package runtime
