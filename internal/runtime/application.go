package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/drblury/consolemvc/internal/runtime/config"
	"github.com/drblury/consolemvc/internal/runtime/console"
	errspkg "github.com/drblury/consolemvc/internal/runtime/errors"
	"github.com/drblury/consolemvc/internal/runtime/events"
	loggingpkg "github.com/drblury/consolemvc/internal/runtime/logging"
	"github.com/drblury/consolemvc/internal/runtime/reporting"
	"github.com/drblury/consolemvc/internal/runtime/response"
	transportpkg "github.com/drblury/consolemvc/internal/runtime/transport"
	"github.com/drblury/consolemvc/internal/runtime/view"
)

// StrategyPriority is the priority the exception strategy is attached with.
const StrategyPriority = 1

// ApplicationDependencies holds the optional collaborators of an Application.
// Leave fields nil to use the defaults derived from Config.
type ApplicationDependencies struct {
	Environment      console.Environment
	EventManager     *events.EventManager
	TransportFactory transportpkg.Factory
	Registerer       prometheus.Registerer // Used when Config.MetricsEnabled; nil means the default registerer.
	RenderHooks      []view.RenderHook
}

// Application wires console detection, the response selector, the exception
// strategy, and optional report publishing onto one event manager.
type Application struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	env       console.Environment
	events    *events.EventManager
	responses *response.DelegatorFactory
	strategy  *view.ExceptionStrategy
	reporter  *reporting.Publisher
	transport transportpkg.Transport

	listeners events.ListenerSet
	closeOnce sync.Once
	closeErr  error
}

// NewApplication validates conf and assembles an Application. The strategy
// and, when a report transport is configured, the report publisher are
// attached to the event manager before it returns.
func NewApplication(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps ApplicationDependencies) (*Application, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	if err := conf.Validate(); err != nil {
		return nil, errspkg.NewConfigValidationError(err)
	}

	log.Info("Creating console application", loggingpkg.LogFields{
		"console_mode":     conf.ConsoleMode,
		"report_transport": conf.ReportTransport,
		"interactive":      console.Interactive(),
		"config":           conf,
	})

	env := deps.Environment
	if env == nil {
		var err error
		if env, err = console.FromMode(conf.ConsoleMode); err != nil {
			return nil, err
		}
	}
	em := deps.EventManager
	if em == nil {
		em = events.NewEventManager()
	}

	a := &Application{
		Conf:      conf,
		Logger:    log,
		env:       env,
		events:    em,
		responses: response.NewDelegatorFactory(env),
		strategy:  newStrategy(conf, log, deps.RenderHooks),
	}

	if conf.ReportingEnabled() {
		if err := a.setupReporting(ctx, deps); err != nil {
			return nil, err
		}
	}

	a.strategy.Attach(em, StrategyPriority)
	if a.reporter != nil {
		a.reporter.Attach(em, reporting.Priority)
	}
	a.listeners.Add(em.Attach(events.EventFinish, 0, a.injectResponse))

	return a, nil
}

func newStrategy(conf *configpkg.Config, log loggingpkg.ServiceLogger, hooks []view.RenderHook) *view.ExceptionStrategy {
	opts := []view.StrategyOption{
		view.WithDisplayExceptions(conf.DisplayExceptions),
		view.WithLogger(log.With(loggingpkg.LogFields{"component": "exception_strategy"})),
	}
	if conf.MessageTemplate != "" {
		opts = append(opts, view.WithMessageTemplate(view.LiteralTemplate(conf.MessageTemplate)))
	}
	if conf.PreviousMessageTemplate != "" {
		opts = append(opts, view.WithPreviousMessage(conf.PreviousMessageTemplate))
	}
	for _, hook := range hooks {
		opts = append(opts, view.WithRenderHook(hook))
	}
	return view.NewExceptionStrategy(opts...)
}

func (a *Application) setupReporting(ctx context.Context, deps ApplicationDependencies) error {
	factory := deps.TransportFactory
	if factory == nil {
		factory = transportpkg.DefaultFactory()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	transport, err := factory.Build(ctx, a.Conf, loggingpkg.NewWatermillAdapter(a.Logger))
	if err != nil {
		return fmt.Errorf("failed to build report transport: %w", err)
	}
	if !transport.Enabled() {
		return nil
	}

	opts := []reporting.Option{
		reporting.WithTopic(a.Conf.Topic()),
		reporting.WithLogger(a.Logger.With(loggingpkg.LogFields{"component": "exception_reporting"})),
	}
	if a.Conf.MetricsEnabled {
		metrics, err := reporting.NewMetrics(deps.Registerer)
		if err != nil {
			_ = transport.Close()
			return fmt.Errorf("failed to register reporting metrics: %w", err)
		}
		opts = append(opts, reporting.WithMetrics(metrics))
	}

	reporter, err := reporting.NewPublisher(transport.Publisher, opts...)
	if err != nil {
		_ = transport.Close()
		return err
	}

	a.transport = transport
	a.reporter = reporter
	return nil
}

// Events returns the event manager the application listens on.
func (a *Application) Events() *events.EventManager { return a.events }

// Strategy returns the exception strategy for further configuration.
func (a *Application) Strategy() *view.ExceptionStrategy { return a.strategy }

// Reporter returns the report publisher, or nil when reporting is disabled.
func (a *Application) Reporter() *reporting.Publisher { return a.reporter }

// Transport returns the report transport. Its Subscriber is set for the
// in-process channel transport only.
func (a *Application) Transport() transportpkg.Transport { return a.transport }

// IsConsole reports whether the application runs from a console.
func (a *Application) IsConsole() bool { return a.env.IsConsole() }

// Response selects the response for the current environment: a console
// response in a console, otherwise whatever defaultFactory builds.
func (a *Application) Response(defaultFactory response.Factory) response.Response {
	return a.responses.Create(nil, "Response", defaultFactory)
}

// HandleError raises exception on eventName (events.EventDispatchError or
// events.EventRenderError) with the given error code, then triggers
// events.EventFinish so the rendered model reaches the response. The
// returned event carries both.
func (a *Application) HandleError(ctx context.Context, eventName, code string, exception any) *events.MvcEvent {
	e := events.NewErrorEvent(ctx, code, exception)
	e.SetResponse(a.Response(nil))

	a.events.Trigger(eventName, e)
	a.events.Trigger(events.EventFinish, e)
	return e
}

func (a *Application) injectResponse(e *events.MvcEvent) {
	model, ok := e.Result().(*view.ConsoleModel)
	if !ok {
		return
	}
	resp, ok := e.Response().(response.Response)
	if !ok {
		return
	}
	view.InjectResponse(model, resp)
}

// Close detaches every listener the application attached and closes the
// report transport. It is safe to call more than once.
func (a *Application) Close() error {
	a.closeOnce.Do(func() {
		a.strategy.Detach(a.events)
		if a.reporter != nil {
			a.reporter.Detach(a.events)
		}
		a.listeners.DetachAll(a.events)

		if err := a.transport.Close(); err != nil {
			a.Logger.Error("Failed to close report transport", err, nil)
			a.closeErr = err
		}
	})
	return a.closeErr
}
