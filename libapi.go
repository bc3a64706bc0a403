package consolemvc

import (
	runtimepkg "github.com/drblury/consolemvc/internal/runtime"
	configpkg "github.com/drblury/consolemvc/internal/runtime/config"
	"github.com/drblury/consolemvc/internal/runtime/console"
	errspkg "github.com/drblury/consolemvc/internal/runtime/errors"
	"github.com/drblury/consolemvc/internal/runtime/events"
	"github.com/drblury/consolemvc/internal/runtime/exceptions"
	idspkg "github.com/drblury/consolemvc/internal/runtime/ids"
	jsoncodec "github.com/drblury/consolemvc/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/consolemvc/internal/runtime/logging"
	metadatapkg "github.com/drblury/consolemvc/internal/runtime/metadata"
	"github.com/drblury/consolemvc/internal/runtime/reporting"
	"github.com/drblury/consolemvc/internal/runtime/response"
	transportpkg "github.com/drblury/consolemvc/internal/runtime/transport"
	"github.com/drblury/consolemvc/internal/runtime/view"
)

type (
	Config                  = configpkg.Config
	Application             = runtimepkg.Application
	ApplicationDependencies = runtimepkg.ApplicationDependencies
	Transport               = transportpkg.Transport
	TransportFactory        = transportpkg.Factory

	Environment     = console.Environment
	EnvironmentFunc = console.EnvironmentFunc

	EventManager      = events.EventManager
	MvcEvent          = events.MvcEvent
	Listener          = events.Listener
	ListenerHandle    = events.ListenerHandle
	ListenerAggregate = events.ListenerAggregate

	Throwable       = exceptions.Throwable
	Exception       = exceptions.Exception
	ExceptionOption = exceptions.Option

	Response          = response.Response
	ResponseFactory   = response.Factory
	ConsoleResponse   = response.ConsoleResponse
	HTTPResponse      = response.HTTPResponse
	DelegatorFactory  = response.DelegatorFactory
	ServiceContainer  = response.Container
	ConsoleModel      = view.ConsoleModel
	ExceptionStrategy = view.ExceptionStrategy
	StrategyOption    = view.StrategyOption
	MessageTemplate   = view.MessageTemplate
	Formatter         = view.Formatter
	RenderHook        = view.RenderHook

	Report           = reporting.Report
	ReportPublisher  = reporting.Publisher
	ReportOption     = reporting.Option
	ReportingMetrics = reporting.Metrics
	Metadata         = metadatapkg.Metadata

	LogFields             = loggingpkg.LogFields
	ServiceLogger         = loggingpkg.ServiceLogger
	ConfigValidationError = errspkg.ConfigValidationError
)

var (
	NewApplication = runtimepkg.NewApplication
	DefaultConfig  = configpkg.Default
	ValidateConfig = configpkg.ValidateConfig

	ProcessEnvironment = console.Process
	StaticEnvironment  = console.Static
	Interactive        = console.Interactive

	NewEventManager = events.NewEventManager
	NewMvcEvent     = events.NewMvcEvent
	NewErrorEvent   = events.NewErrorEvent

	NewException   = exceptions.New
	WrapException  = exceptions.Wrap
	WithCode       = exceptions.WithCode
	WithClassName  = exceptions.WithClassName
	FromError      = exceptions.FromError
	ExceptionChain = exceptions.Chain

	SelectResponse      = response.Select
	NewDelegatorFactory = response.NewDelegatorFactory
	NewConsoleResponse  = response.NewConsoleResponse
	NewHTTPResponse     = response.NewHTTPResponse

	NewExceptionStrategy  = view.NewExceptionStrategy
	WithDisplayExceptions = view.WithDisplayExceptions
	WithMessageTemplate   = view.WithMessageTemplate
	WithPreviousMessage   = view.WithPreviousMessage
	WithStrategyLogger    = view.WithLogger
	WithRenderHook        = view.WithRenderHook
	LiteralTemplate       = view.LiteralTemplate
	FuncTemplate          = view.FuncTemplate
	NewConsoleModel       = view.NewConsoleModel
	InjectResponse        = view.InjectResponse

	NewReportPublisher  = reporting.NewPublisher
	NewReportingMetrics = reporting.NewMetrics
	DecodeReport        = reporting.DecodeReport
	DefaultTransport    = transportpkg.DefaultFactory

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal

	ErrPublisherRequired     = errspkg.ErrPublisherRequired
	ErrTopicRequired         = errspkg.ErrTopicRequired
	ErrConfigRequired        = errspkg.ErrConfigRequired
	ErrLoggerRequired        = errspkg.ErrLoggerRequired
	ErrUnknownConsoleMode    = errspkg.ErrUnknownConsoleMode
	ErrUnknownTransport      = errspkg.ErrUnknownTransport
	ErrReportPayloadRequired = errspkg.ErrReportPayloadRequired

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NewLogHandler        = loggingpkg.NewHandler
	ParseLogLevel        = loggingpkg.ParseLevel

	CreateULID = idspkg.CreateULID
)

// Event names and error codes.
const (
	EventDispatchError = events.EventDispatchError
	EventRenderError   = events.EventRenderError
	EventFinish        = events.EventFinish

	ErrorException          = events.ErrorException
	ErrorControllerNotFound = events.ErrorControllerNotFound
	ErrorControllerInvalid  = events.ErrorControllerInvalid
	ErrorRouterNoMatch      = events.ErrorRouterNoMatch

	ParamException = events.ParamException
)

// Templates and levels of the exception strategy.
const (
	DefaultMessageTemplate         = view.DefaultMessageTemplate
	DefaultPreviousMessageTemplate = view.DefaultPreviousMessageTemplate
	ErrorLevel                     = view.ErrorLevel
)

// Metadata keys set on every published report.
const (
	MetadataKeyEvent       = metadatapkg.KeyEvent
	MetadataKeyError       = metadatapkg.KeyError
	MetadataKeyClassName   = metadatapkg.KeyClassName
	MetadataKeyContentType = metadatapkg.KeyContentType
	MetadataKeyTraceID     = metadatapkg.KeyTraceID
	MetadataKeySpanID      = metadatapkg.KeySpanID
)
