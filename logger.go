package rna

// LogEvent describes a noteworthy engine event such as a self healed
// dynamic property or a failed message bus publish.
type LogEvent struct {
	Kind     string
	Struct   string
	Property string
	Owner    string
	Message  string
	Err      error
}

// Log event kinds.
const (
	LogSelfHeal      = "self_heal"
	LogPublishFailed = "publish_failed"
	LogUpdateSkipped = "update_skipped"
)

// Logger records engine events.
type Logger interface {
	LogEvent(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvent implements Logger.
func (f LoggerFunc) LogEvent(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(LogEvent) {}

// WithLogger attaches a logger to the registry.
func WithLogger(logger Logger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
