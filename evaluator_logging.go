package searchspace

import "time"

// ConstraintLogEvent describes a single constraint check for logging.
type ConstraintLogEvent struct {
	Engine     string
	Constraint string
	Expr       string
	Satisfied  bool
	Duration   time.Duration
	Err        error
}

// ConstraintLogger records constraint check events.
type ConstraintLogger interface {
	LogCheck(ConstraintLogEvent)
}

// ConstraintLoggerFunc adapts a function to ConstraintLogger.
type ConstraintLoggerFunc func(ConstraintLogEvent)

// LogCheck implements ConstraintLogger.
func (f ConstraintLoggerFunc) LogCheck(event ConstraintLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopConstraintLogger struct{}

func (noopConstraintLogger) LogCheck(ConstraintLogEvent) {}

// WithConstraintLogger attaches a constraint logger to the search space.
func WithConstraintLogger(logger ConstraintLogger) Option {
	return func(cfg *spaceConfig) {
		if logger == nil {
			cfg.logger = noopConstraintLogger{}
			return
		}
		cfg.logger = logger
	}
}
