package worker

import (
	"log/slog"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/domain"
)

// ErrorPolicy decides what the conversation sees when an agent run fails.
type ErrorPolicy int

const (
	// SurfaceErrors posts one error message to the sink.
	SurfaceErrors ErrorPolicy = iota
	// SwallowErrors only logs the failure.
	SwallowErrors
)

type settings struct {
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	errorPolicy ErrorPolicy
	policy      Policy
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: logging.NewNop(),
		policy: PolicyConcurrent,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures tasks and dispatchers.
type Option func(*settings)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

// WithErrorPolicy selects how failures reach the conversation.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(s *settings) {
		s.errorPolicy = p
	}
}

// WithPolicy selects the dispatcher submission policy. Tasks ignore it.
func WithPolicy(p Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}
