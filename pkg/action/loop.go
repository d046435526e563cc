package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/expr"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/schema"
)

// LoopName is the registry name of the loop action.
const LoopName = "loop"

// MaxLoopIntervalTime is the largest interval, in seconds, a time.Duration can hold.
const MaxLoopIntervalTime = math.MaxInt64 / int(time.Second)

// ErrMaxIterations is returned when a loop reaches its configured iteration ceiling
// before the stop condition holds.
var ErrMaxIterations = errors.New("loop reached its iteration limit")

// Loop termination reasons.
const (
	TerminatedByCondition     = "condition"
	TerminatedByMaxIterations = "max_iterations"
	TerminatedByError         = "error"
)

// LoopInput holds the declared inputs of the loop action.
type LoopInput struct {
	// StopCondition is a boolean expression over the output mapping.
	StopCondition string `mapstructure:"stop_condition"`
	// LoopIntervalTime is the pause between iterations, in seconds.
	LoopIntervalTime int `mapstructure:"loop_interval_time"`
}

// LoopResult summarizes a finished run.
type LoopResult struct {
	Iterations   int
	TerminatedBy string
}

// SleepFunc suspends the loop between iterations.
type SleepFunc func(ctx context.Context, d time.Duration) error

// LoopSchema declares the loop inputs.
var LoopSchema = schema.Schema{
	{
		Name:        "stop_condition",
		Type:        schema.String(),
		Title:       "Stop condition",
		Description: "Boolean expression over the output mapping; the loop exits once it is true",
		Default:     "False",
	},
	{
		Name:        "loop_interval_time",
		Type:        schema.NonNegativeInt(),
		Title:       "Interval (seconds)",
		Description: "Pause between iterations, in seconds",
		Default:     0,
	},
}

// LoopAction repeatedly runs its nested actions until the stop condition holds.
//
// The condition is checked before every iteration, so a condition that is already
// true runs the body zero times. Without WithMaxIterations the loop is unbounded:
// a condition that never becomes true runs until ctx is cancelled.
type LoopAction struct {
	input         LoopInput
	cond          *expr.Condition
	body          *List
	outputs       ports.OutputSource
	maxIterations int
	sleep         SleepFunc
	logger        *slog.Logger
	hooks         domain.LifecycleHooks

	mu     sync.Mutex
	result LoopResult
}

// LoopOption configures a LoopAction.
type LoopOption func(*LoopAction)

// WithMaxIterations caps the number of body executions. Zero means unbounded.
func WithMaxIterations(n int) LoopOption {
	return func(l *LoopAction) {
		l.maxIterations = n
	}
}

// WithSleep replaces the inter-iteration wait.
func WithSleep(fn SleepFunc) LoopOption {
	return func(l *LoopAction) {
		l.sleep = fn
	}
}

// WithLoopLogger sets the structured logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *LoopAction) {
		l.logger = logger
	}
}

// WithLoopHooks registers observability hooks.
func WithLoopHooks(hooks domain.LifecycleHooks) LoopOption {
	return func(l *LoopAction) {
		l.hooks = hooks
	}
}

// NewLoop creates a loop over body. The stop condition is compiled up front, so a
// malformed expression fails here with *domain.ExpressionError.
func NewLoop(input LoopInput, outputs ports.OutputSource, body *List, opts ...LoopOption) (*LoopAction, error) {
	switch {
	case input.LoopIntervalTime < 0:
		return nil, &schema.AggregateError{Errors: []error{
			&schema.ValidationError{Key: "loop_interval_time", Reason: "must be >= 0", Value: input.LoopIntervalTime},
		}}
	case input.LoopIntervalTime > MaxLoopIntervalTime:
		return nil, &schema.AggregateError{Errors: []error{
			&schema.ValidationError{
				Key:    "loop_interval_time",
				Reason: fmt.Sprintf("must be <= %d", MaxLoopIntervalTime),
				Value:  input.LoopIntervalTime,
			},
		}}
	}
	if outputs == nil {
		return nil, fmt.Errorf("loop requires an output source")
	}

	cond, err := expr.Compile(input.StopCondition)
	if err != nil {
		return nil, err
	}

	l := &LoopAction{
		input:   input,
		cond:    cond,
		body:    body,
		outputs: outputs,
		sleep:   sleepContext,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger.Debug("loop condition compiled", "condition", cond.String(), "reads", cond.Variables())
	return l, nil
}

// LoopDefinition returns the registry definition of the loop action.
func LoopDefinition(outputs ports.OutputSource, opts ...LoopOption) Definition {
	return Definition{
		Name:        LoopName,
		Description: "Run the nested actions repeatedly until the stop condition holds",
		Schema:      LoopSchema,
		Container:   true,
		Build: func(inputs map[string]any, body *List) (Action, error) {
			var in LoopInput
			if err := decodeInputs(inputs, &in); err != nil {
				return nil, fmt.Errorf("decode loop inputs: %w", err)
			}
			return NewLoop(in, outputs, body, opts...)
		},
	}
}

func (l *LoopAction) Name() string        { return LoopName }
func (l *LoopAction) Description() string { return "loop until " + l.cond.String() }

// Input returns the bound inputs.
func (l *LoopAction) Input() LoopInput { return l.input }

// Body returns the nested action list.
func (l *LoopAction) Body() *List { return l.body }

// Result reports how the last run ended.
func (l *LoopAction) Result() LoopResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Run evaluates the stop condition, runs the body and waits, until the condition holds.
// Expression errors and body failures end the loop and are returned unchanged.
func (l *LoopAction) Run(ctx context.Context) error {
	interval := time.Duration(l.input.LoopIntervalTime) * time.Second

	for i := 0; ; i++ {
		vars, err := l.outputs.OutputDict(ctx)
		if err != nil {
			l.finish(i, TerminatedByError)
			return fmt.Errorf("read output mapping: %w", err)
		}

		stop, err := l.cond.Eval(vars)
		if err != nil {
			l.finish(i, TerminatedByError)
			return err
		}

		l.logger.Debug("loop condition evaluated", "iteration", i, "condition", l.cond.String(), "stop", stop)
		if l.hooks.OnLoopIteration != nil {
			l.hooks.OnLoopIteration(ctx, &domain.LoopEvent{
				EventBase: domain.NewEventBase(domain.EventLoopIteration),
				Action:    LoopName,
				Iteration: i,
				Stop:      stop,
			})
		}

		if stop {
			l.finish(i, TerminatedByCondition)
			return nil
		}

		if l.maxIterations > 0 && i >= l.maxIterations {
			l.finish(i, TerminatedByMaxIterations)
			return fmt.Errorf("%w (%d)", ErrMaxIterations, l.maxIterations)
		}

		if err := l.body.Run(ctx); err != nil {
			l.finish(i+1, TerminatedByError)
			return err
		}

		if interval > 0 {
			if err := l.sleep(ctx, interval); err != nil {
				l.finish(i+1, TerminatedByError)
				return err
			}
		} else if err := ctx.Err(); err != nil {
			l.finish(i+1, TerminatedByError)
			return err
		}
	}
}

func (l *LoopAction) finish(iterations int, reason string) {
	l.mu.Lock()
	l.result = LoopResult{Iterations: iterations, TerminatedBy: reason}
	l.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
