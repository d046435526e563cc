package domain

import (
	"errors"
	"fmt"
)

// ErrActionNotFound is returned when a requested action is not registered.
var ErrActionNotFound = errors.New("action not found")

// ExpressionError reports a stop condition that could not be parsed or evaluated.
type ExpressionError struct {
	Expr string
	Err  error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("expression %q: %v", e.Expr, e.Err)
}

func (e *ExpressionError) Unwrap() error { return e.Err }

// LaunchError reports a process that could not be spawned.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// AgentIterationError wraps any failure raised while iterating agent steps.
// Stack is only set when the failure was a recovered panic.
type AgentIterationError struct {
	TaskID string
	Step   int
	Err    error
	Stack  []byte
}

func (e *AgentIterationError) Error() string {
	return fmt.Sprintf("agent iteration failed at step %d: %v", e.Step, e.Err)
}

func (e *AgentIterationError) Unwrap() error { return e.Err }
