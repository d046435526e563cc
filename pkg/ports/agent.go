package ports

import (
	"context"
	"iter"

	"github.com/aretw0/automate/pkg/domain"
)

// Agent translates a user request into agent steps.
// The sequence yields steps in execution order; a non-nil error ends the run.
type Agent interface {
	Iter(ctx context.Context, text string) iter.Seq2[domain.Step, error]
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(ctx context.Context, text string) iter.Seq2[domain.Step, error]

func (f AgentFunc) Iter(ctx context.Context, text string) iter.Seq2[domain.Step, error] {
	return f(ctx, text)
}
