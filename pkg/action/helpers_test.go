package action_test

import (
	"context"
	"sync"

	"github.com/aretw0/automate/pkg/action"
)

// counterAction counts its runs and optionally fails or mutates shared state.
type counterAction struct {
	mu    sync.Mutex
	runs  int
	err   error
	onRun func(run int)
}

func (c *counterAction) Name() string        { return "counter" }
func (c *counterAction) Description() string { return "counts runs" }

func (c *counterAction) Run(ctx context.Context) error {
	c.mu.Lock()
	c.runs++
	run := c.runs
	c.mu.Unlock()
	if c.onRun != nil {
		c.onRun(run)
	}
	return c.err
}

func (c *counterAction) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

// outputs is a mutable output mapping.
type outputs struct {
	mu   sync.Mutex
	vals map[string]any
}

func newOutputs(vals map[string]any) *outputs {
	return &outputs{vals: vals}
}

func (o *outputs) Set(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.vals[key] = value
}

func (o *outputs) OutputDict(ctx context.Context) (map[string]any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]any, len(o.vals))
	for k, v := range o.vals {
		out[k] = v
	}
	return out, nil
}

var _ action.Action = (*counterAction)(nil)
