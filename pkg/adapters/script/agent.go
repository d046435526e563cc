package script

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/aretw0/automate/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Executor runs a named action with inputs and reports its observation.
type Executor interface {
	Execute(ctx context.Context, name string, inputs map[string]any) (any, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, name string, inputs map[string]any) (any, error)

func (f ExecutorFunc) Execute(ctx context.Context, name string, inputs map[string]any) (any, error) {
	return f(ctx, name, inputs)
}

// StepSpec is one scripted agent step. Either Tool or Output is set.
type StepSpec struct {
	Tool        string         `yaml:"tool"`
	Input       map[string]any `yaml:"input"`
	Observation any            `yaml:"observation"`
	// Run executes Tool through the Executor; its result replaces Observation.
	Run    bool   `yaml:"run"`
	Output string `yaml:"output"`
	// Fail ends the run with this error message.
	Fail string `yaml:"fail"`
}

// Reply is the scripted answer to requests containing Match.
// An empty Match answers every request.
type Reply struct {
	Match string     `yaml:"match"`
	Steps []StepSpec `yaml:"steps"`
}

// File represents the structure of a script file.
type File struct {
	Replies []Reply `yaml:"replies"`
}

// Agent is a deterministic ports.Agent driven by a script.
// Requests that match no reply are echoed back as a final answer.
type Agent struct {
	replies  []Reply
	delay    time.Duration
	executor Executor
}

// Option configures the agent.
type Option func(*Agent)

// WithStepDelay pauses before every step.
func WithStepDelay(d time.Duration) Option {
	return func(a *Agent) {
		a.delay = d
	}
}

// WithExecutor lets steps marked run execute real actions.
func WithExecutor(e Executor) Option {
	return func(a *Agent) {
		a.executor = e
	}
}

// New creates an agent from replies.
func New(replies []Reply, opts ...Option) *Agent {
	a := &Agent{replies: replies}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load reads a YAML script file. An empty path yields an echo-only agent.
func Load(path string, opts ...Option) (*Agent, error) {
	if path == "" {
		return New(nil, opts...), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent script: %w", err)
	}
	return Parse(data, opts...)
}

// Parse decodes a YAML script.
func Parse(data []byte, opts ...Option) (*Agent, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse agent script: %w", err)
	}
	for i, r := range f.Replies {
		for j, s := range r.Steps {
			if s.Tool == "" && s.Output == "" && s.Fail == "" {
				return nil, fmt.Errorf("reply %d step %d: one of tool, output or fail is required", i, j)
			}
		}
	}
	return New(f.Replies, opts...), nil
}

// Iter yields the steps of the first reply whose Match occurs in text (case-insensitive).
func (a *Agent) Iter(ctx context.Context, text string) iter.Seq2[domain.Step, error] {
	return func(yield func(domain.Step, error) bool) {
		reply, ok := a.match(text)
		if !ok {
			if err := a.pause(ctx); err != nil {
				yield(domain.Step{}, err)
				return
			}
			yield(domain.Step{Output: "I don't have an automation for: " + text}, nil)
			return
		}

		for _, spec := range reply.Steps {
			if err := a.pause(ctx); err != nil {
				yield(domain.Step{}, err)
				return
			}
			step, err := a.step(ctx, spec)
			if !yield(step, err) || err != nil {
				return
			}
		}
	}
}

func (a *Agent) match(text string) (Reply, bool) {
	lower := strings.ToLower(text)
	for _, r := range a.replies {
		if strings.Contains(lower, strings.ToLower(r.Match)) {
			return r, true
		}
	}
	return Reply{}, false
}

func (a *Agent) step(ctx context.Context, spec StepSpec) (domain.Step, error) {
	if spec.Fail != "" {
		return domain.Step{}, errors.New(spec.Fail)
	}
	if spec.Tool == "" {
		return domain.Step{Output: spec.Output}, nil
	}

	obs := spec.Observation
	if spec.Run {
		if a.executor == nil {
			return domain.Step{}, fmt.Errorf("step %q requires an executor", spec.Tool)
		}
		result, err := a.executor.Execute(ctx, spec.Tool, spec.Input)
		if err != nil {
			return domain.Step{}, fmt.Errorf("run %s: %w", spec.Tool, err)
		}
		obs = result
	}

	return domain.Step{IntermediateSteps: []domain.IntermediateStep{{
		Action: domain.AgentAction{
			Tool:      spec.Tool,
			ToolInput: spec.Input,
			Log:       fmt.Sprintf("Invoking %s", spec.Tool),
		},
		Observation: obs,
	}}}, nil
}

func (a *Agent) pause(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
