package automate

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/action"
	"github.com/aretw0/automate/pkg/adapters/memory"
	"github.com/aretw0/automate/pkg/adapters/process"
	"github.com/aretw0/automate/pkg/adapters/script"
	"github.com/aretw0/automate/pkg/chat"
	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/registry"
	"github.com/aretw0/automate/pkg/worker"
)

//go:embed VERSION
var rawVersion string

// Version is the release of this module.
var Version = strings.TrimSpace(rawVersion)

// Assistant is the high-level entry point of the library.
// It wires the action registry, the worker dispatcher and a chat session around
// an in-memory transcript.
type Assistant struct {
	registry   *registry.Registry
	transcript *memory.Transcript
	dispatcher *worker.Dispatcher
	session    *chat.Session

	agent         ports.Agent
	outputs       ports.OutputSource
	launcher      action.Launcher
	sinks         []ports.ConversationSink
	extra         []action.Definition
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	policy        worker.Policy
	errorPolicy   worker.ErrorPolicy
	maxIterations int
	welcome       string
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithAgent sets the agent that answers natural-language requests.
func WithAgent(agent ports.Agent) Option {
	return func(a *Assistant) {
		a.agent = agent
	}
}

// WithOutputs sets the output mapping read by loop stop conditions.
func WithOutputs(outputs ports.OutputSource) Option {
	return func(a *Assistant) {
		a.outputs = outputs
	}
}

// WithLauncher sets how the open-application action starts programs.
func WithLauncher(l action.Launcher) Option {
	return func(a *Assistant) {
		a.launcher = l
	}
}

// WithSink adds a sink that receives every conversation message besides the transcript.
func WithSink(sink ports.ConversationSink) Option {
	return func(a *Assistant) {
		a.sinks = append(a.sinks, sink)
	}
}

// WithActions registers additional action types after the built-in ones.
func WithActions(defs ...action.Definition) Option {
	return func(a *Assistant) {
		a.extra = append(a.extra, defs...)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithDispatchPolicy selects how overlapping requests are handled.
func WithDispatchPolicy(p worker.Policy) Option {
	return func(a *Assistant) {
		a.policy = p
	}
}

// WithErrorPolicy selects how agent failures reach the conversation.
func WithErrorPolicy(p worker.ErrorPolicy) Option {
	return func(a *Assistant) {
		a.errorPolicy = p
	}
}

// WithMaxIterations caps every loop action. Zero keeps loops unbounded.
func WithMaxIterations(n int) Option {
	return func(a *Assistant) {
		a.maxIterations = n
	}
}

// WithWelcome replaces the greeting posted by Welcome.
func WithWelcome(text string) Option {
	return func(a *Assistant) {
		a.welcome = text
	}
}

// New creates an Assistant. Without options it echoes requests, keeps outputs
// in memory and launches local programs.
func New(opts ...Option) (*Assistant, error) {
	a := &Assistant{
		transcript: memory.NewTranscript(),
		logger:     logging.NewNop(),
		policy:     worker.PolicyConcurrent,
		welcome:    chat.DefaultWelcome,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.agent == nil {
		a.agent = script.New(nil)
	}
	if a.outputs == nil {
		a.outputs = memory.NewOutputs(nil)
	}
	if a.launcher == nil {
		a.launcher = process.NewLauncher(process.WithLogger(a.logger))
	}

	sink := ports.ConversationSink(a.transcript)
	if len(a.sinks) > 0 {
		sink = append(ports.MultiSink{a.transcript}, a.sinks...)
	}

	a.registry = registry.NewRegistry()
	defs := append([]action.Definition{
		action.LoopDefinition(a.outputs,
			action.WithMaxIterations(a.maxIterations),
			action.WithLoopLogger(a.logger),
			action.WithLoopHooks(a.hooks),
		),
		action.OpenApplicationDefinition(a.launcher),
		action.NotifyDefinition(sink),
	}, a.extra...)
	for _, def := range defs {
		if err := a.registry.Register(def); err != nil {
			return nil, fmt.Errorf("register %q: %w", def.Name, err)
		}
	}

	a.dispatcher = worker.NewDispatcher(a.agent, sink,
		worker.WithLogger(a.logger),
		worker.WithHooks(a.hooks),
		worker.WithErrorPolicy(a.errorPolicy),
		worker.WithPolicy(a.policy),
	)
	a.session = chat.NewSession(a.registry, a.dispatcher, sink,
		chat.WithLogger(a.logger),
		chat.WithWelcome(a.welcome),
	)

	a.logger.Debug("assistant ready", "actions", len(defs), "policy", a.policy)
	return a, nil
}

// Registry returns the action registry.
func (a *Assistant) Registry() *registry.Registry { return a.registry }

// Transcript returns the in-memory transcript of the conversation.
func (a *Assistant) Transcript() *memory.Transcript { return a.transcript }

// Session returns the chat session.
func (a *Assistant) Session() *chat.Session { return a.session }

// Agent returns the agent answering natural-language requests.
func (a *Assistant) Agent() ports.Agent { return a.agent }

// Execute builds and runs a single action with no nested children.
// It satisfies script.Executor, so scripted agent steps can run registered actions.
func (a *Assistant) Execute(ctx context.Context, name string, inputs map[string]any) (any, error) {
	return a.registry.Execute(ctx, name, inputs)
}

// Welcome posts the greeting.
func (a *Assistant) Welcome(ctx context.Context) error {
	return a.session.Welcome(ctx)
}

// HandleInput routes one line of user input. See chat.Session.HandleInput.
func (a *Assistant) HandleInput(ctx context.Context, text string) (chat.Response, error) {
	return a.session.HandleInput(ctx, text)
}

// Wait blocks until all work started so far has finished.
func (a *Assistant) Wait() {
	a.session.Wait()
}

// Close cancels background work and waits for it to stop.
func (a *Assistant) Close() {
	a.session.Close()
}
