package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/action"
	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/registry"
	"github.com/aretw0/automate/pkg/schema"
	"github.com/aretw0/automate/pkg/worker"
)

// DefaultWelcome is the greeting posted when a session opens.
const DefaultWelcome = "**Hi, I'm your automation assistant!**\n\nType `/` to search actions, or just tell me what you need."

// Outcome classifies how an input was handled.
type Outcome int

const (
	// OutcomeIgnored means the input was blank.
	OutcomeIgnored Outcome = iota
	// OutcomeSuggestions means the input opened the action picker.
	OutcomeSuggestions
	// OutcomeCommand means a slash command was started.
	OutcomeCommand
	// OutcomeSubmitted means the input was sent to the agent.
	OutcomeSubmitted
)

// Response reports the effect of one input.
type Response struct {
	Outcome     Outcome
	Suggestions []domain.ActionInfo
	// Task is set for OutcomeSubmitted.
	Task *worker.Task
	// Action is set for OutcomeCommand.
	Action action.Action
}

// Session is one conversation: it routes user input to the action picker,
// slash commands or the agent, and posts everything to the sink.
type Session struct {
	registry   *registry.Registry
	dispatcher *worker.Dispatcher
	sink       ports.ConversationSink
	logger     *slog.Logger
	welcome    string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithWelcome replaces the greeting.
func WithWelcome(text string) Option {
	return func(s *Session) {
		s.welcome = text
	}
}

// NewSession creates a session. Background work started by the session lives
// until Close, independently of the context passed to HandleInput.
func NewSession(reg *registry.Registry, dispatcher *worker.Dispatcher, sink ports.ConversationSink, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		registry:   reg,
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logging.NewNop(),
		welcome:    DefaultWelcome,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Welcome posts the greeting.
func (s *Session) Welcome(ctx context.Context) error {
	return s.sink.NewConversation(ctx, domain.NewMessage(s.welcome, domain.RoleSystem))
}

// Suggest lists the actions matching query, in registration order.
func (s *Session) Suggest(query string) []domain.ActionInfo {
	defs := s.registry.Search(query)
	out := make([]domain.ActionInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.Info())
	}
	return out
}

// HandleInput routes one line of user input.
//
// "/" alone or followed by a single word opens the picker. "/name key=value ..."
// runs a registered action in the background. Anything else goes to the agent.
// Errors are returned for input that cannot be routed; failures of the work
// started here are posted to the conversation instead.
func (s *Session) HandleInput(ctx context.Context, text string) (Response, error) {
	clean, err := SanitizeInput(text)
	if err != nil {
		return Response{}, err
	}
	trimmed := strings.TrimSpace(clean)
	if trimmed == "" {
		return Response{Outcome: OutcomeIgnored}, nil
	}

	if strings.HasPrefix(trimmed, "/") {
		cmd, err := ParseCommand(trimmed)
		if err != nil {
			return Response{}, err
		}
		if cmd.Bare {
			return Response{Outcome: OutcomeSuggestions, Suggestions: s.Suggest(cmd.Name)}, nil
		}
		return s.runCommand(ctx, trimmed, cmd)
	}

	task, err := s.dispatcher.Submit(s.ctx, trimmed)
	if err != nil {
		return Response{}, err
	}
	return Response{Outcome: OutcomeSubmitted, Task: task}, nil
}

func (s *Session) runCommand(ctx context.Context, text string, cmd Command) (Response, error) {
	def, ok := s.registry.Get(cmd.Name)
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", domain.ErrActionNotFound, cmd.Name)
	}

	a, err := def.New(coerceInputs(def.Schema, cmd))
	if err != nil {
		return Response{}, err
	}

	if err := s.sink.NewConversation(ctx, domain.NewMessage(text, domain.RoleUser)); err != nil {
		return Response{}, fmt.Errorf("post user message: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("running action", "action", cmd.Name)

		msg := domain.NewMessage(cmd.Name+" done", domain.RoleSystem)
		if runErr := a.Run(s.ctx); runErr != nil {
			s.logger.Error("action failed", "action", cmd.Name, "error", runErr)
			msg = domain.NewMessage(fmt.Sprintf("%s failed: %v", cmd.Name, runErr), domain.RoleSystem)
			msg.IsError = true
		}
		if err := s.sink.NewConversation(s.ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("failed to post action result", "action", cmd.Name, "error", err)
		}
	}()

	return Response{Outcome: OutcomeCommand, Action: a}, nil
}

// coerceInputs keeps string-typed inputs as typed, so stop_condition=False stays a string.
func coerceInputs(s schema.Schema, cmd Command) map[string]any {
	out := make(map[string]any, len(cmd.Inputs))
	for key, value := range cmd.Inputs {
		if f, ok := s.Lookup(key); ok {
			if _, isString := f.Type.(*schema.StringType); isString {
				out[key] = cmd.Raw[key]
				continue
			}
		}
		out[key] = value
	}
	return out
}

// Wait blocks until every command and agent task started so far has finished.
func (s *Session) Wait() {
	s.wg.Wait()
	s.dispatcher.Wait()
}

// Close cancels background work and waits for it to stop.
func (s *Session) Close() {
	s.cancel()
	s.Wait()
}
