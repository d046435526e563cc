package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/google/uuid"
)

// ErrTaskStarted is returned when Start is called twice.
var ErrTaskStarted = errors.New("task already started")

// Status is the lifecycle state of a task.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task runs a single agent request in the background.
type Task struct {
	id    string
	text  string
	agent ports.Agent
	sink  ports.ConversationSink
	settings

	mu     sync.Mutex
	status Status
	err    error
	done   chan struct{}
}

// NewTask creates an idle task for text.
func NewTask(agent ports.Agent, sink ports.ConversationSink, text string, opts ...Option) *Task {
	return &Task{
		id:       uuid.NewString(),
		text:     text,
		agent:    agent,
		sink:     sink,
		settings: newSettings(opts),
		status:   StatusIdle,
		done:     make(chan struct{}),
	}
}

func (t *Task) ID() string   { return t.id }
func (t *Task) Text() string { return t.text }

// Status returns the current lifecycle state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the failure of a finished task, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its failure.
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Start launches the agent run on a new goroutine and returns immediately.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.status != StatusIdle {
		t.mu.Unlock()
		return ErrTaskStarted
	}
	t.status = StatusRunning
	t.mu.Unlock()

	t.emitTaskEvent(ctx, domain.EventTaskStart, StatusRunning, nil)
	t.logger.Debug("task started", "task_id", t.id)

	go t.run(ctx)
	return nil
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)

	err := t.iterate(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		t.report(ctx, err)
	}

	t.mu.Lock()
	t.status = status
	t.err = err
	t.mu.Unlock()

	t.emitTaskEvent(ctx, domain.EventTaskFinish, status, err)
	t.logger.Debug("task finished", "task_id", t.id, "status", status)
}

// iterate forwards agent steps until the sequence ends or fails.
func (t *Task) iterate(ctx context.Context) (err error) {
	step := 0
	defer func() {
		if r := recover(); r != nil {
			err = &domain.AgentIterationError{
				TaskID: t.id,
				Step:   step,
				Err:    fmt.Errorf("panic: %v", r),
				Stack:  debug.Stack(),
			}
		}
	}()

	for s, iterErr := range t.agent.Iter(ctx, t.text) {
		if iterErr != nil {
			return &domain.AgentIterationError{TaskID: t.id, Step: step, Err: iterErr}
		}
		if sendErr := t.send(ctx, RenderStep(s), false); sendErr != nil {
			return &domain.AgentIterationError{
				TaskID: t.id,
				Step:   step,
				Err:    fmt.Errorf("deliver step: %w", sendErr),
			}
		}
		step++
	}
	return nil
}

// report logs a failure and, under SurfaceErrors, posts it to the conversation.
func (t *Task) report(ctx context.Context, err error) {
	attrs := []any{"task_id", t.id, "error", err}
	var iterErr *domain.AgentIterationError
	if errors.As(err, &iterErr) && iterErr.Stack != nil {
		attrs = append(attrs, "stack", string(iterErr.Stack))
	}
	t.logger.Error("agent run failed", attrs...)

	if t.errorPolicy == SwallowErrors {
		return
	}
	if sendErr := t.send(ctx, err.Error(), true); sendErr != nil {
		t.logger.Error("failed to post error message", "task_id", t.id, "error", sendErr)
	}
}

func (t *Task) send(ctx context.Context, text string, isError bool) error {
	msg := domain.NewMessage(text, domain.RoleSystem)
	msg.TaskID = t.id
	msg.IsError = isError

	if err := t.sink.NewConversation(ctx, msg); err != nil {
		return err
	}
	if t.hooks.OnMessage != nil {
		t.hooks.OnMessage(ctx, &domain.MessageEvent{
			EventBase: domain.NewEventBase(domain.EventMessage),
			TaskID:    t.id,
			Role:      msg.Role,
			IsError:   isError,
		})
	}
	return nil
}

func (t *Task) emitTaskEvent(ctx context.Context, typ domain.EventType, status Status, err error) {
	hook := t.hooks.OnTaskStart
	if typ == domain.EventTaskFinish {
		hook = t.hooks.OnTaskFinish
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.TaskEvent{
		EventBase: domain.NewEventBase(typ),
		TaskID:    t.id,
		Status:    string(status),
		Err:       err,
	})
}
