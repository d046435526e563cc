package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
)

// ErrBusy is returned by a PolicyReject dispatcher while a task is in flight.
var ErrBusy = errors.New("a request is already running")

// Policy controls how submissions overlap.
type Policy string

const (
	// PolicyConcurrent starts every submission immediately.
	PolicyConcurrent Policy = "concurrent"
	// PolicyReject allows one task at a time and refuses the rest.
	PolicyReject Policy = "reject"
	// PolicyQueue allows one task at a time and runs the rest in submission order.
	PolicyQueue Policy = "queue"
)

// ParsePolicy validates a policy name. The empty string selects PolicyConcurrent.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyConcurrent:
		return PolicyConcurrent, nil
	case PolicyReject, PolicyQueue:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown dispatch policy %q", s)
}

type pending struct {
	ctx  context.Context
	task *Task
}

// Dispatcher turns user submissions into worker tasks.
type Dispatcher struct {
	agent ports.Agent
	sink  ports.ConversationSink
	opts  []Option
	settings

	submitMu sync.Mutex

	mu     sync.Mutex
	active int
	queue  []pending
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Options are also applied to every task.
func NewDispatcher(agent ports.Agent, sink ports.ConversationSink, opts ...Option) *Dispatcher {
	return &Dispatcher{
		agent:    agent,
		sink:     sink,
		opts:     opts,
		settings: newSettings(opts),
	}
}

// Policy returns the submission policy in effect.
func (d *Dispatcher) Policy() Policy { return d.policy }

// Submit posts text as a user message and starts a task for it.
// Under PolicyQueue the returned task may still be idle.
func (d *Dispatcher) Submit(ctx context.Context, text string) (*Task, error) {
	d.submitMu.Lock()
	defer d.submitMu.Unlock()

	if d.policy == PolicyReject && d.InFlight() > 0 {
		return nil, ErrBusy
	}

	task := NewTask(d.agent, d.sink, text, d.opts...)

	msg := domain.NewMessage(text, domain.RoleUser)
	msg.TaskID = task.ID()
	if err := d.sink.NewConversation(ctx, msg); err != nil {
		return nil, fmt.Errorf("post user message: %w", err)
	}

	d.mu.Lock()
	startNow := d.policy == PolicyConcurrent || d.active == 0
	if startNow {
		d.active++
	} else {
		d.queue = append(d.queue, pending{ctx: ctx, task: task})
	}
	d.wg.Add(1)
	d.mu.Unlock()

	if !startNow {
		d.logger.Debug("task queued", "task_id", task.ID())
		return task, nil
	}
	d.launch(ctx, task)
	return task, nil
}

// Wait blocks until every started and queued task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// InFlight reports the number of running tasks.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *Dispatcher) launch(ctx context.Context, task *Task) {
	// A fresh task cannot already be started.
	_ = task.Start(ctx)
	go func() {
		<-task.Done()
		if next, ok := d.release(); ok {
			d.launch(next.ctx, next.task)
		}
		d.wg.Done()
	}()
}

// release frees a slot and hands it to the next queued task, if any.
func (d *Dispatcher) release() (pending, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active--
	if len(d.queue) == 0 {
		return pending{}, false
	}
	next := d.queue[0]
	d.queue = d.queue[1:]
	d.active++
	return next, true
}
