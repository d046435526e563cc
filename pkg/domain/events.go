package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTaskStart     EventType = "task_start"
	EventTaskFinish    EventType = "task_finish"
	EventMessage       EventType = "message"
	EventLoopIteration EventType = "loop_iteration"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TaskEvent represents a worker task lifecycle transition.
type TaskEvent struct {
	EventBase
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	Err    error  `json:"-"`
}

// MessageEvent represents a message emitted to the conversation sink.
type MessageEvent struct {
	EventBase
	TaskID  string `json:"task_id"`
	Role    Role   `json:"role"`
	IsError bool   `json:"is_error,omitempty"`
}

// LoopEvent represents one evaluated iteration of a loop action.
type LoopEvent struct {
	EventBase
	Action    string `json:"action"`
	Iteration int    `json:"iteration"`
	Stop      bool   `json:"stop"`
}

// LifecycleHooks defines callbacks for observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnTaskStart     func(context.Context, *TaskEvent)
	OnTaskFinish    func(context.Context, *TaskEvent)
	OnMessage       func(context.Context, *MessageEvent)
	OnLoopIteration func(context.Context, *LoopEvent)
}

// NewEventBase stamps an event with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}
