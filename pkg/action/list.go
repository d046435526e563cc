package action

import (
	"context"
	"fmt"
)

// List is an ordered sequence of actions run one after another.
// A nil List is empty.
type List struct {
	actions []Action
}

// NewList creates a list from the given actions.
func NewList(actions ...Action) *List {
	return &List{actions: append([]Action(nil), actions...)}
}

// Append adds an action at the end of the list.
func (l *List) Append(a Action) {
	l.actions = append(l.actions, a)
}

// Len returns the number of actions.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.actions)
}

// Actions returns a copy of the contained actions.
func (l *List) Actions() []Action {
	if l == nil {
		return nil
	}
	return append([]Action(nil), l.actions...)
}

// Run executes every action in order and stops at the first failure.
func (l *List) Run(ctx context.Context) error {
	if l == nil {
		return nil
	}
	for i, a := range l.actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Run(ctx); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a.Name(), err)
		}
	}
	return nil
}
