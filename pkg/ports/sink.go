package ports

import (
	"context"

	"github.com/aretw0/automate/pkg/domain"
)

// ConversationSink appends a message bubble to the transcript.
type ConversationSink interface {
	NewConversation(ctx context.Context, msg domain.Message) error
}

// SinkFunc adapts a function to the ConversationSink interface.
type SinkFunc func(ctx context.Context, msg domain.Message) error

func (f SinkFunc) NewConversation(ctx context.Context, msg domain.Message) error {
	return f(ctx, msg)
}

// MultiSink fans a message out to several sinks, stopping at the first error.
type MultiSink []ConversationSink

func (m MultiSink) NewConversation(ctx context.Context, msg domain.Message) error {
	for _, s := range m {
		if err := s.NewConversation(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
