package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/muesli/termenv"
)

// Sink prints conversation messages to a terminal.
// System messages are rendered as markdown; user messages are echoed with a prompt marker.
// Safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	out      *termenv.Output
	render   func(string) (string, error)
	echoUser bool
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithRenderer replaces the markdown renderer.
func WithRenderer(render func(string) (string, error)) SinkOption {
	return func(s *Sink) {
		s.render = render
	}
}

// WithUserEcho prints user messages too. Interactive sessions leave it off
// because the terminal already shows what was typed.
func WithUserEcho(echo bool) SinkOption {
	return func(s *Sink) {
		s.echoUser = echo
	}
}

// NewSink creates a terminal sink writing to w.
func NewSink(w io.Writer, opts ...SinkOption) *Sink {
	s := &Sink{
		out:    termenv.NewOutput(w),
		render: PlainRenderer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewConversation writes one message bubble.
func (s *Sink) NewConversation(ctx context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Role == domain.RoleUser {
		if !s.echoUser {
			return nil
		}
		_, err := fmt.Fprintf(s.out, "%s %s\n", s.out.String(">").Bold(), msg.Text)
		return err
	}

	text := msg.Text
	if msg.IsError {
		_, err := fmt.Fprintln(s.out, s.out.String("✗ "+text).Foreground(s.out.Color("1")))
		return err
	}

	rendered, err := s.render(text)
	if err != nil {
		rendered = text
	}
	_, err = fmt.Fprintln(s.out, strings.TrimRight(rendered, "\n"))
	return err
}
