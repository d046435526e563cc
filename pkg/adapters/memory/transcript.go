package memory

import (
	"context"
	"sync"

	"github.com/aretw0/automate/pkg/domain"
)

// subscriberBuffer is the number of messages a slow subscriber may lag behind.
const subscriberBuffer = 64

// Transcript implements ports.ConversationSink by keeping every message in order.
// Subscribers receive each message as it is appended.
type Transcript struct {
	mu       sync.RWMutex
	messages []domain.Message
	subs     map[chan domain.Message]struct{}
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		subs: make(map[chan domain.Message]struct{}),
	}
}

// NewConversation appends msg and fans it out to subscribers.
// A subscriber whose buffer is full misses the message instead of blocking the writer.
func (t *Transcript) NewConversation(ctx context.Context, msg domain.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	for ch := range t.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.Message(nil), t.messages...)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Subscribe returns a channel of new messages and a function that ends the subscription.
func (t *Transcript) Subscribe() (<-chan domain.Message, func()) {
	ch := make(chan domain.Message, subscriberBuffer)

	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, ch)
			t.mu.Unlock()
			close(ch)
		})
	}
}
