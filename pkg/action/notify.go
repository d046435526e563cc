package action

import (
	"context"
	"fmt"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/schema"
)

// NotifyName is the registry name of the notify action.
const NotifyName = "notify"

// NotifyInput holds the declared inputs of the notify action.
type NotifyInput struct {
	Text string `mapstructure:"text"`
}

// NotifyAction posts a system message to the conversation.
type NotifyAction struct {
	input NotifyInput
	sink  ports.ConversationSink
}

// NotifyDefinition returns the registry definition of the notify action.
func NotifyDefinition(sink ports.ConversationSink) Definition {
	return Definition{
		Name:        NotifyName,
		Description: "Post a message to the conversation",
		Schema: schema.Schema{
			{Name: "text", Type: schema.String(), Title: "Text", Description: "Message to post"},
		},
		Build: func(inputs map[string]any, _ *List) (Action, error) {
			var in NotifyInput
			if err := decodeInputs(inputs, &in); err != nil {
				return nil, fmt.Errorf("decode notify inputs: %w", err)
			}
			return &NotifyAction{input: in, sink: sink}, nil
		},
	}
}

func (a *NotifyAction) Name() string        { return NotifyName }
func (a *NotifyAction) Description() string { return "notify: " + a.input.Text }

func (a *NotifyAction) Run(ctx context.Context) error {
	return a.sink.NewConversation(ctx, domain.NewMessage(a.input.Text, domain.RoleSystem))
}
