package domain

import "time"

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Message is one bubble of the conversation transcript.
type Message struct {
	Text    string    `json:"text"`
	Role    Role      `json:"role"`
	IsError bool      `json:"is_error,omitempty"`
	TaskID  string    `json:"task_id,omitempty"`
	Time    time.Time `json:"time"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(text string, role Role) Message {
	return Message{
		Text: text,
		Role: role,
		Time: time.Now(),
	}
}

// ActionInfo is the display metadata of an action type.
type ActionInfo struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Inputs      []InputField `json:"inputs,omitempty"`
}

// InputField describes one declared input of an action.
type InputField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
}
