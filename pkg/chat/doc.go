// Package chat routes user input for one conversation: the "/" action picker,
// slash commands that run registered actions, and natural-language requests
// that go to the agent through a worker dispatcher.
package chat
