/*
Package ports defines the driven ports (interfaces) of the automate core.

These interfaces decouple the action and worker logic from the collaborators
that surround it: the agent producing steps, the owner of the output mapping and
the UI that renders the conversation.

# Key Interfaces

  - Agent: Turns a user text into an ordered sequence of Steps.
  - OutputSource: Exposes the current output mapping used by loop stop conditions.
  - ConversationSink: Appends a rendered message to the transcript.
*/
package ports
