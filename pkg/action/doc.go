/*
Package action implements the automation actions a user can invoke from the chat.

An Action is a named, describable unit of work whose inputs are declared by a
schema and validated when the action is constructed. Container actions, such as
the loop, own an ordered List of nested actions that they run themselves.

# Key Components

  - Definition: Identity, input schema and constructor of an action type.
  - List: An ordered sequence of actions executed one after another.
  - LoopAction: Re-runs its nested list until a stop condition over the output mapping holds.
  - OpenApplicationAction: Launches an external program without waiting for it.
  - NotifyAction: Posts a system message to the conversation.
*/
package action
