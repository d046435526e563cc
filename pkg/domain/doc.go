/*
Package domain contains the core models shared by the automate packages.

It defines what flows between the agent, the worker and the conversation sink,
plus the error taxonomy of the action execution model. This package is kept free
of I/O and third-party dependencies.

# Key Entities

  - Step: One item produced by the agent: an intermediate (action, observation) pair or a final output.
  - Message: A rendered chat bubble handed to a ConversationSink.
  - ActionInfo: Display metadata of an action (name, description, declared inputs).
  - Errors: ExpressionError, LaunchError and AgentIterationError.
*/
package domain
