/*
Package worker bridges an agent to the conversation.

A Task runs one agent request on its own goroutine and forwards every step to a
ConversationSink as a system message, in the order the agent produced them. A
Dispatcher turns user submissions into tasks under a concurrency policy.

Failures raised while iterating the agent, including panics, never escape the
task goroutine. They are logged, reported through Wait and, unless the
SwallowErrors policy is selected, posted once to the sink as an error message.
*/
package worker
