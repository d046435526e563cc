/*
Package observability turns worker and loop lifecycle events into logs and metrics.

Hooks built here are plain domain.LifecycleHooks values, so they can be passed to
the worker and loop options directly and combined with Combine.
*/
package observability
