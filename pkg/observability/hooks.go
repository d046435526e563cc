package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/automate/pkg/domain"
)

// LoggingHooks logs every lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) {
			logger.Info("task_start", "task_id", e.TaskID)
		},
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			if e.Err != nil {
				logger.Warn("task_finish", "task_id", e.TaskID, "status", e.Status, "error", e.Err)
				return
			}
			logger.Info("task_finish", "task_id", e.TaskID, "status", e.Status)
		},
		OnMessage: func(ctx context.Context, e *domain.MessageEvent) {
			logger.Debug("message", "task_id", e.TaskID, "role", e.Role, "is_error", e.IsError)
		},
		OnLoopIteration: func(ctx context.Context, e *domain.LoopEvent) {
			logger.Debug("loop_iteration", "action", e.Action, "iteration", e.Iteration, "stop", e.Stop)
		},
	}
}

// Combine calls every non-nil hook of each set in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnTaskStart = chain(out.OnTaskStart, h.OnTaskStart)
		out.OnTaskFinish = chain(out.OnTaskFinish, h.OnTaskFinish)
		out.OnMessage = chain(out.OnMessage, h.OnMessage)
		out.OnLoopIteration = chain(out.OnLoopIteration, h.OnLoopIteration)
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}
