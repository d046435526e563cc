package worker_test

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"testing"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_StreamsStepsInOrder(t *testing.T) {
	sink := &recorder{}
	task := worker.NewTask(scripted(nil, intermediate("A", "x"), output("done```")), sink, "hi")
	assert.Equal(t, worker.StatusIdle, task.Status())

	require.NoError(t, task.Start(context.Background()))
	require.NoError(t, task.Wait())

	assert.Equal(t, worker.StatusCompleted, task.Status())
	msgs := sink.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "A \nx", msgs[0].Text)
	assert.Equal(t, "done", msgs[1].Text)
	for _, m := range msgs {
		assert.Equal(t, domain.RoleSystem, m.Role)
		assert.Equal(t, task.ID(), m.TaskID)
		assert.False(t, m.IsError)
	}
}

func TestTask_EmptyStepEmitsEmptyMessage(t *testing.T) {
	sink := &recorder{}
	task := worker.NewTask(scripted(nil, domain.Step{}), sink, "hi")

	require.NoError(t, task.Start(context.Background()))
	require.NoError(t, task.Wait())

	assert.Equal(t, []string{""}, sink.Texts(domain.RoleSystem))
}

func TestTask_FailureMidway(t *testing.T) {
	t.Run("Surfaces Error Once", func(t *testing.T) {
		sink := &recorder{}
		task := worker.NewTask(scripted(errAgent, intermediate("A", "x")), sink, "hi")

		require.NoError(t, task.Start(context.Background()))
		err := task.Wait()

		var iterErr *domain.AgentIterationError
		require.True(t, errors.As(err, &iterErr))
		assert.ErrorIs(t, err, errAgent)
		assert.Equal(t, 1, iterErr.Step)
		assert.Equal(t, worker.StatusFailed, task.Status())

		msgs := sink.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "A \nx", msgs[0].Text)
		assert.True(t, msgs[1].IsError)
		assert.Contains(t, msgs[1].Text, "agent exploded")
	})

	t.Run("Swallow Policy Only Logs", func(t *testing.T) {
		sink := &recorder{}
		task := worker.NewTask(scripted(errAgent, intermediate("A", "x")), sink, "hi",
			worker.WithErrorPolicy(worker.SwallowErrors))

		require.NoError(t, task.Start(context.Background()))
		assert.ErrorIs(t, task.Wait(), errAgent)

		assert.Equal(t, []string{"A \nx"}, sink.Texts(domain.RoleSystem))
	})
}

func TestTask_RecoversPanic(t *testing.T) {
	agent := ports.AgentFunc(func(ctx context.Context, text string) iter.Seq2[domain.Step, error] {
		return func(yield func(domain.Step, error) bool) {
			if !yield(output("first"), nil) {
				return
			}
			panic("kaboom")
		}
	})
	sink := &recorder{}
	task := worker.NewTask(agent, sink, "hi")

	require.NoError(t, task.Start(context.Background()))
	err := task.Wait()

	var iterErr *domain.AgentIterationError
	require.True(t, errors.As(err, &iterErr))
	assert.NotEmpty(t, iterErr.Stack)
	assert.Contains(t, err.Error(), "kaboom")

	msgs := sink.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.True(t, msgs[1].IsError)
}

func TestTask_SinkFailureStopsRun(t *testing.T) {
	sinkErr := errors.New("sink closed")
	sink := &recorder{err: sinkErr}
	task := worker.NewTask(scripted(nil, output("a"), output("b")), sink, "hi")

	require.NoError(t, task.Start(context.Background()))
	err := task.Wait()

	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, worker.StatusFailed, task.Status())
}

func TestTask_StartTwice(t *testing.T) {
	task := worker.NewTask(scripted(nil), &recorder{}, "hi")

	require.NoError(t, task.Start(context.Background()))
	assert.ErrorIs(t, task.Start(context.Background()), worker.ErrTaskStarted)
	require.NoError(t, task.Wait())
}

func TestTask_Hooks(t *testing.T) {
	var starts, finishes, messages atomic.Int32
	var finalStatus atomic.Value
	hooks := domain.LifecycleHooks{
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) { starts.Add(1) },
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			finishes.Add(1)
			finalStatus.Store(e.Status)
		},
		OnMessage: func(ctx context.Context, e *domain.MessageEvent) { messages.Add(1) },
	}

	task := worker.NewTask(scripted(nil, output("a"), output("b")), &recorder{}, "hi", worker.WithHooks(hooks))
	require.NoError(t, task.Start(context.Background()))
	require.NoError(t, task.Wait())

	assert.Equal(t, int32(1), starts.Load())
	assert.Equal(t, int32(1), finishes.Load())
	assert.Equal(t, int32(2), messages.Load())
	assert.Equal(t, string(worker.StatusCompleted), finalStatus.Load())
}
