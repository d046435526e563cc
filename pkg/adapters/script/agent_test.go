package script_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/automate/pkg/adapters/script"
	"github.com/aretw0/automate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
replies:
  - match: open
    steps:
      - tool: open_application
        input: {path: editor}
        observation: launched
      - output: "Opened the editor"
  - match: break
    steps:
      - output: "trying"
      - fail: "model unavailable"
  - match: really
    steps:
      - tool: open_application
        input: {path: editor}
        run: true
`

func collect(t *testing.T, a *script.Agent, text string) ([]domain.Step, error) {
	t.Helper()
	var steps []domain.Step
	for s, err := range a.Iter(context.Background(), text) {
		if err != nil {
			return steps, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func TestAgent_MatchesReply(t *testing.T) {
	a, err := script.Parse([]byte(sample))
	require.NoError(t, err)

	steps, err := collect(t, a, "Please OPEN my editor")
	require.NoError(t, err)
	require.Len(t, steps, 2)

	require.Len(t, steps[0].IntermediateSteps, 1)
	assert.Equal(t, "open_application", steps[0].IntermediateSteps[0].Action.Tool)
	assert.Equal(t, "launched", steps[0].IntermediateSteps[0].Observation)
	assert.True(t, steps[1].IsFinal())
	assert.Equal(t, "Opened the editor", steps[1].Output)
}

func TestAgent_EchoesUnknownRequests(t *testing.T) {
	a, err := script.Load("")
	require.NoError(t, err)

	steps, err := collect(t, a, "make coffee")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Contains(t, steps[0].Output, "make coffee")
}

func TestAgent_FailStep(t *testing.T) {
	a, err := script.Parse([]byte(sample))
	require.NoError(t, err)

	steps, err := collect(t, a, "break it")
	assert.EqualError(t, err, "model unavailable")
	assert.Len(t, steps, 1)
}

func TestAgent_RunsThroughExecutor(t *testing.T) {
	var gotName string
	exec := script.ExecutorFunc(func(ctx context.Context, name string, inputs map[string]any) (any, error) {
		gotName = name
		return "open editor: done", nil
	})
	a, err := script.Parse([]byte(sample), script.WithExecutor(exec))
	require.NoError(t, err)

	steps, err := collect(t, a, "really")
	require.NoError(t, err)
	assert.Equal(t, "open_application", gotName)
	assert.Equal(t, "open editor: done", steps[0].IntermediateSteps[0].Observation)

	failing := script.ExecutorFunc(func(ctx context.Context, name string, inputs map[string]any) (any, error) {
		return nil, errors.New("no display")
	})
	a, err = script.Parse([]byte(sample), script.WithExecutor(failing))
	require.NoError(t, err)
	_, err = collect(t, a, "really")
	assert.ErrorContains(t, err, "no display")
}

func TestAgent_DelayHonoursContext(t *testing.T) {
	a := script.New(nil, script.WithStepDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, err := range a.Iter(ctx, "anything") {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestParse_RejectsEmptyStep(t *testing.T) {
	_, err := script.Parse([]byte("replies:\n  - match: x\n    steps:\n      - input: {a: 1}\n"))
	assert.Error(t, err)
}
