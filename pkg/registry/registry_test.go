package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/automate/pkg/action"
	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/registry"
	"github.com/aretw0/automate/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLauncher struct{}

func (noopLauncher) Launch(ctx context.Context, path string) error { return nil }

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.NewRegistry()
	require.NoError(t, r.Register(action.LoopDefinition(ports.StaticOutput{"done": true})))
	require.NoError(t, r.Register(action.OpenApplicationDefinition(noopLauncher{})))
	return r
}

func TestRegistry_ListKeepsInsertionOrder(t *testing.T) {
	r := newRegistry(t)

	var names []string
	for _, def := range r.List() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{action.LoopName, action.OpenApplicationName}, names)
	assert.Len(t, r.Infos(), 2)
}

func TestRegistry_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	r := newRegistry(t)

	err := r.Register(action.LoopDefinition(ports.StaticOutput{}))
	assert.ErrorIs(t, err, registry.ErrDuplicateAction)

	err = r.Register(action.Definition{Name: "  ", Build: func(map[string]any, *action.List) (action.Action, error) { return nil, nil }})
	assert.Error(t, err)
	assert.Len(t, r.List(), 2)
}

func TestRegistry_New(t *testing.T) {
	r := newRegistry(t)

	t.Run("Builds Registered Action", func(t *testing.T) {
		a, err := r.New(action.LoopName, map[string]any{"stop_condition": "done"})
		require.NoError(t, err)
		assert.Equal(t, action.LoopName, a.Name())
		require.NoError(t, a.Run(context.Background()))
	})

	t.Run("Unknown Name", func(t *testing.T) {
		_, err := r.New("teleport", nil)
		assert.ErrorIs(t, err, domain.ErrActionNotFound)
	})

	t.Run("Invalid Inputs", func(t *testing.T) {
		_, err := r.New(action.LoopName, map[string]any{"loop_interval_time": -1})

		var verr *schema.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "loop_interval_time", verr.Key)
	})
}

func TestRegistry_Search(t *testing.T) {
	r := newRegistry(t)

	assert.Len(t, r.Search(""), 2)

	got := r.Search("OPEN")
	require.Len(t, got, 1)
	assert.Equal(t, action.OpenApplicationName, got[0].Name)

	assert.Empty(t, r.Search("nothing-matches"))
}

func TestRegistry_Execute(t *testing.T) {
	r := newRegistry(t)

	got, err := r.Execute(context.Background(), action.OpenApplicationName, map[string]any{"path": "editor"})
	require.NoError(t, err)
	assert.Equal(t, "open editor: done", got)

	_, err = r.Execute(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrActionNotFound)
}
