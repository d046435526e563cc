package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/automate/pkg/action"
	"github.com/aretw0/automate/pkg/domain"
)

// ErrDuplicateAction is returned when a name is registered twice.
var ErrDuplicateAction = errors.New("action already registered")

// Registry manages the available action types in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]action.Definition
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]action.Definition),
	}
}

// Register adds an action type to the registry.
// Empty names and names already present are rejected.
func (r *Registry) Register(def action.Definition) error {
	if strings.TrimSpace(def.Name) == "" {
		return errors.New("action name must not be empty")
	}
	if def.Build == nil {
		return fmt.Errorf("action %q: missing builder", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(defs ...action.Definition) *Registry {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// Get looks up an action type by name.
func (r *Registry) Get(name string) (action.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// List returns every registered action type in insertion order.
func (r *Registry) List() []action.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]action.Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Infos returns the display metadata of every action type in insertion order.
func (r *Registry) Infos() []domain.ActionInfo {
	defs := r.List()
	out := make([]domain.ActionInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.Info())
	}
	return out
}

// Search filters action types by a case-insensitive substring of the name or
// description. An empty query matches everything.
func (r *Registry) Search(query string) []action.Definition {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []action.Definition
	for _, def := range r.List() {
		if q == "" ||
			strings.Contains(strings.ToLower(def.Name), q) ||
			strings.Contains(strings.ToLower(def.Description), q) {
			out = append(out, def)
		}
	}
	return out
}

// New looks up an action type by name and constructs an instance from inputs.
// Returns domain.ErrActionNotFound if the name is unknown.
func (r *Registry) New(name string, inputs map[string]any, children ...action.Action) (action.Action, error) {
	def, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrActionNotFound, name)
	}
	return def.New(inputs, children...)
}

// Execute builds the named action from inputs and runs it to completion.
// The result is a short completion notice suitable as an agent observation.
func (r *Registry) Execute(ctx context.Context, name string, inputs map[string]any) (any, error) {
	a, err := r.New(name, inputs)
	if err != nil {
		return nil, err
	}
	if err := a.Run(ctx); err != nil {
		return nil, err
	}
	return a.Description() + ": done", nil
}
