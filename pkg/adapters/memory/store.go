package memory

import (
	"context"
	"maps"
	"sync"
)

// Outputs implements ports.OutputSource in memory.
// Safe for concurrent use.
type Outputs struct {
	data map[string]any
	mu   sync.RWMutex
}

// NewOutputs creates an output mapping seeded with a copy of initial.
func NewOutputs(initial map[string]any) *Outputs {
	data := make(map[string]any, len(initial))
	maps.Copy(data, initial)
	return &Outputs{data: data}
}

// OutputDict returns a snapshot of the mapping. The caller owns the returned map.
func (o *Outputs) OutputDict(ctx context.Context) (map[string]any, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return maps.Clone(o.data), nil
}

// Set stores a single value.
func (o *Outputs) Set(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data[key] = value
}

// Delete removes a value.
func (o *Outputs) Delete(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.data, key)
}

// Replace swaps the whole mapping for a copy of values.
func (o *Outputs) Replace(values map[string]any) {
	data := make(map[string]any, len(values))
	maps.Copy(data, values)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.data = data
}
