package ports

import "context"

// OutputSource exposes the externally owned output mapping.
// Implementations return a fresh snapshot on every call.
type OutputSource interface {
	OutputDict(ctx context.Context) (map[string]any, error)
}

// StaticOutput is an OutputSource over a fixed map.
type StaticOutput map[string]any

func (s StaticOutput) OutputDict(ctx context.Context) (map[string]any, error) {
	return map[string]any(s), nil
}
