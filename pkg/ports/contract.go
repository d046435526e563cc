package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// OutputSeeder replaces the content of the output mapping behind an OutputSource.
type OutputSeeder func(t *testing.T, values map[string]any)

// RunOutputSourceContract runs a suite of tests to verify that an OutputSource implementation
// adheres to the defined interface contract.
func RunOutputSourceContract(t *testing.T, source OutputSource, seed OutputSeeder) {
	ctx := context.Background()

	t.Run("Reads Seeded Values", func(t *testing.T) {
		seed(t, map[string]any{"status": "done", "count": 3})

		out, err := source.OutputDict(ctx)
		require.NoError(t, err)
		assert.Equal(t, "done", out["status"])
		// Numeric types may not survive every backend, only presence is required.
		assert.NotNil(t, out["count"])
	})

	t.Run("Fresh Snapshot On Every Call", func(t *testing.T) {
		seed(t, map[string]any{"status": "running"})
		first, err := source.OutputDict(ctx)
		require.NoError(t, err)

		seed(t, map[string]any{"status": "done"})
		second, err := source.OutputDict(ctx)
		require.NoError(t, err)

		assert.Equal(t, "running", first["status"])
		assert.Equal(t, "done", second["status"])
	})

	t.Run("Caller Mutation Is Isolated", func(t *testing.T) {
		seed(t, map[string]any{"status": "idle"})
		out, err := source.OutputDict(ctx)
		require.NoError(t, err)
		out["status"] = "tampered"

		again, err := source.OutputDict(ctx)
		require.NoError(t, err)
		assert.Equal(t, "idle", again["status"])
	})

	t.Run("Empty Mapping", func(t *testing.T) {
		seed(t, map[string]any{})
		out, err := source.OutputDict(ctx)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
