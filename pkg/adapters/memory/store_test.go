package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/automate/pkg/adapters/memory"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputs_Contract(t *testing.T) {
	outputs := memory.NewOutputs(nil)
	ports.RunOutputSourceContract(t, outputs, func(t *testing.T, values map[string]any) {
		outputs.Replace(values)
	})
}

func TestOutputs_SetAndDelete(t *testing.T) {
	seed := map[string]any{"status": "idle"}
	outputs := memory.NewOutputs(seed)
	seed["status"] = "mutated"

	outputs.Set("count", 2)
	outputs.Delete("missing")

	got, err := outputs.OutputDict(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "idle", "count": 2}, got)

	outputs.Delete("status")
	got, err = outputs.OutputDict(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 2}, got)
}
