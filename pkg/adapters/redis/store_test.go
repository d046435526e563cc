package redis_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/automate/pkg/adapters/redis"
	"github.com/aretw0/automate/pkg/expr"
	"github.com/aretw0/automate/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOutputs(t *testing.T) (*redis.Outputs, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, redis.WithKey("test:outputs")), mr
}

func TestRedisOutputs_Contract(t *testing.T) {
	outputs, _ := newOutputs(t)
	ports.RunOutputSourceContract(t, outputs, func(t *testing.T, values map[string]any) {
		require.NoError(t, outputs.Replace(context.Background(), values))
	})
}

func TestRedisOutputs_TypedValues(t *testing.T) {
	outputs, mr := newOutputs(t)
	ctx := context.Background()

	require.NoError(t, outputs.Set(ctx, "done", true))
	require.NoError(t, outputs.Set(ctx, "count", 3))
	mr.HSet("test:outputs", "status", "raw text")

	got, err := outputs.OutputDict(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, got["done"])
	assert.Equal(t, json.Number("3"), got["count"])
	assert.Equal(t, "raw text", got["status"])
}

func TestRedisOutputs_LargeIntegersStayExact(t *testing.T) {
	outputs, mr := newOutputs(t)
	ctx := context.Background()

	const id = int64(1<<60 + 1)
	require.NoError(t, outputs.Set(ctx, "id", id))
	mr.HSet("test:outputs", "pair", "1 2")

	got, err := outputs.OutputDict(ctx)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1152921504606846977"), got["id"])
	assert.Equal(t, "1 2", got["pair"], "trailing data is read as a plain string")

	stop, err := expr.MustCompile("id == 1152921504606846977").Eval(got)
	require.NoError(t, err)
	assert.True(t, stop)
}

func TestRedisOutputs_Unreachable(t *testing.T) {
	outputs, mr := newOutputs(t)
	require.NoError(t, outputs.Ping(context.Background()))
	mr.Close()

	_, err := outputs.OutputDict(context.Background())
	assert.Error(t, err)
}
