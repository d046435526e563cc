package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/automate/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, worker.SurfaceErrors, cfg.ErrorPolicy())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
agent:
  script: agent.yaml
  step_delay: 250ms
dispatch:
  policy: queue
  swallow_errors: true
loop:
  max_iterations: 10
outputs:
  redis_addr: localhost:6379
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "agent.yaml", cfg.Agent.Script)
	assert.Equal(t, 250*time.Millisecond, cfg.Agent.StepDelay)
	assert.Equal(t, "queue", cfg.Dispatch.Policy)
	assert.Equal(t, worker.SwallowErrors, cfg.ErrorPolicy())
	assert.Equal(t, 10, cfg.Loop.MaxIterations)
	assert.Equal(t, "localhost:6379", cfg.Outputs.RedisAddr)
	assert.Equal(t, "automate:outputs", cfg.Outputs.RedisKey)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "dispatch:\n  policy: queue\n")
	t.Setenv("AUTOMATE_DISPATCH_POLICY", "reject")
	t.Setenv("AUTOMATE_AGENT_STEP_DELAY", "1s")
	t.Setenv("AUTOMATE_LOOP_MAX_ITERATIONS", "3")
	t.Setenv("AUTOMATE_HTTP_ADDR", ":9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "reject", cfg.Dispatch.Policy)
	assert.Equal(t, time.Second, cfg.Agent.StepDelay)
	assert.Equal(t, 3, cfg.Loop.MaxIterations)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("Bad Values", func(t *testing.T) {
		path := writeConfig(t, "log_level: loud\ndispatch:\n  policy: parallel\nloop:\n  max_iterations: -1\n")

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log_level")
		assert.Contains(t, err.Error(), "dispatch.policy")
		assert.Contains(t, err.Error(), "loop.max_iterations")
	})

	t.Run("Bad Env", func(t *testing.T) {
		t.Setenv("AUTOMATE_AGENT_STEP_DELAY", "soon")
		_, err := Load(writeConfig(t, ""))
		assert.Error(t, err)
	})

	t.Run("Explicit Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "log_level: [\n"))
		assert.Error(t, err)
	})
}
