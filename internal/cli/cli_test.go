package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer lets the sink and the input loop write concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const agentScript = `
replies:
  - match: greet
    steps:
      - tool: notify
        input:
          text: from agent
        run: true
      - output: all done
`

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(script, []byte(agentScript), 0o644))

	cfg := "log_level: error\n" +
		"apps: " + filepath.Join(dir, "apps.yaml") + "\n" +
		"agent:\n  script: " + script + "\n"
	path := filepath.Join(dir, "automate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runChat(t *testing.T, input string) string {
	t.Helper()
	out := &syncBuffer{}
	err := RunChat(context.Background(), ChatOptions{
		ConfigPath: setupProject(t),
		In:         strings.NewReader(input),
		Out:        out,
	})
	require.NoError(t, err)
	return out.String()
}

func TestRunChat_SlashCommand(t *testing.T) {
	out := runChat(t, "/notify text=hello\n")

	assert.Contains(t, out, "automation assistant")
	assert.Contains(t, out, "> /notify text=hello")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "notify done")
}

func TestRunChat_AgentRequest(t *testing.T) {
	out := runChat(t, "please greet me\n")

	assert.Contains(t, out, "> please greet me")
	assert.Contains(t, out, "from agent")
	assert.Contains(t, out, "all done")
	assert.Less(t, strings.Index(out, "from agent"), strings.Index(out, "all done"))
}

func TestRunChat_Picker(t *testing.T) {
	out := runChat(t, "/\n/op\n")

	assert.Contains(t, out, "/loop")
	assert.Contains(t, out, "/notify")
	assert.Contains(t, out, "/open_application")
}

func TestRunChat_UnknownAction(t *testing.T) {
	out := runChat(t, "/nope x=1\n/nope\n")
	assert.Contains(t, out, ">>> action not found: nope")
	assert.Contains(t, out, ">>> No matching actions.")
}

func TestRunChat_Exit(t *testing.T) {
	out := runChat(t, "exit\n/notify text=never\n")

	assert.Contains(t, out, "Bye!")
	assert.NotContains(t, out, "never")
}

func TestRunChat_BadConfig(t *testing.T) {
	err := RunChat(context.Background(), ChatOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		In:         strings.NewReader(""),
		Out:        &syncBuffer{},
	})
	assert.Error(t, err)
}

func TestListActions(t *testing.T) {
	path := setupProject(t)

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ListActions(context.Background(), ActionsOptions{ConfigPath: path, JSON: true, Out: &buf}))

		var infos []domain.ActionInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
		require.Len(t, infos, 3)
		assert.Equal(t, "loop", infos[0].Name)
		assert.Equal(t, "open_application", infos[1].Name)
		assert.Equal(t, "notify", infos[2].Name)
	})

	t.Run("Query", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ListActions(context.Background(), ActionsOptions{ConfigPath: path, Query: "loop", Out: &buf}))

		out := buf.String()
		assert.Contains(t, out, "/loop")
		assert.Contains(t, out, "stop_condition (string)")
		assert.NotContains(t, out, "/notify")
	})
}

func TestBuildStack_RedisUnreachable(t *testing.T) {
	path := setupProject(t)
	t.Setenv("AUTOMATE_REDIS_ADDR", "127.0.0.1:1")

	err := RunChat(context.Background(), ChatOptions{
		ConfigPath: path,
		In:         strings.NewReader(""),
		Out:        &syncBuffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestIsInterrupted(t *testing.T) {
	assert.True(t, isInterrupted(context.Canceled))
	assert.False(t, isInterrupted(nil))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.Error(t, handleExecutionError(assert.AnError))
}
