package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_NewConversation(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, WithRenderer(func(s string) (string, error) {
		return "[" + s + "]\n\n", nil
	}))
	ctx := context.Background()

	require.NoError(t, sink.NewConversation(ctx, domain.NewMessage("typed", domain.RoleUser)))
	require.NoError(t, sink.NewConversation(ctx, domain.NewMessage("answer", domain.RoleSystem)))

	errMsg := domain.NewMessage("it broke", domain.RoleSystem)
	errMsg.IsError = true
	require.NoError(t, sink.NewConversation(ctx, errMsg))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[answer]", lines[0])
	assert.Contains(t, lines[1], "it broke")
}

func TestSink_UserEcho(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, WithUserEcho(true))

	require.NoError(t, sink.NewConversation(context.Background(), domain.NewMessage("hello", domain.RoleUser)))

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), ">")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.0.0")
	assert.Contains(t, buf.String(), "v1.0.0")
}
