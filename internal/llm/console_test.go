package llm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleDecider_ReadsLines(t *testing.T) {
	var out bytes.Buffer
	d := NewConsoleDecider(strings.NewReader("{\"action\":\"wait\",\"timeout\":10}\n{\"action\":\"finish\"}"), &out)

	first, err := d.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `{"action":"wait","timeout":10}`, first)

	second, err := d.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `{"action":"finish"}`, second)

	assert.Equal(t, "next action:next action:", out.String())

	_, err = d.Decide(context.Background(), Request{})
	assert.Error(t, err)
}

func TestConsoleDecider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewConsoleDecider(strings.NewReader("x\n"), &bytes.Buffer{})
	_, err := d.Decide(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
