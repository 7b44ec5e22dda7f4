package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Format: "json", Out: &buf})
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("owner", "u1").Msg("posted transaction")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "posted transaction", entry["message"])
	assert.Equal(t, "u1", entry["owner"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNew_Debug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Format: "json", Debug: true, Out: &buf})
	require.NoError(t, err)

	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Out: &buf})
	require.NoError(t, err)

	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	ctx := WithContext(context.Background(), l)

	got := FromContext(ctx)
	got.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	// Missing logger falls back to a disabled one.
	nop := FromContext(context.Background())
	nop.Info().Msg("dropped")
}
