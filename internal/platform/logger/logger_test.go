package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWritesJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Build(Config{Level: "debug", Component: "server"}, &buf)

	l.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "server", line["component"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "v", line["k"])
}

func TestBuildDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := Build(Config{Level: "bogus"}, &buf)

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
