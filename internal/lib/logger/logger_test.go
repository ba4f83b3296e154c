package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Local(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("local", &buf)

	log.Debug("debug message")
	assert.True(t, strings.Contains(buf.String(), "msg=\"debug message\""))
}

func TestNew_DevWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("dev", &buf)

	log.Debug("hello", "key", "value")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "value", line["key"])
}

func TestNew_ProdSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("prod", &buf)

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_UnknownEnvBehavesLikeProd(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("staging", &buf)

	log.Debug("hidden")
	assert.Empty(t, buf.String())
}
