package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorbell/internal/lib/sl"
)

func TestSetup_Local(t *testing.T) {
	var buf bytes.Buffer
	log := setup(EnvLocal, &buf)

	log.Debug("motion detected", sl.Err(errors.New("boom")))

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="motion detected"`)
	assert.Contains(t, buf.String(), "error=boom")
}

func TestSetup_ProdIsJSONAndSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := setup(EnvProd, &buf)

	log.Debug("hidden")
	log.Info("clip saved")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "clip saved", line["msg"])
	assert.Equal(t, "INFO", line["level"])
}

func TestSetup_Dev(t *testing.T) {
	var buf bytes.Buffer
	log := setup(EnvDev, &buf)

	log.Debug("poll")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "DEBUG", line["level"])
}
