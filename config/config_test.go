package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultEngineHost, c.EngineHost)
	assert.Equal(t, defaultEnginePort, c.EnginePort)
	assert.Equal(t, defaultEngineFeedbackPort, c.EngineFeedbackPort)
	assert.Equal(t, defaultNATSURL, c.NATSURL)
	assert.Equal(t, defaultBusCommandSubject, c.BusCommandSubject)
	assert.Equal(t, defaultBusPublishSubject, c.BusPublishSubject)
	assert.Equal(t, defaultBusHealthSubject, c.BusHealthSubject)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MOD_HOST_HOST", "10.0.0.5")
	t.Setenv("MOD_HOST_PORT", "7777")
	t.Setenv("MOD_HOST_FEEDBACK_PORT", "7778")
	t.Setenv("MODHOST_BRIDGE_REP", "tcp://0.0.0.0:9000")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", c.EngineHost)
	assert.Equal(t, 7777, c.EnginePort)
	assert.Equal(t, 7778, c.EngineFeedbackPort)
	assert.Equal(t, "tcp://0.0.0.0:9000", c.BusCommandSubject)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("MOD_HOST_PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
