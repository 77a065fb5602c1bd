package enginecmd

import (
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/modhostbridge/health"
)

type fakeMetrics struct {
	commands int
	lastName string
	lastErr  error
}

func (m *fakeMetrics) RecordEngineCommand(command string, _ time.Duration, err error) {
	m.commands++
	m.lastName = command
	m.lastErr = err
}

func startFakeEngine(t *testing.T, reply string) (host string, port int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 4096)
		_, _ = conn.Read(buf) // read the command, ignore contents for the fake

		_, _ = conn.Write([]byte(reply))
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestSend_Success(t *testing.T) {
	host, port := startFakeEngine(t, "resp 0")

	state := health.NewState(nil, nil)
	client := New(host, port, state, nil)

	result, err := client.Send("add foo_uri 0")
	require.NoError(t, err)
	assert.Equal(t, "resp 0", result.Raw)
	assert.True(t, result.HasCode)
	assert.Equal(t, 0, result.Code)
	assert.True(t, state.Snapshot().CommandConnected)
}

func TestSend_ErrorCode(t *testing.T) {
	host, port := startFakeEngine(t, "resp -3")

	state := health.NewState(nil, nil)
	client := New(host, port, state, nil)

	result, err := client.Send("add bar_uri 1")
	require.NoError(t, err)
	assert.Equal(t, -3, result.Code)
	assert.True(t, result.HasCode)
}

func TestSend_MalformedReply(t *testing.T) {
	host, port := startFakeEngine(t, "not a resp line")

	state := health.NewState(nil, nil)
	client := New(host, port, state, nil)

	result, err := client.Send("add baz_uri 2")
	require.NoError(t, err)
	assert.False(t, result.HasCode)
}

func TestSend_ConnectionRefused(t *testing.T) {
	state := health.NewState(nil, nil)
	client := New("127.0.0.1", 1, state, nil) // reserved, unlikely to be listening

	_, err := client.Send("add foo_uri 0")
	assert.Error(t, err)
	assert.False(t, state.Snapshot().CommandConnected)
}

func TestSend_RecordsMetrics(t *testing.T) {
	host, port := startFakeEngine(t, "resp 0")

	state := health.NewState(nil, nil)
	metrics := &fakeMetrics{}
	client := New(host, port, state, metrics)

	_, err := client.Send("param_set 3 gain 0.5")
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.commands)
	assert.Equal(t, "param_set", metrics.lastName)
	assert.NoError(t, metrics.lastErr)
}

func TestSend_RecordsMetricsOnFailure(t *testing.T) {
	state := health.NewState(nil, nil)
	metrics := &fakeMetrics{}
	client := New("127.0.0.1", 1, state, metrics) // reserved, unlikely to be listening

	_, err := client.Send("add foo_uri 0")
	assert.Error(t, err)
	assert.Equal(t, 1, metrics.commands)
	assert.Error(t, metrics.lastErr)
}

func TestParseRespCode(t *testing.T) {
	tests := []struct {
		raw     string
		code    int
		hasCode bool
	}{
		{"resp 0", 0, true},
		{"resp -3", -3, true},
		{"resp 12 extra", 12, true},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		code, ok := parseRespCode(tt.raw)
		assert.Equal(t, tt.hasCode, ok, tt.raw)
		if ok {
			assert.Equal(t, tt.code, code, tt.raw)
		}
	}
}

func TestResolve_LiteralIP(t *testing.T) {
	state := health.NewState(nil, nil)
	client := New("127.0.0.1", 5555, state, nil)

	addr, err := client.resolve()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5555", addr)
}

func TestResolve_Hostname(t *testing.T) {
	state := health.NewState(nil, nil)
	client := New("localhost", 5555, state, nil)

	addr, err := client.resolve()
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(host, "127.") || host == "::1")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	assert.Equal(t, 5555, port)
}
