package dispatcher

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/modhostbridge/enginecmd"
	"github.com/c360/modhostbridge/health"
	"github.com/c360/modhostbridge/plugin"
	"github.com/c360/modhostbridge/registry"
)

type fakeReplier struct{}

func (fakeReplier) Reply(context.Context, string, func(context.Context, []byte) []byte) error {
	return nil
}

type fakeMetrics struct {
	calls []string
}

func (f *fakeMetrics) RecordDispatcherRequest(socket string, err error) {
	f.calls = append(f.calls, socket)
}

type fakeDiscovery struct {
	entries []plugin.CatalogEntry
}

func (d *fakeDiscovery) ScanAll() ([]plugin.CatalogEntry, error)         { return d.entries, nil }
func (d *fakeDiscovery) GetInfo(uri string) (*plugin.CatalogEntry, error) { return nil, nil }
func (d *fakeDiscovery) GetPresets(string) ([]plugin.Preset, error)      { return nil, nil }
func (d *fakeDiscovery) LoadPreset(string, string) error                 { return nil }
func (d *fakeDiscovery) SavePreset(string, plugin.Preset) error          { return nil }
func (d *fakeDiscovery) ValidatePreset(string, string) (bool, error)     { return true, nil }
func (d *fakeDiscovery) RescanPresets(string) ([]plugin.Preset, error)   { return nil, nil }
func (d *fakeDiscovery) GetGUI(string) (any, error)                      { return nil, nil }
func (d *fakeDiscovery) GetGUIMini(string) (any, error)                  { return nil, nil }
func (d *fakeDiscovery) GetEssentials(string) (any, error)               { return nil, nil }
func (d *fakeDiscovery) IsBundleLoaded(string) (bool, error)             { return false, nil }
func (d *fakeDiscovery) AddBundle(string) ([]string, error)              { return nil, nil }
func (d *fakeDiscovery) RemoveBundle(string, string) ([]string, error)   { return nil, nil }
func (d *fakeDiscovery) ListInBundle(string) ([]string, error)           { return nil, nil }

type fakePublisher struct{}

func (fakePublisher) Publish(context.Context, string, []byte) error { return nil }

func startFakeEngine(t *testing.T) (*enginecmd.Client, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 4096)
				n, err := conn.Read(buf)
				if err != nil {
					return
				}
				_ = n
				conn.Write([]byte("resp 0\x00"))
			}()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	state := health.NewState(nil, nil)
	return enginecmd.New("127.0.0.1", addr.Port, state, nil), func() { ln.Close() }
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *health.State, *fakeMetrics) {
	engine, cleanup := startFakeEngine(t)
	t.Cleanup(cleanup)

	reg := registry.New(engine, &fakeDiscovery{}, fakePublisher{}, "bridge.events", nil, nil)
	state := health.NewState(nil, nil)
	metrics := &fakeMetrics{}

	d := New(fakeReplier{}, engine, reg, nil, state, metrics, nil, "bridge.command", "bridge.health")
	return d, state, metrics
}

func TestHandleCommand_MalformedJSON(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	resp := d.handleCommand(context.Background(), []byte("not json"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Equal(t, "Invalid request format", body["error"])
}

func TestHandleCommand_LegacyRawCommand(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	req, _ := json.Marshal(map[string]string{"command": "add urn:test 0"})
	resp := d.handleCommand(context.Background(), req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "resp 0", body["raw"])
}

func TestHandleCommand_LegacyStructuredCommand(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	req, _ := json.Marshal(map[string]any{"name": "remove", "args": []string{"3"}})
	resp := d.handleCommand(context.Background(), req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleCommand_LegacyMissingFields(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	req, _ := json.Marshal(map[string]any{"foo": "bar"})
	resp := d.handleCommand(context.Background(), req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Equal(t, "Invalid command format", body["error"])
}

func TestHandleCommand_PluginUnknownMethod(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	req, _ := json.Marshal(map[string]any{"action": "plugin", "method": "not_a_real_method"})
	resp := d.handleCommand(context.Background(), req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Contains(t, body["error"], "unknown plugin method")
}

func TestHandleCommand_PluginListInstances(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	req, _ := json.Marshal(map[string]any{"action": "plugin", "method": "list_instances"})
	resp := d.handleCommand(context.Background(), req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Contains(t, body, "instances")
}

func TestHandleCommand_AudioWithoutAdapter(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	req, _ := json.Marshal(map[string]any{"action": "audio", "method": "get_sample_rate"})
	resp := d.handleCommand(context.Background(), req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Contains(t, body["error"], "audio adapter not configured")
}

func TestHandleHealth_Snapshot(t *testing.T) {
	d, state, _ := newTestDispatcher(t)
	state.MarkCommand(true)
	state.MarkFeedback(true)

	req, _ := json.Marshal(map[string]string{"action": "health"})
	resp := d.handleHealth(context.Background(), req)

	var body healthResponse
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.CommandConnected)
	assert.True(t, body.FeedbackConnected)
}

func TestHandleHealth_InvalidFormat(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	req, _ := json.Marshal(map[string]string{"action": "not-health"})
	resp := d.handleHealth(context.Background(), req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Equal(t, "Invalid health request format", body["error"])
}

func TestHandleHealth_MalformedJSON(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	resp := d.handleHealth(context.Background(), []byte("{"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp, &body))
	assert.Equal(t, "Invalid request format", body["error"])
}
