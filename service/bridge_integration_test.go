package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/c360/modhostbridge/adapter"
	"github.com/c360/modhostbridge/config"
	"github.com/c360/modhostbridge/metric"
	"github.com/c360/modhostbridge/plugin"
)

type noopDiscovery struct{}

func (noopDiscovery) ScanAll() ([]plugin.CatalogEntry, error)         { return nil, nil }
func (noopDiscovery) GetInfo(string) (*plugin.CatalogEntry, error)     { return nil, nil }
func (noopDiscovery) GetPresets(string) ([]plugin.Preset, error)       { return nil, nil }
func (noopDiscovery) LoadPreset(string, string) error                  { return nil }
func (noopDiscovery) SavePreset(string, plugin.Preset) error           { return nil }
func (noopDiscovery) ValidatePreset(string, string) (bool, error)      { return true, nil }
func (noopDiscovery) RescanPresets(string) ([]plugin.Preset, error)    { return nil, nil }
func (noopDiscovery) GetGUI(string) (any, error)                       { return nil, nil }
func (noopDiscovery) GetGUIMini(string) (any, error)                   { return nil, nil }
func (noopDiscovery) GetEssentials(string) (any, error)                { return nil, nil }
func (noopDiscovery) IsBundleLoaded(string) (bool, error)              { return false, nil }
func (noopDiscovery) AddBundle(string) ([]string, error)               { return nil, nil }
func (noopDiscovery) RemoveBundle(string, string) ([]string, error)    { return nil, nil }
func (noopDiscovery) ListInBundle(string) ([]string, error)            { return nil, nil }

var _ adapter.PluginDiscovery = noopDiscovery{}

// listenAndAccept starts a TCP listener that accepts and immediately holds
// connections open, standing in for the engine's command and feedback
// ports during startup polling.
func listenAndAccept(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				buf := make([]byte, 256)
				conn.Read(buf)
				conn.Close()
			}()
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func TestBridge_StartupAndShutdown(t *testing.T) {
	if testing.Short() {
		t.Skip("requires a NATS container")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.11.7-alpine",
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor:   wait.ForListeningPort("4222/tcp"),
	}
	natsContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer natsContainer.Terminate(ctx)

	host, err := natsContainer.Host(ctx)
	require.NoError(t, err)
	port, err := natsContainer.MappedPort(ctx, "4222")
	require.NoError(t, err)
	natsURL := fmt.Sprintf("nats://%s:%s", host, port.Port())

	commandPort := listenAndAccept(t)
	feedbackPort := listenAndAccept(t)

	cfg := &config.Config{
		EngineHost:         "127.0.0.1",
		EnginePort:         commandPort,
		EngineFeedbackPort: feedbackPort,
		NATSURL:            natsURL,
		BusCommandSubject:  "bridge.command",
		BusPublishSubject:  "bridge.feedback",
		BusHealthSubject:   "bridge.health",
	}

	bridge, err := New(cfg, Dependencies{Discovery: noopDiscovery{}}, metric.NewMetrics(), slog.Default())
	require.NoError(t, err)

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, bridge.Start(startCtx))

	require.Equal(t, StatusRunning, bridge.Status())

	require.NoError(t, bridge.Stop(3*time.Second))
	require.Equal(t, StatusStopped, bridge.Status())
}
