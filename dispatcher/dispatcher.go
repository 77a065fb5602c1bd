// Package dispatcher implements the two bus reply sockets the bridge
// exposes: the command socket (plugin/audio/legacy engine passthrough
// requests) and the health socket (a single status snapshot). Both are
// served by bus.Client.Reply, one subscription each, so there is no shared
// socket state to protect beyond what the registry and engine client
// already guard internally.
package dispatcher

import (
	"context"
	"encoding/json"
	"log"

	"github.com/c360/modhostbridge/adapter"
	"github.com/c360/modhostbridge/enginecmd"
	"github.com/c360/modhostbridge/health"
	"github.com/c360/modhostbridge/registry"
)

// Logger is the minimal logging surface the dispatcher needs.
type Logger interface {
	Printf(format string, v ...any)
}

type stdLogger struct{ *log.Logger }

// Metrics is the subset of metric.Metrics the dispatcher records against.
type Metrics interface {
	RecordDispatcherRequest(socket string, err error)
}

// Replier is the subset of the bus client the dispatcher needs to serve
// reply sockets.
type Replier interface {
	Reply(ctx context.Context, subject string, handler func(context.Context, []byte) []byte) error
}

// Dispatcher routes bus requests to the registry, the audio adapter, or the
// engine command client, and answers health snapshot requests.
type Dispatcher struct {
	bus     Replier
	engine  *enginecmd.Client
	reg     *registry.Registry
	audio   adapter.Audio
	health  *health.State
	metrics Metrics
	logger  Logger

	commandSubject string
	healthSubject  string
}

// New constructs a Dispatcher. audio may be nil if no audio adapter is
// configured, in which case audio-family requests fail with an error body.
func New(bus Replier, engine *enginecmd.Client, reg *registry.Registry, audioAdapter adapter.Audio, state *health.State, metrics Metrics, logger Logger, commandSubject, healthSubject string) *Dispatcher {
	if logger == nil {
		logger = stdLogger{log.Default()}
	}
	return &Dispatcher{
		bus:            bus,
		engine:         engine,
		reg:            reg,
		audio:          audioAdapter,
		health:         state,
		metrics:        metrics,
		logger:         logger,
		commandSubject: commandSubject,
		healthSubject:  healthSubject,
	}
}

// Run subscribes both reply sockets and blocks until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.bus.Reply(ctx, d.commandSubject, d.handleCommand); err != nil {
		return err
	}
	if err := d.bus.Reply(ctx, d.healthSubject, d.handleHealth); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// RunHealthOnly subscribes the health reply socket and returns immediately,
// leaving the subscription running in the background. The health socket
// comes up before the engine is known to be reachable, so it must not block
// on anything past the bus connection itself.
func (d *Dispatcher) RunHealthOnly(ctx context.Context) error {
	return d.bus.Reply(ctx, d.healthSubject, d.handleHealth)
}

// RunCommandOnly subscribes the command reply socket and blocks until ctx
// is canceled. Callers run it in its own goroutine once the engine is
// reachable and the registry has completed its initial scan.
func (d *Dispatcher) RunCommandOnly(ctx context.Context) error {
	if err := d.bus.Reply(ctx, d.commandSubject, d.handleCommand); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (d *Dispatcher) handleHealth(_ context.Context, body []byte) []byte {
	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		d.recordResult("health", errInvalidFormat)
		return mustMarshal(errorResponse("Invalid request format"))
	}

	if action, _ := req["action"].(string); action != "health" {
		d.recordResult("health", errInvalidFormat)
		return mustMarshal(errorResponse("Invalid health request format"))
	}

	snap := d.health.Snapshot()
	d.recordResult("health", nil)
	return mustMarshal(healthResponse{
		Status:            snap.Status.String(),
		Message:           snap.Message,
		CommandConnected:  snap.CommandConnected,
		FeedbackConnected: snap.FeedbackConnected,
	})
}

func (d *Dispatcher) handleCommand(ctx context.Context, body []byte) []byte {
	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		d.recordResult("command", errInvalidFormat)
		return mustMarshal(errorResponse("Invalid request format"))
	}

	action, _ := req["action"].(string)

	var resp any
	var err error

	switch action {
	case "plugin":
		resp, err = d.dispatchPlugin(ctx, req)
	case "audio":
		resp, err = d.dispatchAudio(ctx, req)
	case "":
		resp, err = d.dispatchLegacy(req)
	default:
		err = errInvalidFormat
	}

	d.recordResult("command", err)
	if err != nil {
		return mustMarshal(errorResponse(err.Error()))
	}
	return mustMarshal(resp)
}

func (d *Dispatcher) recordResult(socket string, err error) {
	if d.metrics != nil {
		d.metrics.RecordDispatcherRequest(socket, err)
	}
}

type healthResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	CommandConnected  bool   `json:"command_connected"`
	FeedbackConnected bool   `json:"feedback_connected"`
}

func errorResponse(message string) map[string]string {
	return map[string]string{"error": message}
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"internal serialization failure"}`)
	}
	return data
}
