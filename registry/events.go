package registry

import (
	"context"
	"encoding/json"
)

// Lifecycle event type names published on the bus.
const (
	EventPluginLoaded     = "plugin_loaded"
	EventPluginUnloaded   = "plugin_unloaded"
	EventParameterChanged = "parameter_changed"
	EventPluginsRescanned = "plugins_rescanned"
)

// lifecycleEnvelope is the wire shape for registry-originated events, as
// distinct from the flat records the feedback reader republishes.
type lifecycleEnvelope struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Publisher is the subset of the bus client the registry needs to emit
// lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// nowFunc returns the current time as epoch milliseconds, the format the
// envelope expects. Registry holds one in its now field so tests can
// substitute a fixed clock.
type nowFunc func() int64

func (r *Registry) emit(ctx context.Context, eventType string, data map[string]any) {
	envelope := lifecycleEnvelope{
		Type:      eventType,
		Timestamp: r.now(),
		Data:      data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		r.logger.Printf("registry: failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := r.publisher.Publish(ctx, r.eventSubject, payload); err != nil {
		r.logger.Printf("registry: failed to publish %s event: %v", eventType, err)
	}
}
