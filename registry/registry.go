// Package registry implements the plugin registry: the authoritative,
// mutex-guarded record of the plugin catalog and every currently loaded
// instance. It is the component every plugin-shaped bus request eventually
// reaches, and the only place engine_instance numbers are allocated.
package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360/modhostbridge/adapter"
	"github.com/c360/modhostbridge/enginecmd"
	baseerrors "github.com/c360/modhostbridge/errors"
	"github.com/c360/modhostbridge/plugin"
)

// Logger is the minimal logging surface the registry needs.
type Logger interface {
	Printf(format string, v ...any)
}

type stdLogger struct{ *log.Logger }

// Metrics is the subset of metric.Metrics the registry records against.
type Metrics interface {
	RecordPluginInstances(count int)
	RecordBundleRescan()
}

// EngineError reports a negative response code from the engine command
// port, i.e. a Protocol-class failure per the taxonomy the dispatcher
// surfaces to bus callers.
type EngineError struct {
	Command string
	Code    int
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine rejected %q: code %d", e.Command, e.Code)
}

// ErrPluginNotFound is returned when a requested URI is absent from the catalog.
var ErrPluginNotFound = fmt.Errorf("%w: plugin", baseerrors.ErrNotFound)

// ErrInstanceNotFound is returned when a requested instance_id is not loaded.
var ErrInstanceNotFound = fmt.Errorf("%w: instance", baseerrors.ErrNotFound)

// Registry holds the plugin catalog and every loaded instance behind a
// single coarse mutex. Engine I/O may happen while the mutex is held: this
// trades throughput for the simplicity of never having to reconcile a
// partial engine call with a partially updated map.
type Registry struct {
	mu sync.Mutex

	catalog   plugin.Catalog
	instances map[string]*plugin.Instance
	bundles   map[string]plugin.BundleState

	nextEngineInstance int

	engine   *enginecmd.Client
	discover adapter.PluginDiscovery

	publisher    Publisher
	eventSubject string
	metrics      Metrics
	logger       Logger

	now nowFunc
}

// New constructs an empty Registry. Call ScanCatalog before serving
// requests so the catalog is populated.
func New(engine *enginecmd.Client, discover adapter.PluginDiscovery, publisher Publisher, eventSubject string, metrics Metrics, logger Logger) *Registry {
	if logger == nil {
		logger = stdLogger{log.Default()}
	}
	return &Registry{
		catalog:      plugin.Catalog{},
		instances:    map[string]*plugin.Instance{},
		bundles:      map[string]plugin.BundleState{},
		engine:       engine,
		discover:     discover,
		publisher:    publisher,
		eventSubject: eventSubject,
		metrics:      metrics,
		logger:       logger,
		now:          func() int64 { return time.Now().UnixMilli() },
	}
}

// ScanCatalog enumerates every plugin the discovery adapter reports,
// validates each, and replaces the catalog. Rejected entries are logged and
// omitted, never returned as an error to the caller. It does not emit
// plugins_rescanned: that event is reserved for explicit RescanPlugins calls
// triggered after startup.
func (r *Registry) ScanCatalog() error {
	entries, err := r.discover.ScanAll()
	if err != nil {
		return baseerrors.WrapTransient(err, "Registry", "ScanCatalog", "enumerate plugins")
	}

	next := plugin.Catalog{}
	for _, entry := range entries {
		if err := validateEntry(entry, log.Default()); err != nil {
			r.logger.Printf("registry: rejecting plugin %s: %v", entry.URI, err)
			continue
		}
		next[entry.URI] = entry
	}

	r.mu.Lock()
	r.catalog = next
	r.mu.Unlock()

	return nil
}

// RescanPlugins re-enumerates the catalog via the discovery adapter,
// replaces it under lock, and emits plugins_rescanned. It returns the
// number of URIs added and removed relative to the previous catalog.
func (r *Registry) RescanPlugins(ctx context.Context) (added, removed int, err error) {
	entries, err := r.discover.ScanAll()
	if err != nil {
		return 0, 0, baseerrors.WrapTransient(err, "Registry", "RescanPlugins", "enumerate plugins")
	}

	next := plugin.Catalog{}
	for _, entry := range entries {
		if verr := validateEntry(entry, log.Default()); verr != nil {
			r.logger.Printf("registry: rejecting plugin %s: %v", entry.URI, verr)
			continue
		}
		next[entry.URI] = entry
	}

	r.mu.Lock()
	previous := r.catalog
	r.catalog = next
	r.mu.Unlock()

	for uri := range next {
		if _, existed := previous[uri]; !existed {
			added++
		}
	}
	for uri := range previous {
		if _, still := next[uri]; !still {
			removed++
		}
	}

	if r.metrics != nil {
		r.metrics.RecordBundleRescan()
	}
	r.emit(ctx, EventPluginsRescanned, map[string]any{"count": len(next)})

	return added, removed, nil
}

// GetAvailablePlugins returns every catalog entry, unordered guarantees
// aside from what the caller imposes.
func (r *Registry) GetAvailablePlugins() []plugin.CatalogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]plugin.CatalogEntry, 0, len(r.catalog))
	for _, entry := range r.catalog {
		out = append(out, entry)
	}
	return out
}

// SearchPlugins filters the catalog by criteria, falling back to a
// substring query against name/author/URI when no structured field is set.
func (r *Registry) SearchPlugins(criteria plugin.SearchCriteria, query string) []plugin.CatalogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return searchCatalog(r.catalog, criteria, query)
}

// LoadPlugin instantiates uri in the engine and records the resulting
// instance. initialParams are applied best-effort after the load succeeds:
// a failed param_set is logged, not returned as an error.
func (r *Registry) LoadPlugin(ctx context.Context, uri string, x, y float64, initialParams map[string]float64) (*plugin.Instance, error) {
	r.mu.Lock()

	entry, ok := r.catalog[uri]
	if !ok {
		r.mu.Unlock()
		return nil, ErrPluginNotFound
	}

	requested := r.nextEngineInstance
	r.nextEngineInstance++

	result, err := r.engine.Send(fmt.Sprintf("add %s %d", uri, requested))
	if err != nil {
		r.mu.Unlock()
		return nil, baseerrors.WrapTransient(err, "Registry", "LoadPlugin", "send add command")
	}
	if !result.HasCode || result.Code < 0 {
		r.mu.Unlock()
		return nil, &EngineError{Command: "add", Code: result.Code}
	}

	instance := &plugin.Instance{
		InstanceID:     newInstanceID(),
		EngineInstance: result.Code,
		URI:            uri,
		Name:           entry.Name,
		Brand:          entry.Brand,
		Parameters:     map[string]float64{},
		Ports:          entry.Ports,
		X:              x,
		Y:              y,
		Enabled:        true,
		CreatedAt:      time.Now(),
	}
	r.instances[instance.InstanceID] = instance
	count := len(r.instances)

	r.mu.Unlock()

	for symbol, value := range initialParams {
		if _, err := r.engine.Send(fmt.Sprintf("param_set %s %s %v", instance.InstanceID, symbol, value)); err != nil {
			r.logger.Printf("registry: initial param_set %s on instance %s failed: %v", symbol, instance.InstanceID, err)
			continue
		}
		r.mu.Lock()
		instance.Parameters[symbol] = value
		r.mu.Unlock()
	}

	if r.metrics != nil {
		r.metrics.RecordPluginInstances(count)
	}
	r.emit(ctx, EventPluginLoaded, map[string]any{
		"instance_id": instance.InstanceID,
		"uri":         instance.URI,
		"name":        instance.Name,
	})

	return instance, nil
}

// UnloadPlugin removes instanceID from the engine and the registry. The
// engine's remove is best-effort: a failure is logged but the instance is
// still dropped locally so the two never disagree about what is loaded.
func (r *Registry) UnloadPlugin(ctx context.Context, instanceID string) error {
	r.mu.Lock()
	instance, ok := r.instances[instanceID]
	if !ok {
		r.mu.Unlock()
		return ErrInstanceNotFound
	}
	delete(r.instances, instanceID)
	count := len(r.instances)
	r.mu.Unlock()

	if _, err := r.engine.Send(fmt.Sprintf("remove %s", instance.InstanceID)); err != nil {
		r.logger.Printf("registry: remove for instance %s failed: %v", instanceID, err)
	}

	if r.metrics != nil {
		r.metrics.RecordPluginInstances(count)
	}
	r.emit(ctx, EventPluginUnloaded, map[string]any{
		"instance_id":     instance.InstanceID,
		"engine_instance": instance.EngineInstance,
		"uri":             instance.URI,
	})

	return nil
}

// SetParameter pushes a control value to the engine and, on success, caches
// it and emits parameter_changed.
func (r *Registry) SetParameter(ctx context.Context, instanceID, symbol string, value float64) error {
	r.mu.Lock()
	instance, ok := r.instances[instanceID]
	if !ok {
		r.mu.Unlock()
		return ErrInstanceNotFound
	}
	r.mu.Unlock()

	result, err := r.engine.Send(fmt.Sprintf("param_set %s %s %v", instanceID, symbol, value))
	if err != nil {
		return baseerrors.WrapTransient(err, "Registry", "SetParameter", "send param_set")
	}
	if result.HasCode && result.Code < 0 {
		return &EngineError{Command: "param_set", Code: result.Code}
	}

	r.mu.Lock()
	instance.Parameters[symbol] = value
	r.mu.Unlock()

	r.emit(ctx, EventParameterChanged, map[string]any{
		"instance_id": instanceID,
		"symbol":      symbol,
		"value":       value,
	})
	return nil
}

// GetParameter returns the engine's live value for symbol, falling back to
// the last cached value and finally 0.0. It never returns an error for a
// known instance/symbol pair, matching the engine feedback stream being the
// authoritative but not sole source of truth.
func (r *Registry) GetParameter(instanceID, symbol string) (float64, error) {
	r.mu.Lock()
	instance, ok := r.instances[instanceID]
	if !ok {
		r.mu.Unlock()
		return 0, ErrInstanceNotFound
	}
	cached, hasCached := instance.Parameters[symbol]
	r.mu.Unlock()

	result, err := r.engine.Send(fmt.Sprintf("param_get %s %s", instanceID, symbol))
	if err == nil {
		if value, ok := parseFloatReply(result.Raw); ok {
			return value, nil
		}
	}
	if hasCached {
		return cached, nil
	}
	return 0.0, nil
}

// GetPluginInfo returns the loaded instance's current snapshot.
func (r *Registry) GetPluginInfo(instanceID string) (*plugin.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	instance, ok := r.instances[instanceID]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	clone := *instance
	return &clone, nil
}

// ListInstances returns every currently loaded instance.
func (r *Registry) ListInstances() []plugin.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]plugin.Instance, 0, len(r.instances))
	for _, instance := range r.instances {
		out = append(out, *instance)
	}
	return out
}

// ClearAll unloads every instance. Per-instance failures are logged, never
// returned: the operation always reports success once it has attempted to
// clear the whole set, matching the always-"ok" contract callers expect.
func (r *Registry) ClearAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.UnloadPlugin(ctx, id); err != nil {
			r.logger.Printf("registry: clear_all failed to unload %s: %v", id, err)
		}
	}
}

func parseFloatReply(raw string) (float64, bool) {
	var value float64
	if _, err := fmt.Sscanf(raw, "resp %f", &value); err == nil {
		return value, true
	}
	if _, err := fmt.Sscanf(raw, "%f", &value); err == nil {
		return value, true
	}
	return 0, false
}

func newInstanceID() string {
	return uuid.NewString()
}
