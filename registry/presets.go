package registry

import (
	"context"

	"github.com/c360/modhostbridge/plugin"
)

// hasCatalogEntry reports whether uri is currently known, without copying
// the entry.
func (r *Registry) hasCatalogEntry(uri string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.catalog[uri]
	return ok
}

// GetPluginPresets delegates to the discovery adapter after confirming uri
// is a known plugin.
func (r *Registry) GetPluginPresets(uri string) ([]plugin.Preset, error) {
	if !r.hasCatalogEntry(uri) {
		return nil, ErrPluginNotFound
	}
	return r.discover.GetPresets(uri)
}

// LoadPreset delegates to the discovery adapter after confirming pluginURI
// is a known plugin.
func (r *Registry) LoadPreset(pluginURI, presetURI string) error {
	if !r.hasCatalogEntry(pluginURI) {
		return ErrPluginNotFound
	}
	return r.discover.LoadPreset(pluginURI, presetURI)
}

// SavePreset delegates to the discovery adapter after confirming pluginURI
// is a known plugin.
func (r *Registry) SavePreset(pluginURI string, preset plugin.Preset) error {
	if !r.hasCatalogEntry(pluginURI) {
		return ErrPluginNotFound
	}
	return r.discover.SavePreset(pluginURI, preset)
}

// ValidatePreset delegates to the discovery adapter after confirming
// pluginURI is a known plugin.
func (r *Registry) ValidatePreset(pluginURI, presetURI string) (bool, error) {
	if !r.hasCatalogEntry(pluginURI) {
		return false, ErrPluginNotFound
	}
	return r.discover.ValidatePreset(pluginURI, presetURI)
}

// RescanPresets delegates to the discovery adapter after confirming
// pluginURI is a known plugin.
func (r *Registry) RescanPresets(pluginURI string) ([]plugin.Preset, error) {
	if !r.hasCatalogEntry(pluginURI) {
		return nil, ErrPluginNotFound
	}
	return r.discover.RescanPresets(pluginURI)
}

// GetPluginGUI delegates to the discovery adapter after confirming uri is a
// known plugin.
func (r *Registry) GetPluginGUI(uri string) (any, error) {
	if !r.hasCatalogEntry(uri) {
		return nil, ErrPluginNotFound
	}
	return r.discover.GetGUI(uri)
}

// GetPluginGUIMini delegates to the discovery adapter after confirming uri
// is a known plugin.
func (r *Registry) GetPluginGUIMini(uri string) (any, error) {
	if !r.hasCatalogEntry(uri) {
		return nil, ErrPluginNotFound
	}
	return r.discover.GetGUIMini(uri)
}

// GetPluginEssentials delegates to the discovery adapter after confirming
// uri is a known plugin.
func (r *Registry) GetPluginEssentials(uri string) (any, error) {
	if !r.hasCatalogEntry(uri) {
		return nil, ErrPluginNotFound
	}
	return r.discover.GetEssentials(uri)
}

// IsBundleLoaded delegates to the discovery adapter directly: bundle paths
// are not catalog URIs, so there is nothing to validate up front.
func (r *Registry) IsBundleLoaded(path string) (bool, error) {
	return r.discover.IsBundleLoaded(path)
}

// AddBundle delegates to the discovery adapter and triggers a catalog
// rescan so newly discovered plugins become loadable immediately.
func (r *Registry) AddBundle(ctx context.Context, path string) ([]string, error) {
	uris, err := r.discover.AddBundle(path)
	if err != nil {
		return nil, err
	}
	if _, _, rerr := r.RescanPlugins(ctx); rerr != nil {
		r.logger.Printf("registry: rescan after add_bundle failed: %v", rerr)
	}
	return uris, nil
}

// RemoveBundle delegates to the discovery adapter and triggers a catalog
// rescan so removed plugins stop being reported as available.
func (r *Registry) RemoveBundle(ctx context.Context, path, resource string) ([]string, error) {
	uris, err := r.discover.RemoveBundle(path, resource)
	if err != nil {
		return nil, err
	}
	if _, _, rerr := r.RescanPlugins(ctx); rerr != nil {
		r.logger.Printf("registry: rescan after remove_bundle failed: %v", rerr)
	}
	return uris, nil
}

// ListBundlePlugins delegates to the discovery adapter.
func (r *Registry) ListBundlePlugins(path string) ([]string, error) {
	return r.discover.ListInBundle(path)
}
