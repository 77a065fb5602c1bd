package registry

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/c360/modhostbridge/plugin"
)

// bundlePollInterval bounds how stale plugins_rescanned can be after a
// bundle directory changes on disk. Polling, not fs notification, keeps the
// monitor portable across the platforms mod-host runs on.
const bundlePollInterval = 2 * time.Second

// BundleMonitor watches a set of bundle root directories for added,
// removed, or modified manifest subdirectories and triggers a catalog
// rescan when it finds one. It runs as its own goroutine and walks the
// filesystem without the registry lock; it takes the registry's coarse lock
// only to compare and update the registry's bundle map, and then calls
// RescanPlugins.
type BundleMonitor struct {
	registry *Registry
	roots    []string
	logger   Logger
}

// NewBundleMonitor watches roots for bundle manifest directories.
func NewBundleMonitor(registry *Registry, roots []string, logger Logger) *BundleMonitor {
	if logger == nil {
		logger = registry.logger
	}
	return &BundleMonitor{registry: registry, roots: roots, logger: logger}
}

// Run polls until ctx is canceled.
func (m *BundleMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(bundlePollInterval)
	defer ticker.Stop()

	m.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scanOnce(ctx)
		}
	}
}

// scanOnce walks each root's immediate subdirectories with no registry lock
// held, then takes the lock only to compare the resulting path -> mtime map
// against m.registry.bundles and update it. It triggers a rescan if anything
// was added, removed, or its mtime advanced.
func (m *BundleMonitor) scanOnce(ctx context.Context) {
	mtimes := map[string]time.Time{}
	for _, root := range m.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(root, entry.Name(), "manifest.ttl")); err != nil {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			mtimes[filepath.Join(root, entry.Name())] = info.ModTime()
		}
	}

	changed := false

	m.registry.mu.Lock()
	for path, mtime := range mtimes {
		existing, tracked := m.registry.bundles[path]
		if !tracked || !existing.LastModified.Equal(mtime) {
			m.registry.bundles[path] = plugin.BundleState{
				Path:         path,
				LastModified: mtime,
			}
			changed = true
		}
	}
	for path := range m.registry.bundles {
		if _, seen := mtimes[path]; !seen {
			delete(m.registry.bundles, path)
			changed = true
		}
	}
	m.registry.mu.Unlock()

	if !changed {
		return
	}

	added, removed, err := m.registry.RescanPlugins(ctx)
	if err != nil {
		m.logger.Printf("bundle monitor: rescan failed: %v", err)
		return
	}
	m.logger.Printf("bundle monitor: rescan triggered by bundle change (added=%d removed=%d)", added, removed)
}
