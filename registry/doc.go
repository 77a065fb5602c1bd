// Package registry is the plugin registry: it owns the catalog, every
// loaded instance, and the bundle monitor that keeps the catalog current.
// See registry.go for the coarse-lock model and events.go for the
// lifecycle events it publishes.
package registry
