// See types.go for the catalog and instance data model shared by the
// registry, the adapters, and the bus JSON surface.
package plugin
