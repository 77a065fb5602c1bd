// Package nulladapter provides a PluginDiscovery implementation for
// processes that have not linked a real plugin-discovery or audio backend.
// The engine's discovery library and audio system live outside this
// repository; this adapter lets the daemon start, answer health and
// registry requests against an empty catalog, and make the missing
// dependency obvious in every response rather than panicking on a nil
// interface.
package nulladapter

import (
	"errors"

	"github.com/c360/modhostbridge/plugin"
)

// ErrNoBackend is returned by every operation this adapter cannot actually
// perform.
var ErrNoBackend = errors.New("no plugin discovery backend configured")

// Discovery is a PluginDiscovery that reports an empty catalog and returns
// ErrNoBackend from every other operation.
type Discovery struct{}

// New returns a Discovery adapter.
func New() Discovery { return Discovery{} }

func (Discovery) ScanAll() ([]plugin.CatalogEntry, error)      { return nil, nil }
func (Discovery) GetInfo(string) (*plugin.CatalogEntry, error) { return nil, ErrNoBackend }

func (Discovery) GetPresets(string) ([]plugin.Preset, error)    { return nil, ErrNoBackend }
func (Discovery) LoadPreset(string, string) error                { return ErrNoBackend }
func (Discovery) SavePreset(string, plugin.Preset) error         { return ErrNoBackend }
func (Discovery) ValidatePreset(string, string) (bool, error)    { return false, ErrNoBackend }
func (Discovery) RescanPresets(string) ([]plugin.Preset, error)  { return nil, ErrNoBackend }

func (Discovery) GetGUI(string) (any, error)        { return nil, ErrNoBackend }
func (Discovery) GetGUIMini(string) (any, error)    { return nil, ErrNoBackend }
func (Discovery) GetEssentials(string) (any, error) { return nil, ErrNoBackend }

func (Discovery) IsBundleLoaded(string) (bool, error)           { return false, ErrNoBackend }
func (Discovery) AddBundle(string) ([]string, error)            { return nil, ErrNoBackend }
func (Discovery) RemoveBundle(string, string) ([]string, error) { return nil, ErrNoBackend }
func (Discovery) ListInBundle(string) ([]string, error)         { return nil, ErrNoBackend }
