// Package adapter defines the interfaces the registry and dispatcher use to
// reach the engine's in-process plugin-discovery library and the audio
// system, both deliberately out of scope for this repository: real
// implementations live alongside the engine build, not here.
package adapter

import "github.com/c360/modhostbridge/plugin"

// PluginDiscovery is consumed by the registry for everything the engine's
// plugin scanner and preset store own: catalog enumeration, presets, GUI
// descriptors, and bundle management.
type PluginDiscovery interface {
	ScanAll() ([]plugin.CatalogEntry, error)
	GetInfo(uri string) (*plugin.CatalogEntry, error)

	GetPresets(uri string) ([]plugin.Preset, error)
	LoadPreset(pluginURI, presetURI string) error
	SavePreset(pluginURI string, preset plugin.Preset) error
	ValidatePreset(pluginURI, presetURI string) (bool, error)
	RescanPresets(pluginURI string) ([]plugin.Preset, error)

	GetGUI(uri string) (any, error)
	GetGUIMini(uri string) (any, error)
	GetEssentials(uri string) (any, error)

	IsBundleLoaded(path string) (bool, error)
	AddBundle(path string) ([]string, error)
	RemoveBundle(path, resource string) ([]string, error)
	ListInBundle(path string) ([]string, error)
}

// HardwarePort describes one physical or virtual audio/MIDI port the audio
// system exposes.
type HardwarePort struct {
	Name     string `json:"name"`
	IsAudio  bool   `json:"is_audio"`
	IsOutput bool   `json:"is_output"`
}

// Audio is consumed by the dispatcher for buffer/sample-rate control and
// port graph queries. Connect/disconnect may be implemented by delegating
// through the engine command client rather than a native API; that choice
// is internal to the implementation and invisible on the bus.
type Audio interface {
	Init() error
	Close() error

	GetBufferSize() (int, error)
	SetBufferSize(frames int) error
	GetSampleRate() (int, error)

	GetPortAlias(port string) (string, error)
	ListHardwarePorts(isAudio, isOutput bool) ([]HardwarePort, error)

	HasMIDIBeatClockSenderPort() bool
	HasMIDIBeatClockReceiverPort() bool
	HasSerialMIDIInputPort() bool
	HasSerialMIDIOutputPort() bool

	Connect(port1, port2 string) error
	Disconnect(port1, port2 string) error
	DisconnectAll(port string) error

	ResetXruns() error
}
