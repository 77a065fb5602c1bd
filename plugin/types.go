// Package plugin defines the data model for discoverable plugins and loaded
// plugin instances shared between the registry and the bus surface.
package plugin

import "time"

// ScalePoint is a named value on a control port's scale.
type ScalePoint struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// PortRange describes the valid range and default of a control port.
type PortRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Port describes one input or output port on a plugin.
type Port struct {
	Index       int          `json:"index"`
	Symbol      string       `json:"symbol"`
	Name        string       `json:"name"`
	ShortName   string       `json:"short_name,omitempty"`
	Comment     string       `json:"comment,omitempty"`
	Designation string       `json:"designation,omitempty"`
	Range       *PortRange   `json:"range,omitempty"`
	Unit        string       `json:"unit,omitempty"`
	Flags       []string     `json:"flags,omitempty"`
	ScalePoints []ScalePoint `json:"scale_points,omitempty"`
}

// PortSet groups a plugin's ports by direction and kind.
type PortSet struct {
	AudioInput    []Port `json:"audio_input"`
	AudioOutput   []Port `json:"audio_output"`
	ControlInput  []Port `json:"control_input"`
	ControlOutput []Port `json:"control_output"`
	CVInput       []Port `json:"cv_input"`
	CVOutput      []Port `json:"cv_output"`
	MIDIInput     []Port `json:"midi_input"`
	MIDIOutput    []Port `json:"midi_output"`
}

// Author identifies the person or organization that published a plugin.
type Author struct {
	Name     string `json:"name"`
	Homepage string `json:"homepage,omitempty"`
	Email    string `json:"email,omitempty"`
}

// CatalogEntry describes one plugin the engine's discovery library reports
// as available. URI is the primary key.
type CatalogEntry struct {
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Brand      string   `json:"brand,omitempty"`
	Label      string   `json:"label,omitempty"`
	Version    string   `json:"version,omitempty"`
	License    string   `json:"license,omitempty"`
	Comment    string   `json:"comment,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Author     Author   `json:"author"`
	Ports      PortSet  `json:"ports"`
	Presets    []Preset `json:"presets,omitempty"`
	GUI        any      `json:"gui,omitempty"`
	Essentials any      `json:"essentials,omitempty"`
}

// Preset is a named, saved parameter set for a plugin.
type Preset struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
}

// Instance is a loaded plugin running inside the engine.
type Instance struct {
	InstanceID     string             `json:"instance_id"`
	EngineInstance int                `json:"engine_instance"`
	URI            string             `json:"uri"`
	Name           string             `json:"name"`
	Brand          string             `json:"brand,omitempty"`
	Parameters     map[string]float64 `json:"parameters"`
	Ports          PortSet            `json:"ports"`
	X              float64            `json:"x"`
	Y              float64            `json:"y"`
	Enabled        bool               `json:"enabled"`
	PresetURI      string             `json:"preset_uri,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Catalog maps plugin URI to its catalog entry.
type Catalog map[string]CatalogEntry

// BundleState tracks a bundle directory's last scan.
type BundleState struct {
	Path         string    `json:"path"`
	LastModified time.Time `json:"last_modified"`
	URIs         []string  `json:"uris"`
}

// SearchCriteria filters a catalog search. Zero-valued fields are wildcards.
type SearchCriteria struct {
	Category         string
	Author           string
	MinAudioInputs   *int
	MaxAudioInputs   *int
	MinAudioOutputs  *int
	MaxAudioOutputs  *int
	ParameterSymbol  string
}
