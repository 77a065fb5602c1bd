package registry

import (
	"fmt"
	"log"

	"github.com/c360/modhostbridge/plugin"
)

const maxAudioPorts = 8
const controlPortMagnitudeWarning = 1e6

// incompatiblePlugins lists URIs known to misbehave in the engine. Empty
// until a specific plugin is found to need exclusion.
var incompatiblePlugins = map[string]struct{}{}

// validateEntry checks a catalog entry against the engine's constraints.
// Returning a non-nil error means the entry is rejected outright; the
// function also logs (but does not reject on) control ports with an
// extreme magnitude.
func validateEntry(entry plugin.CatalogEntry, logger *log.Logger) error {
	if _, bad := incompatiblePlugins[entry.URI]; bad {
		return fmt.Errorf("plugin %s is known to be incompatible", entry.URI)
	}

	audioIn := len(entry.Ports.AudioInput)
	audioOut := len(entry.Ports.AudioOutput)
	if audioIn == 0 && audioOut == 0 {
		return fmt.Errorf("plugin %s has no audio ports", entry.URI)
	}
	if audioIn > maxAudioPorts {
		return fmt.Errorf("plugin %s has too many audio inputs: %d (max %d)", entry.URI, audioIn, maxAudioPorts)
	}
	if audioOut > maxAudioPorts {
		return fmt.Errorf("plugin %s has too many audio outputs: %d (max %d)", entry.URI, audioOut, maxAudioPorts)
	}

	for _, ports := range [][]plugin.Port{entry.Ports.ControlInput, entry.Ports.ControlOutput} {
		for _, port := range ports {
			if port.Range == nil {
				continue
			}
			if port.Range.Min > port.Range.Max {
				return fmt.Errorf("plugin %s control port %q has min > max", entry.URI, port.Symbol)
			}
			if port.Range.Min < -controlPortMagnitudeWarning || port.Range.Max > controlPortMagnitudeWarning {
				logger.Printf("registry: plugin %s control port %q has extreme range [%v, %v]",
					entry.URI, port.Symbol, port.Range.Min, port.Range.Max)
			}
		}
	}

	return nil
}
