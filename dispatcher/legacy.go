package dispatcher

import (
	"fmt"
	"strings"
)

// dispatchLegacy handles a request with no "action" field: either a raw
// command string or a {name, args} pair, joined with spaces and sent
// verbatim to the engine. The response object returned here is always the
// one actually sent back to the caller — there is no separate, unused
// buffer left over from an earlier branch to accidentally serialize
// instead.
func (d *Dispatcher) dispatchLegacy(req map[string]any) (any, error) {
	command, err := legacyCommandString(req)
	if err != nil {
		return nil, err
	}

	result, err := d.engine.Send(command)
	if err != nil {
		return nil, fmt.Errorf("Failed to communicate with mod-host")
	}

	return map[string]string{"status": "ok", "raw": result.Raw}, nil
}

func legacyCommandString(req map[string]any) (string, error) {
	if raw, ok := req["command"].(string); ok {
		return raw, nil
	}

	name, hasName := req["name"].(string)
	argsRaw, hasArgs := req["args"].([]any)
	if hasName && hasArgs {
		parts := make([]string, 0, len(argsRaw)+1)
		parts = append(parts, name)
		for _, a := range argsRaw {
			if s, ok := a.(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, fmt.Sprintf("%v", a))
			}
		}
		return strings.Join(parts, " "), nil
	}

	return "", fmt.Errorf("Invalid command format")
}
