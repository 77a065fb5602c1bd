package dispatcher

import (
	"context"
	"fmt"
)

// dispatchAudio routes an audio-family command to the audio adapter by
// method name.
func (d *Dispatcher) dispatchAudio(_ context.Context, req map[string]any) (any, error) {
	if d.audio == nil {
		return nil, fmt.Errorf("audio adapter not configured")
	}

	method, _ := req["method"].(string)
	switch method {
	case "get_buffer_size":
		size, err := d.audio.GetBufferSize()
		if err != nil {
			return nil, err
		}
		return map[string]int{"buffer_size": size}, nil

	case "set_buffer_size":
		frames, _ := req["frames"].(float64)
		if err := d.audio.SetBufferSize(int(frames)); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "get_sample_rate":
		rate, err := d.audio.GetSampleRate()
		if err != nil {
			return nil, err
		}
		return map[string]int{"sample_rate": rate}, nil

	case "get_port_alias":
		port, _ := req["port"].(string)
		alias, err := d.audio.GetPortAlias(port)
		if err != nil {
			return nil, err
		}
		return map[string]string{"alias": alias}, nil

	case "list_hardware_ports":
		isAudio, _ := req["is_audio"].(bool)
		isOutput, _ := req["is_output"].(bool)
		ports, err := d.audio.ListHardwarePorts(isAudio, isOutput)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ports": ports}, nil

	case "connect":
		port1, _ := req["port1"].(string)
		port2, _ := req["port2"].(string)
		if err := d.audio.Connect(port1, port2); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "disconnect":
		port1, _ := req["port1"].(string)
		port2, _ := req["port2"].(string)
		if err := d.audio.Disconnect(port1, port2); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "disconnect_all":
		port, _ := req["port"].(string)
		if err := d.audio.DisconnectAll(port); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "reset_xruns":
		if err := d.audio.ResetXruns(); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	default:
		return nil, fmt.Errorf("unknown audio method: %s", method)
	}
}
