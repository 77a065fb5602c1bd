package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/c360/modhostbridge/plugin"
)

var errInvalidFormat = errors.New("Invalid request format")

// dispatchPlugin routes a plugin-family command to the registry by method
// name. Unknown methods produce a structured error, never a crash.
func (d *Dispatcher) dispatchPlugin(ctx context.Context, req map[string]any) (any, error) {
	method, _ := req["method"].(string)
	if method == "" {
		return nil, fmt.Errorf("Plugin command missing 'method' field")
	}

	switch method {
	case "load_plugin":
		uri, _ := req["uri"].(string)
		x, _ := req["x"].(float64)
		y, _ := req["y"].(float64)
		params := map[string]float64{}
		if raw, ok := req["parameters"].(map[string]any); ok {
			for k, v := range raw {
				if f, ok := v.(float64); ok {
					params[k] = f
				}
			}
		}
		instance, err := d.reg.LoadPlugin(ctx, uri, x, y, params)
		if err != nil {
			return nil, err
		}
		return instance, nil

	case "unload_plugin":
		instanceID, _ := req["instance_id"].(string)
		if err := d.reg.UnloadPlugin(ctx, instanceID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "set_parameter":
		instanceID, _ := req["instance_id"].(string)
		symbol, _ := req["parameter"].(string)
		value, _ := req["value"].(float64)
		if err := d.reg.SetParameter(ctx, instanceID, symbol, value); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "get_parameter":
		instanceID, _ := req["instance_id"].(string)
		symbol, _ := req["parameter"].(string)
		value, err := d.reg.GetParameter(instanceID, symbol)
		if err != nil {
			return nil, err
		}
		return map[string]float64{"value": value}, nil

	case "get_plugin_info":
		instanceID, _ := req["instance_id"].(string)
		info, err := d.reg.GetPluginInfo(instanceID)
		if err != nil {
			return nil, err
		}
		return info, nil

	case "list_instances":
		return map[string][]plugin.Instance{"instances": d.reg.ListInstances()}, nil

	case "clear_all":
		d.reg.ClearAll(ctx)
		return map[string]string{"status": "ok"}, nil

	case "get_available_plugins":
		return map[string][]plugin.CatalogEntry{"plugins": d.reg.GetAvailablePlugins()}, nil

	case "search_plugins":
		criteria := searchCriteriaFromRequest(req)
		query, _ := req["query"].(string)
		return map[string][]plugin.CatalogEntry{"plugins": d.reg.SearchPlugins(criteria, query)}, nil

	case "get_plugin_presets":
		uri, _ := req["uri"].(string)
		presets, err := d.reg.GetPluginPresets(uri)
		if err != nil {
			return nil, err
		}
		return map[string][]plugin.Preset{"presets": presets}, nil

	case "load_preset":
		pluginURI, _ := req["uri"].(string)
		presetURI, _ := req["preset_uri"].(string)
		if err := d.reg.LoadPreset(pluginURI, presetURI); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "save_preset":
		pluginURI, _ := req["uri"].(string)
		label, _ := req["label"].(string)
		presetURI, _ := req["preset_uri"].(string)
		if err := d.reg.SavePreset(pluginURI, plugin.Preset{URI: presetURI, Label: label}); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil

	case "rescan_plugins":
		added, removed, err := d.reg.RescanPlugins(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int{"added": added, "removed": removed}, nil

	case "validate_preset":
		pluginURI, _ := req["uri"].(string)
		presetURI, _ := req["preset_uri"].(string)
		valid, err := d.reg.ValidatePreset(pluginURI, presetURI)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"valid": valid}, nil

	case "rescan_presets":
		pluginURI, _ := req["uri"].(string)
		presets, err := d.reg.RescanPresets(pluginURI)
		if err != nil {
			return nil, err
		}
		return map[string][]plugin.Preset{"presets": presets}, nil

	case "get_plugin_gui":
		uri, _ := req["uri"].(string)
		gui, err := d.reg.GetPluginGUI(uri)
		if err != nil {
			return nil, err
		}
		return map[string]any{"gui": gui}, nil

	case "get_plugin_gui_mini":
		uri, _ := req["uri"].(string)
		gui, err := d.reg.GetPluginGUIMini(uri)
		if err != nil {
			return nil, err
		}
		return map[string]any{"gui": gui}, nil

	case "get_plugin_essentials":
		uri, _ := req["uri"].(string)
		essentials, err := d.reg.GetPluginEssentials(uri)
		if err != nil {
			return nil, err
		}
		return map[string]any{"essentials": essentials}, nil

	case "is_bundle_loaded":
		path, _ := req["path"].(string)
		loaded, err := d.reg.IsBundleLoaded(path)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"loaded": loaded}, nil

	case "add_bundle":
		path, _ := req["path"].(string)
		uris, err := d.reg.AddBundle(ctx, path)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"uris": uris}, nil

	case "remove_bundle":
		path, _ := req["path"].(string)
		resource, _ := req["resource"].(string)
		uris, err := d.reg.RemoveBundle(ctx, path, resource)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"uris": uris}, nil

	case "list_bundle_plugins":
		path, _ := req["path"].(string)
		uris, err := d.reg.ListBundlePlugins(path)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"uris": uris}, nil

	default:
		return nil, fmt.Errorf("unknown plugin method: %s", method)
	}
}

func searchCriteriaFromRequest(req map[string]any) plugin.SearchCriteria {
	criteria := plugin.SearchCriteria{}
	if v, ok := req["category"].(string); ok {
		criteria.Category = v
	}
	if v, ok := req["author"].(string); ok {
		criteria.Author = v
	}
	if v, ok := req["parameter_symbol"].(string); ok {
		criteria.ParameterSymbol = v
	}
	criteria.MinAudioInputs = intPtrFromRequest(req, "min_audio_inputs")
	criteria.MaxAudioInputs = intPtrFromRequest(req, "max_audio_inputs")
	criteria.MinAudioOutputs = intPtrFromRequest(req, "min_audio_outputs")
	criteria.MaxAudioOutputs = intPtrFromRequest(req, "max_audio_outputs")
	return criteria
}

func intPtrFromRequest(req map[string]any, key string) *int {
	v, ok := req[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}
