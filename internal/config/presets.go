package config

import "sort"

var Presets = map[string]map[string]*Config{
	BackendOpenGL: {
		"default": {
			Backend: BackendOpenGL,
			Context: ContextConfig{Width: DefaultWidth, Height: DefaultHeight, Title: DefaultTitle, Major: 4, Minor: 3},
			Output:  OutputConfig{Format: FormatText},
		},
		"gl46": {
			Backend: BackendOpenGL,
			Context: ContextConfig{Width: DefaultWidth, Height: DefaultHeight, Title: DefaultTitle, Major: 4, Minor: 6},
			Output:  OutputConfig{Format: FormatText},
		},
		"tiny": {
			Backend: BackendOpenGL,
			Context: ContextConfig{Width: 1, Height: 1, Title: DefaultTitle, Major: 4, Minor: 3},
			Output:  OutputConfig{Format: FormatText},
		},
	},
	BackendCPU: {
		"default": {
			Backend: BackendCPU,
			Context: ContextConfig{Width: DefaultWidth, Height: DefaultHeight, Title: DefaultTitle, Major: 4, Minor: 3},
			Output:  OutputConfig{Format: FormatText},
		},
		"json": {
			Backend: BackendCPU,
			Context: ContextConfig{Width: DefaultWidth, Height: DefaultHeight, Title: DefaultTitle, Major: 4, Minor: 3},
			Output:  OutputConfig{Format: FormatJSON},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(backend, preset string) *Config {
	backendPresets, ok := Presets[backend]
	if !ok {
		return nil
	}
	cfg, ok := backendPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(backend string) []string {
	backendPresets, ok := Presets[backend]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(backendPresets))
	for name := range backendPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
