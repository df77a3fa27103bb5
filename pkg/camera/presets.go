package camera

// Preset names for common resolutions
const (
	PresetVGA   = "vga"
	Preset720p  = "720p"
	Preset1080p = "1080p"
)

// Resolution is a named frame size.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Presets returns all available resolution presets.
func Presets() map[string]Resolution {
	return map[string]Resolution{
		PresetVGA:   {Width: 640, Height: 480},
		Preset720p:  {Width: 1280, Height: 720},
		Preset1080p: {Width: 1920, Height: 1080},
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{PresetVGA, Preset720p, Preset1080p}
}

// GetPreset returns a preset by name, or nil if not found.
func GetPreset(name string) *Resolution {
	if r, ok := Presets()[name]; ok {
		return &r
	}
	return nil
}
