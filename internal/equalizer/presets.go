package equalizer

// Preset is a stock equalizer curve
type Preset struct {
	Name   string
	Label  string
	Bands  [BandCount]float64
	Preamp float64
}

// presets is ordered as presented to the user
var presets = []Preset{
	{Name: "flat", Label: "Flat", Bands: [BandCount]float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, Preamp: 0},
	{Name: "bass", Label: "Bass Boost", Bands: [BandCount]float64{6, 5, 4, 2, 0, 0, 0, 0, 0, 0}, Preamp: -2},
	{Name: "treble", Label: "Treble Boost", Bands: [BandCount]float64{0, 0, 0, 0, 0, 0, 2, 4, 5, 6}, Preamp: -2},
	{Name: "vocal", Label: "Vocal", Bands: [BandCount]float64{-2, -1, 0, 2, 4, 4, 3, 1, 0, -1}, Preamp: 0},
	{Name: "rock", Label: "Rock", Bands: [BandCount]float64{5, 4, 2, 0, -1, 0, 2, 4, 5, 5}, Preamp: -2},
	{Name: "pop", Label: "Pop", Bands: [BandCount]float64{-1, 1, 3, 4, 3, 0, -1, -1, 1, 2}, Preamp: 0},
	{Name: "jazz", Label: "Jazz", Bands: [BandCount]float64{3, 2, 1, 2, -1, -1, 0, 1, 2, 3}, Preamp: 0},
	{Name: "classical", Label: "Classical", Bands: [BandCount]float64{4, 3, 2, 1, -1, -1, 0, 2, 3, 4}, Preamp: 0},
	{Name: "electronic", Label: "Electronic", Bands: [BandCount]float64{5, 4, 1, 0, -2, 1, 0, 2, 4, 5}, Preamp: -2},
	{Name: "hiphop", Label: "Hip-Hop", Bands: [BandCount]float64{5, 4, 1, 2, -1, -1, 1, 0, 2, 3}, Preamp: -1},
}

// Presets returns a copy of the preset table
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a preset by name
func LookupPreset(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetLabel returns the display label for name. The custom sentinel
// and unknown names are labelled "Custom".
func PresetLabel(name string) string {
	if p, ok := LookupPreset(name); ok {
		return p.Label
	}
	return "Custom"
}

// NextPreset returns the preset after name in table order, wrapping
// around. A custom state advances to the first preset.
func NextPreset(name string) string {
	for i, p := range presets {
		if p.Name == name {
			return presets[(i+1)%len(presets)].Name
		}
	}
	return presets[0].Name
}
