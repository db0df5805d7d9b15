package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const PresetsFilepath string = "presets.yaml"

// Presets is the top-level structure of the preset file.
type Presets struct {
	Presets []Preset `yaml:"presets"`
	Version string   `yaml:"version"`
}

// Preset names one ready-made Ising parameter set.
type Preset struct {
	ID       string  `yaml:"id"`
	Size     int     `yaml:"size"`
	Beta     float64 `yaml:"beta"`
	Coupling float64 `yaml:"coupling"`
	Field    float64 `yaml:"field"`
}

// GetPreset loads the preset file and returns the entry with the given id.
func GetPreset(path, id string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, err
	}

	var cfg Presets
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Preset{}, err
	}

	for _, p := range cfg.Presets {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("preset %q not found in %s", id, path)
}
