package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vancomm/antimine/internal/mines"
)

//go:embed presets.yaml
var embeddedPresets []byte

// Presets maps a difficulty to board dimensions.
type Presets struct {
	fields map[mines.Difficulty]mines.Minefield
	custom mines.Minefield
}

func ParsePresets(data []byte, custom mines.Minefield) (*Presets, error) {
	var raw map[string]mines.Minefield
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to parse difficulty presets: %w", err)
	}

	p := &Presets{
		fields: make(map[mines.Difficulty]mines.Minefield, len(raw)),
		custom: custom,
	}
	for name, field := range raw {
		d, err := mines.ParseDifficulty(name)
		if err != nil {
			return nil, err
		}
		if d == mines.Custom {
			return nil, fmt.Errorf("custom board is set by preferences, not presets")
		}
		if err := field.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", d, err)
		}
		p.fields[d] = field
	}
	for _, d := range mines.Difficulties {
		if _, ok := p.fields[d]; !ok && d != mines.Custom {
			return nil, fmt.Errorf("no preset for %s", d)
		}
	}
	return p, nil
}

// LoadPresets reads DIFFICULTY_PRESETS_FILE when set, the built in table
// otherwise.
func LoadPresets(prefs *Preferences) (*Presets, error) {
	data := embeddedPresets
	if path, ok := os.LookupEnv("DIFFICULTY_PRESETS_FILE"); ok && path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read presets file: %w", err)
		}
		data = b
	}
	custom := DefaultPreferences().Custom
	if prefs != nil {
		custom = prefs.Custom
	}
	return ParsePresets(data, custom)
}

func DefaultPresets() *Presets {
	p, err := ParsePresets(embeddedPresets, DefaultPreferences().Custom)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Presets) Minefield(d mines.Difficulty) (mines.Minefield, error) {
	if d == mines.Custom {
		return p.custom, nil
	}
	field, ok := p.fields[d]
	if !ok {
		return mines.Minefield{}, fmt.Errorf("unknown difficulty %q", d)
	}
	return field, nil
}

// WithCustom returns a copy of p whose Custom difficulty maps to field.
func (p *Presets) WithCustom(field mines.Minefield) *Presets {
	return &Presets{fields: p.fields, custom: field}
}
