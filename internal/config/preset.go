// Package config loads named bet-abstraction presets from YAML, the
// same way philipjkim-pls7-cli loads its per-variant game rules: a
// plain struct with yaml tags, unmarshaled from a file on disk or
// resolved from a short name against a conventional directory.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/behrlich/poker-solver/pkg/notation"
)

// StreetCaps maps a street name ("preflop", "flop", "turn", "river") to
// its bet/raise cap, the YAML-friendly stand-in for
// map[notation.Street]int since Street has no text (un)marshaler.
type StreetCaps map[string]int

// AbstractionPreset is a named, YAML-loadable bet-sizing configuration
// (e.g. "flops/aggressive.yml"), analogous to GameRules in the teacher.
type AbstractionPreset struct {
	// Name is the human-readable name of the preset.
	Name string `yaml:"name"`

	// BetSizes are pot-relative bet/raise fractions (e.g. 0.5, 0.75, 1.0).
	BetSizes []float64 `yaml:"bet_sizes"`

	// MaxBetsPerStreet caps bet/raise actions per street.
	MaxBetsPerStreet StreetCaps `yaml:"max_bets_per_street"`

	// AllowAllIn appends an all-in size whenever it isn't already present.
	AllowAllIn bool `yaml:"allow_all_in"`

	// MinRaiseFraction is the minimum raise size, as a fraction of the
	// current pot added on top of the call amount.
	MinRaiseFraction float64 `yaml:"min_raise_fraction"`

	// Buckets is the card-abstraction bucket count (0 disables bucketing).
	Buckets int `yaml:"buckets"`
}

// LoadPresetFromFile reads a YAML file from filePath and returns the
// AbstractionPreset it describes.
func LoadPresetFromFile(filePath string) (*AbstractionPreset, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var preset AbstractionPreset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("%w: %v", notation.ErrInvalidConfig, err)
	}

	return &preset, nil
}

// LoadPresetFromName resolves a short preset name (e.g. "aggressive")
// against the conventional "presets/<name>.yml" path and loads it.
func LoadPresetFromName(name string) (*AbstractionPreset, error) {
	return LoadPresetFromFile(fmt.Sprintf("presets/%s.yml", name))
}

// MaxBetsPerStreetMap converts the YAML-friendly string-keyed caps into
// the notation.Street-keyed map the solve orchestration layer expects.
func (p *AbstractionPreset) MaxBetsPerStreetMap() map[notation.Street]int {
	result := make(map[notation.Street]int, len(p.MaxBetsPerStreet))
	for name, n := range p.MaxBetsPerStreet {
		switch name {
		case "preflop":
			result[notation.Preflop] = n
		case "flop":
			result[notation.Flop] = n
		case "turn":
			result[notation.Turn] = n
		case "river":
			result[notation.River] = n
		}
	}
	return result
}
