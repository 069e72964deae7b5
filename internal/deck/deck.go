package deck

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/deckcheck/internal/card"
)

// Suit and rank order of an unshuffled deck as the API creates it
var (
	suitOrder = []string{"S", "D", "C", "H"}
	rankOrder = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "0", "J", "Q", "K"}
)

// Size is the number of cards in a standard deck
const Size = 52

// Standard returns the 52 card codes in unshuffled order
func Standard() []string {
	codes := make([]string, 0, Size)
	for _, suit := range suitOrder {
		for _, rank := range rankOrder {
			codes = append(codes, rank+suit)
		}
	}
	return codes
}

// WithJokers returns the standard codes followed by both jokers
func WithJokers() []string {
	return append(Standard(), "X1", "X2")
}

// Preset is a named partial deck
type Preset struct {
	Name        string   `toml:"-"`
	Description string   `toml:"description"`
	Cards       []string `toml:"cards"`
}

// PresetFile is the layout of presets.toml
type PresetFile struct {
	Presets map[string]Preset `toml:"presets"`
}

// Builtin returns the presets shipped with deckcheck
func Builtin() map[string]Preset {
	royals := []string{}
	for _, suit := range suitOrder {
		for _, rank := range []string{"J", "Q", "K"} {
			royals = append(royals, rank+suit)
		}
	}

	euchre := []string{}
	for _, suit := range suitOrder {
		for _, rank := range []string{"9", "0", "J", "Q", "K", "A"} {
			euchre = append(euchre, rank+suit)
		}
	}

	return map[string]Preset{
		"aces": {
			Name:        "aces",
			Description: "The four aces",
			Cards:       []string{"AS", "AD", "AC", "AH"},
		},
		"royals": {
			Name:        "royals",
			Description: "Jacks, queens and kings",
			Cards:       royals,
		},
		"euchre": {
			Name:        "euchre",
			Description: "24 card euchre deck (9 through ace)",
			Cards:       euchre,
		},
	}
}

// LoadPresets returns the builtin presets merged with those defined in path.
// A missing file is not an error.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := Builtin()

	if path == "" {
		return presets, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return presets, nil
	}

	var file PresetFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("error parsing %s: %v", path, err)
	}

	for name, p := range file.Presets {
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, err
		}
		presets[name] = p
	}

	return presets, nil
}

// Validate checks that a preset has cards and every code is known
func (p Preset) Validate() error {
	if len(p.Cards) == 0 {
		return fmt.Errorf("preset %s has no cards", p.Name)
	}

	seen := make(map[string]bool, len(p.Cards))
	for _, code := range p.Cards {
		parsed, err := card.ParseCode(code)
		if err != nil {
			return fmt.Errorf("preset %s: %v", p.Name, err)
		}
		if seen[parsed.Raw] {
			return fmt.Errorf("preset %s: duplicate card %s", p.Name, parsed.Raw)
		}
		seen[parsed.Raw] = true
	}
	return nil
}

// Codes returns the normalized card codes of the preset
func (p Preset) Codes() []string {
	codes := make([]string, 0, len(p.Cards))
	for _, code := range p.Cards {
		codes = append(codes, strings.ToUpper(strings.TrimSpace(code)))
	}
	return codes
}

// Names returns preset names sorted
func Names(presets map[string]Preset) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
