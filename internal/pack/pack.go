// Package pack resolves rule-pack names into scan sensitivity settings.
package pack

import (
	"strings"

	"github.com/clawshield/clawshield/internal/rules"
)

type Name string

const (
	Basic    Name = "basic"
	Strict   Name = "strict"
	Paranoid Name = "paranoid"
)

type Thresholds struct {
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high" yaml:"high"`
}

// Config is the sensitivity bundle selected for one scan.
type Config struct {
	Name       Name         `json:"name" yaml:"name"`
	Thresholds Thresholds   `json:"thresholds" yaml:"thresholds"`
	Multiplier float64      `json:"multiplier" yaml:"multiplier"`
	Tiers      []rules.Tier `json:"tiers" yaml:"tiers"`
}

var configs = map[Name]Config{
	Basic: {
		Name:       Basic,
		Thresholds: Thresholds{Medium: 35, High: 70},
		Multiplier: 1.0,
		Tiers:      []rules.Tier{rules.TierCore},
	},
	Strict: {
		Name:       Strict,
		Thresholds: Thresholds{Medium: 28, High: 55},
		Multiplier: 1.15,
		Tiers:      []rules.Tier{rules.TierCore},
	},
	Paranoid: {
		Name:       Paranoid,
		Thresholds: Thresholds{Medium: 22, High: 45},
		Multiplier: 1.3,
		Tiers:      []rules.Tier{rules.TierCore, rules.TierExtended},
	},
}

// Resolve matches name case-insensitively; anything unknown, including the
// empty string, resolves to Basic.
func Resolve(name string) Config {
	cfg, ok := configs[Name(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		cfg = configs[Basic]
	}
	cfg.Tiers = append([]rules.Tier(nil), cfg.Tiers...)
	return cfg
}

// Known reports whether name is one of the built-in packs.
func Known(name string) bool {
	_, ok := configs[Name(strings.ToLower(strings.TrimSpace(name)))]
	return ok
}

// All returns every pack from least to most sensitive.
func All() []Config {
	return []Config{Resolve(string(Basic)), Resolve(string(Strict)), Resolve(string(Paranoid))}
}

// Rules returns the catalog subset enabled by the pack.
func (c Config) Rules() []rules.Rule {
	return rules.ForTiers(c.Tiers...)
}
