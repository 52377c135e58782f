// Package ruleset holds the static battle rules: attack definitions, the
// elemental type chart, combat constants, role budgets and terrain constants.
// Everything here is read-only once loaded.
package ruleset

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Scale distinguishes point attacks from area attacks.
type Scale int

const (
	// ScaleSingle targets one tile within a Manhattan distance band.
	ScaleSingle Scale = iota
	// ScaleRange hits a fixed pattern of offsets, optionally rotatable.
	ScaleRange
)

// String returns the YAML name of the scale.
func (s Scale) String() string {
	switch s {
	case ScaleSingle:
		return "single"
	case ScaleRange:
		return "range"
	default:
		return "unknown"
	}
}

// Tier gates which AttackState may select an attack.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierHigh
)

// String returns the YAML name of the tier.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	default:
		return "unknown"
	}
}

func parseScale(s string) (Scale, error) {
	switch strings.ToLower(s) {
	case "single", "":
		return ScaleSingle, nil
	case "range", "area":
		return ScaleRange, nil
	default:
		return 0, fmt.Errorf("unknown attack scale %q", s)
	}
}

func parseTier(s string) (Tier, error) {
	switch strings.ToLower(s) {
	case "low", "":
		return TierLow, nil
	case "mid", "middle":
		return TierMid, nil
	case "high":
		return TierHigh, nil
	default:
		return 0, fmt.Errorf("unknown attack tier %q", s)
	}
}

// Attack is the static definition of a move.
//
// Invariant: ScaleSingle attacks use RangeMin/RangeMax; ScaleRange attacks use Pattern.
type Attack struct {
	Name     string
	Scale    Scale
	Tier     Tier
	Type     TypeID
	Power    int
	Accuracy int
	// RangeMin and RangeMax bound the Manhattan distance of a single-target attack.
	RangeMin int
	RangeMax int
	// Pattern is the set of offsets, relative to the attacker facing East, hit by an area attack.
	Pattern []grid.Coord
	// Rotatable reports whether the pattern may be turned in 90° steps.
	Rotatable bool
}

// Validate checks the attack's internal consistency.
//
// Postcondition: nil return guarantees a non-empty name, a sane range band for
// single attacks, and a non-empty pattern for area attacks.
func (a *Attack) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("attack: name must not be empty")
	}
	if a.Power < 0 {
		return fmt.Errorf("attack %q: power must be >= 0, got %d", a.Name, a.Power)
	}
	switch a.Scale {
	case ScaleSingle:
		if a.RangeMin < 0 || a.RangeMax < a.RangeMin {
			return fmt.Errorf("attack %q: invalid range band [%d,%d]", a.Name, a.RangeMin, a.RangeMax)
		}
	case ScaleRange:
		if len(a.Pattern) == 0 {
			return fmt.Errorf("attack %q: area attack has an empty pattern", a.Name)
		}
	default:
		return fmt.Errorf("attack %q: unknown scale %d", a.Name, int(a.Scale))
	}
	return nil
}
