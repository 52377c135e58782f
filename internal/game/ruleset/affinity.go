package ruleset

import "fmt"

// TypeID names an elemental type. Types compare by identifier.
type TypeID string

// Affinity is the directed relation of one type against another.
type Affinity int

const (
	AffinityWeak Affinity = iota
	AffinitySlightlyWeak
	AffinityNeutral
	AffinitySlightlyStrong
	AffinityStrong
)

// Affinities lists every tier from weakest to strongest.
var Affinities = []Affinity{AffinityWeak, AffinitySlightlyWeak, AffinityNeutral, AffinitySlightlyStrong, AffinityStrong}

// String returns the YAML key of the tier.
func (a Affinity) String() string {
	switch a {
	case AffinityWeak:
		return "weak"
	case AffinitySlightlyWeak:
		return "slightly_weak"
	case AffinityNeutral:
		return "neutral"
	case AffinitySlightlyStrong:
		return "slightly_strong"
	case AffinityStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// ParseAffinity maps a YAML key to an Affinity.
func ParseAffinity(s string) (Affinity, error) {
	for _, a := range Affinities {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown affinity %q", s)
}

// TypeChart is the directed relation graph between types.
//
// Relations are configured independently per direction: declaring A strong
// against B says nothing about B against A. Unlisted pairs are neutral.
type TypeChart struct {
	relations map[TypeID]map[TypeID]Affinity
	known     map[TypeID]struct{}
}

// NewTypeChart returns an empty chart.
func NewTypeChart() *TypeChart {
	return &TypeChart{
		relations: make(map[TypeID]map[TypeID]Affinity),
		known:     make(map[TypeID]struct{}),
	}
}

// AddType registers t as a known type with no relations.
func (c *TypeChart) AddType(t TypeID) {
	c.known[t] = struct{}{}
}

// Set records how from fares against to. Both types become known.
//
// Postcondition: Tier(from, to) == a; Tier(to, from) is unchanged.
func (c *TypeChart) Set(from, to TypeID, a Affinity) {
	c.AddType(from)
	c.AddType(to)
	row, ok := c.relations[from]
	if !ok {
		row = make(map[TypeID]Affinity)
		c.relations[from] = row
	}
	row[to] = a
}

// Known reports whether t was declared in the chart.
func (c *TypeChart) Known(t TypeID) bool {
	_, ok := c.known[t]
	return ok
}

// Tier returns how attacker fares against defender.
//
// Postcondition: Returns AffinityNeutral for unlisted pairs.
func (c *TypeChart) Tier(attacker, defender TypeID) Affinity {
	if row, ok := c.relations[attacker]; ok {
		if a, ok := row[defender]; ok {
			return a
		}
	}
	return AffinityNeutral
}

// IsStrongAgainst reports whether attacker is strong or slightly strong against defender.
func (c *TypeChart) IsStrongAgainst(attacker, defender TypeID) bool {
	a := c.Tier(attacker, defender)
	return a == AffinityStrong || a == AffinitySlightlyStrong
}

// IsWeakAgainst reports whether attacker is weak or slightly weak against defender.
func (c *TypeChart) IsWeakAgainst(attacker, defender TypeID) bool {
	a := c.Tier(attacker, defender)
	return a == AffinityWeak || a == AffinitySlightlyWeak
}
