package ruleset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Role is a unit's battlefield position; it determines the movement budget.
type Role int

const (
	RoleForward Role = iota
	RoleMiddle
	RoleBack
)

// String returns the YAML name of the role.
func (r Role) String() string {
	switch r {
	case RoleForward:
		return "forward"
	case RoleMiddle:
		return "middle"
	case RoleBack:
		return "back"
	default:
		return "unknown"
	}
}

// ParseRole maps a YAML name to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "forward", "front":
		return RoleForward, nil
	case "middle", "mid":
		return RoleMiddle, nil
	case "back", "rear":
		return RoleBack, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// CombatTable holds the numeric constants of damage resolution.
type CombatTable struct {
	// DamageMultipliers is indexed by the attack-type-vs-defender-type tier.
	DamageMultipliers map[Affinity]float64
	// CriticalRates are percentages indexed by the same tier.
	CriticalRates map[Affinity]int
	// CriticalMultiplier replaces the type multiplier on a critical hit.
	CriticalMultiplier float64
	// SameTypeMultiplier applies when the move's type matches the attacker's own type.
	SameTypeMultiplier float64
	// BadMatchupMultiplier applies when the move's type is strong against the attacker's own type.
	BadMatchupMultiplier float64
	// RandomMin and RandomMax bound the damage spread factor.
	RandomMin float64
	RandomMax float64
}

// DefaultCombatTable returns the stock combat constants.
func DefaultCombatTable() CombatTable {
	return CombatTable{
		DamageMultipliers: map[Affinity]float64{
			AffinityWeak:           0.5,
			AffinitySlightlyWeak:   0.75,
			AffinityNeutral:        1.0,
			AffinitySlightlyStrong: 1.25,
			AffinityStrong:         1.5,
		},
		CriticalRates: map[Affinity]int{
			AffinityWeak:           2,
			AffinitySlightlyWeak:   5,
			AffinityNeutral:        10,
			AffinitySlightlyStrong: 15,
			AffinityStrong:         20,
		},
		CriticalMultiplier:   2.0,
		SameTypeMultiplier:   1.2,
		BadMatchupMultiplier: 0.8,
		RandomMin:            0.85,
		RandomMax:            1.0,
	}
}

// Validate checks that every tier has a multiplier and a critical rate.
func (t CombatTable) Validate() error {
	var errs []string
	for _, a := range Affinities {
		if _, ok := t.DamageMultipliers[a]; !ok {
			errs = append(errs, fmt.Sprintf("damage multiplier missing for %s", a))
		}
		if r, ok := t.CriticalRates[a]; !ok {
			errs = append(errs, fmt.Sprintf("critical rate missing for %s", a))
		} else if r < 0 || r > 100 {
			errs = append(errs, fmt.Sprintf("critical rate for %s must be in [0,100], got %d", a, r))
		}
	}
	if t.CriticalMultiplier <= 0 {
		errs = append(errs, "critical multiplier must be > 0")
	}
	if t.RandomMin <= 0 || t.RandomMax < t.RandomMin {
		errs = append(errs, fmt.Sprintf("random factor band [%v,%v] is invalid", t.RandomMin, t.RandomMax))
	}
	if len(errs) > 0 {
		return fmt.Errorf("combat table: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Rules is the complete static rule set for a battle.
type Rules struct {
	Types   *TypeChart
	Combat  CombatTable
	Terrain grid.TerrainTable
	// MoveBudgets is the per-role movement budget restored at the start of each set.
	MoveBudgets map[Role]int
	attacks     map[string]*Attack
}

// NewRules assembles a Rules value with default tables and no attacks.
func NewRules() *Rules {
	return &Rules{
		Types:       NewTypeChart(),
		Combat:      DefaultCombatTable(),
		Terrain:     grid.DefaultTerrain(),
		MoveBudgets: map[Role]int{RoleForward: 4, RoleMiddle: 3, RoleBack: 2},
		attacks:     make(map[string]*Attack),
	}
}

// AddAttack registers a validated attack.
//
// Postcondition: Returns an error on validation failure or a duplicate name.
func (r *Rules) AddAttack(a *Attack) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, dup := r.attacks[a.Name]; dup {
		return fmt.Errorf("duplicate attack %q", a.Name)
	}
	r.attacks[a.Name] = a
	return nil
}

// Attack returns the attack named name.
func (r *Rules) Attack(name string) (*Attack, bool) {
	a, ok := r.attacks[name]
	return a, ok
}

// Attacks returns all attacks sorted by name.
func (r *Rules) Attacks() []*Attack {
	out := make([]*Attack, 0, len(r.attacks))
	for _, a := range r.attacks {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MoveBudget returns the movement budget for role; an unconfigured role gets 0.
func (r *Rules) MoveBudget(role Role) int {
	return r.MoveBudgets[role]
}
