// Package unit models the combatants of a battle and the roster that tracks
// where they stand.
package unit

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
)

// Team is the side a unit fights for.
type Team int

const (
	TeamPlayer Team = iota
	TeamEnemy
)

// String returns the YAML name of the team.
func (t Team) String() string {
	switch t {
	case TeamPlayer:
		return "player"
	case TeamEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamPlayer {
		return TeamEnemy
	}
	return TeamPlayer
}

// ParseTeam maps a YAML name to a Team.
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(s) {
	case "player":
		return TeamPlayer, nil
	case "enemy":
		return TeamEnemy, nil
	default:
		return 0, fmt.Errorf("unknown team %q", s)
	}
}

// AttackState constrains which attack tiers a unit may select this cycle.
type AttackState int

const (
	// LittleAttack permits Low and High tier attacks.
	LittleAttack AttackState = iota
	// MiddleAttack permits Mid tier attacks.
	MiddleAttack
	// Charging locks the unit while a High tier attack builds up.
	Charging
	// Movable permits no attacks until the next set.
	Movable
)

// String returns a human-readable state label.
func (s AttackState) String() string {
	switch s {
	case LittleAttack:
		return "little_attack"
	case MiddleAttack:
		return "middle_attack"
	case Charging:
		return "charging"
	case Movable:
		return "movable"
	default:
		return "unknown"
	}
}

// Permits reports whether a unit in state s may select an attack of tier t.
//
// Postcondition: Low and High under LittleAttack, Mid under MiddleAttack, nothing otherwise.
func (s AttackState) Permits(t ruleset.Tier) bool {
	switch s {
	case LittleAttack:
		return t == ruleset.TierLow || t == ruleset.TierHigh
	case MiddleAttack:
		return t == ruleset.TierMid
	default:
		return false
	}
}

// PlannedAttack is an attack a unit has committed to but not yet resolved.
type PlannedAttack struct {
	Attack    *ruleset.Attack
	Direction grid.Direction
	// Target is the chosen tile for single-scale attacks.
	Target grid.Coord
}

// Unit is one combatant on the map.
//
// Invariant: 0 <= Life <= MaxLife; a unit with Life == 0 is defeated.
type Unit struct {
	ID      string
	Name    string
	Team    Team
	Role    ruleset.Role
	Type    ruleset.TypeID
	MaxLife int
	Life    int
	// Power is the unit's attack power.
	Power   int
	Defence int
	Attacks []*ruleset.Attack
	Pos     grid.Coord
	// MoveBudget is the movement left in the current cycle.
	MoveBudget int
	State      AttackState
	// Planned is non-nil while a charging attack is pending.
	Planned *PlannedAttack
}

// Definition is the static description a Unit is instantiated from.
type Definition struct {
	ID      string
	Name    string
	Team    Team
	Role    ruleset.Role
	Type    ruleset.TypeID
	MaxLife int
	Power   int
	Defence int
	Attacks []*ruleset.Attack
	Start   grid.Coord
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff Name is non-empty, MaxLife >= 1, Power >= 0 and Defence >= 0.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("unit: name must not be empty")
	}
	if d.MaxLife < 1 {
		return fmt.Errorf("unit %q: max_life must be >= 1", d.Name)
	}
	if d.Power < 0 {
		return fmt.Errorf("unit %q: power must be >= 0", d.Name)
	}
	if d.Defence < 0 {
		return fmt.Errorf("unit %q: defence must be >= 0", d.Name)
	}
	return nil
}

// New instantiates a unit from def at full life. An empty ID is replaced by a UUID.
//
// Postcondition: Life == MaxLife; State == LittleAttack; Planned == nil.
func New(def Definition, budget int) *Unit {
	id := def.ID
	if id == "" {
		id = uuid.NewString()
	}
	attacks := make([]*ruleset.Attack, len(def.Attacks))
	copy(attacks, def.Attacks)
	return &Unit{
		ID:         id,
		Name:       def.Name,
		Team:       def.Team,
		Role:       def.Role,
		Type:       def.Type,
		MaxLife:    def.MaxLife,
		Life:       def.MaxLife,
		Power:      def.Power,
		Defence:    def.Defence,
		Attacks:    attacks,
		Pos:        def.Start,
		MoveBudget: budget,
		State:      LittleAttack,
	}
}

// Defeated reports whether the unit has no life left.
func (u *Unit) Defeated() bool { return u.Life <= 0 }

// ApplyDamage reduces Life by amount, flooring at zero. Any positive damage
// cancels a charging attack.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= Life <= MaxLife; returns true iff the unit is now defeated.
func (u *Unit) ApplyDamage(amount int) bool {
	if amount <= 0 {
		return u.Defeated()
	}
	u.Life -= amount
	if u.Life < 0 {
		u.Life = 0
	}
	if u.State == Charging {
		u.Planned = nil
		u.State = Movable
	}
	return u.Defeated()
}

// Attack returns the unit's attack named name.
func (u *Unit) Attack(name string) (*ruleset.Attack, bool) {
	for _, a := range u.Attacks {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// LifePercent returns remaining life as a percentage of MaxLife.
func (u *Unit) LifePercent() int {
	if u.MaxLife <= 0 {
		return 0
	}
	return u.Life * 100 / u.MaxLife
}

// Clone returns a copy of u that shares no mutable state with it.
func (u *Unit) Clone() Unit {
	c := *u
	c.Attacks = make([]*ruleset.Attack, len(u.Attacks))
	copy(c.Attacks, u.Attacks)
	if u.Planned != nil {
		p := *u.Planned
		c.Planned = &p
	}
	return c
}
