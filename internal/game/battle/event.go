package battle

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	EventPhaseEntered EventKind = iota
	EventUnitInfo
	EventMovableShown
	EventMoved
	EventAttackMenu
	EventAttackSelected
	EventRotated
	EventCharging
	EventAttackResolved
	EventUnitDefeated
	EventTeamChanged
	EventBattleEnded
)

// String returns a short label for logging.
func (k EventKind) String() string {
	switch k {
	case EventPhaseEntered:
		return "phase_entered"
	case EventUnitInfo:
		return "unit_info"
	case EventMovableShown:
		return "movable_shown"
	case EventMoved:
		return "moved"
	case EventAttackMenu:
		return "attack_menu"
	case EventAttackSelected:
		return "attack_selected"
	case EventRotated:
		return "rotated"
	case EventCharging:
		return "charging"
	case EventAttackResolved:
		return "attack_resolved"
	case EventUnitDefeated:
		return "unit_defeated"
	case EventTeamChanged:
		return "team_changed"
	case EventBattleEnded:
		return "battle_ended"
	default:
		return "unknown"
	}
}

// MenuEntry is one row of the attack command menu.
type MenuEntry struct {
	Attack string
	Tier   ruleset.Tier
	Scale  ruleset.Scale
	// Enabled is true when the unit's attack state permits the tier.
	Enabled bool
	// HasTarget is true when at least one enemy could be hit right now.
	HasTarget bool
}

// Event is a notification for the presentation layer. Events are delivered
// after the state change they describe is complete; nothing the observer
// does can alter gameplay.
type Event struct {
	Kind   EventKind
	Phase  Phase
	Team   unit.Team
	UnitID string
	// Unit is a copy of the unit the event concerns, when there is one.
	Unit      *unit.Unit
	From      grid.Coord
	To        grid.Coord
	Path      []grid.Coord
	Tiles     []grid.Coord
	Attack    string
	Direction grid.Direction
	Menu      []MenuEntry
	Results   []combat.Result
	Set       int
	Cycle     int
	Winner    unit.Team
	// Draw is true when the battle stopped without a winner.
	Draw bool
}

// Observer receives events. It is called outside the controller's lock and
// must not block for long.
type Observer func(Event)
