// Package scenario loads a battlefield layout and the units that start on it.
package scenario

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// UnitSpec is a unit as written in a scenario: attacks are still names.
type UnitSpec struct {
	ID      string
	Name    string
	Team    unit.Team
	Role    ruleset.Role
	Type    ruleset.TypeID
	MaxLife int
	Power   int
	Defence int
	Attacks []string
	Start   grid.Coord
}

// Scenario is a validated battlefield and its starting units.
//
// Invariant: every unit starts on a tile of Features that is not unmovable,
// and no two units share a tile.
type Scenario struct {
	ID        string
	Name      string
	FirstTeam unit.Team
	// MaxSets overrides the configured safety stop when non-zero.
	MaxSets  int
	Width    int
	Height   int
	Features map[grid.Coord]grid.Feature
	Units    []UnitSpec
}

// Validate checks the scenario's invariants.
//
// Postcondition: Returns nil iff ID is set, both teams field at least one unit,
// unit IDs are unique and every unit starts alone on a passable tile.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return errors.New("scenario: id must not be empty")
	}
	if len(s.Features) == 0 {
		return fmt.Errorf("scenario %q: layout must not be empty", s.ID)
	}
	teams := map[unit.Team]int{}
	ids := map[string]struct{}{}
	taken := map[grid.Coord]string{}
	for _, u := range s.Units {
		if u.ID == "" {
			return fmt.Errorf("scenario %q: unit %q has empty id", s.ID, u.Name)
		}
		if _, dup := ids[u.ID]; dup {
			return fmt.Errorf("scenario %q: duplicate unit id %q", s.ID, u.ID)
		}
		ids[u.ID] = struct{}{}
		f, ok := s.Features[u.Start]
		if !ok {
			return fmt.Errorf("scenario %q: unit %q starts off the map at %s", s.ID, u.ID, u.Start)
		}
		if f == grid.FeatureUnmovable {
			return fmt.Errorf("scenario %q: unit %q starts on an unmovable tile at %s", s.ID, u.ID, u.Start)
		}
		if other, dup := taken[u.Start]; dup {
			return fmt.Errorf("scenario %q: units %q and %q both start at %s", s.ID, other, u.ID, u.Start)
		}
		taken[u.Start] = u.ID
		teams[u.Team]++
	}
	if teams[unit.TeamPlayer] == 0 || teams[unit.TeamEnemy] == 0 {
		return fmt.Errorf("scenario %q: both teams need at least one unit", s.ID)
	}
	if s.MaxSets < 0 {
		return fmt.Errorf("scenario %q: max_sets must be >= 0, got %d", s.ID, s.MaxSets)
	}
	return nil
}

// Build instantiates the map and roster against rules. An attack name rules
// does not define is logged and left off the unit; a unit type the type chart
// does not declare is an error.
//
// Precondition: rules must be non-nil; s must be valid.
// Postcondition: Returns a Map with every layout tile and a Roster with every unit at full life.
func (s *Scenario) Build(rules *ruleset.Rules, logger *zap.Logger) (*grid.Map, *unit.Roster, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tiles := make([]*grid.Tile, 0, len(s.Features))
	for c, f := range s.Features {
		tiles = append(tiles, grid.NewTile(c, f))
	}
	m, err := grid.NewMap(tiles, rules.Terrain, logger.Named("grid"))
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %q: %w", s.ID, err)
	}

	units := make([]*unit.Unit, 0, len(s.Units))
	for _, us := range s.Units {
		if us.Type != "" && !rules.Types.Known(us.Type) {
			return nil, nil, fmt.Errorf("scenario %q: unit %q: unknown type %q", s.ID, us.ID, us.Type)
		}
		def := unit.Definition{
			ID:      us.ID,
			Name:    us.Name,
			Team:    us.Team,
			Role:    us.Role,
			Type:    us.Type,
			MaxLife: us.MaxLife,
			Power:   us.Power,
			Defence: us.Defence,
			Start:   us.Start,
		}
		for _, name := range us.Attacks {
			a, ok := rules.Attack(name)
			if !ok {
				logger.Warn("unknown attack; skipping",
					zap.String("scenario", s.ID),
					zap.String("unit", us.ID),
					zap.String("attack", name),
				)
				continue
			}
			def.Attacks = append(def.Attacks, a)
		}
		if err := def.Validate(); err != nil {
			return nil, nil, fmt.Errorf("scenario %q: %w", s.ID, err)
		}
		units = append(units, unit.New(def, rules.MoveBudget(def.Role)))
	}
	roster, err := unit.NewRoster(units)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %q: %w", s.ID, err)
	}
	return m, roster, nil
}
