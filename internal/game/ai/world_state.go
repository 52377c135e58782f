package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// UnitState captures a unit's planning-relevant state.
type UnitState struct {
	UID     string
	Name    string
	Team    unit.Team
	Life    int
	MaxLife int
	Pos     grid.Coord
}

// LifePercent returns current life as a percentage of MaxLife; 0 if MaxLife == 0.
func (u *UnitState) LifePercent() float64 {
	if u.MaxLife <= 0 {
		return 0
	}
	return float64(u.Life) / float64(u.MaxLife) * 100
}

// WorldState is the snapshot passed to the planner for the acting unit.
//
// Invariant: Self must not be nil.
type WorldState struct {
	Self  *UnitState
	Units []*UnitState
	// Options are the attacks Self could make right now.
	Options []battle.Option
	Set     int
	Cycle   int
}

// BuildWorldState constructs a WorldState for the acting unit of s.
//
// Precondition: s.Active must not be nil.
// Postcondition: ws.Self.UID == s.Active.ID; every living unit is represented.
func BuildWorldState(s battle.Snapshot, opts []battle.Option) *WorldState {
	ws := &WorldState{
		Self:    stateOf(*s.Active),
		Options: opts,
		Set:     s.Set,
		Cycle:   s.Cycle,
	}
	for _, u := range s.Units {
		ws.Units = append(ws.Units, stateOf(u))
	}
	return ws
}

func stateOf(u unit.Unit) *UnitState {
	return &UnitState{
		UID:     u.ID,
		Name:    u.Name,
		Team:    u.Team,
		Life:    u.Life,
		MaxLife: u.MaxLife,
		Pos:     u.Pos,
	}
}

// Enemies returns all living units opposing Self.
//
// Postcondition: returned slice contains no defeated units and no allies.
func (ws *WorldState) Enemies() []*UnitState {
	var out []*UnitState
	for _, u := range ws.Units {
		if u.Life > 0 && u.Team != ws.Self.Team {
			out = append(out, u)
		}
	}
	return out
}

// Allies returns all living units on Self's team, Self excluded.
func (ws *WorldState) Allies() []*UnitState {
	var out []*UnitState
	for _, u := range ws.Units {
		if u.Life > 0 && u.UID != ws.Self.UID && u.Team == ws.Self.Team {
			out = append(out, u)
		}
	}
	return out
}

// NearestEnemy returns the living enemy closest to Self by Manhattan distance, or nil.
//
// Postcondition: ties are broken by order in Units.
func (ws *WorldState) NearestEnemy() *UnitState {
	var best *UnitState
	for _, e := range ws.Enemies() {
		if best == nil || ws.Self.Pos.Distance(e.Pos) < ws.Self.Pos.Distance(best.Pos) {
			best = e
		}
	}
	return best
}

// WeakestEnemy returns the living enemy with the lowest life percentage, or nil.
//
// Postcondition: ties are broken by order in Units.
func (ws *WorldState) WeakestEnemy() *UnitState {
	var weakest *UnitState
	for _, e := range ws.Enemies() {
		if weakest == nil || e.LifePercent() < weakest.LifePercent() {
			weakest = e
		}
	}
	return weakest
}

// ResolveTarget maps a unit-naming policy to a UID. Other policies are
// returned unchanged; a policy naming no living unit yields "".
func (ws *WorldState) ResolveTarget(token string) string {
	var u *UnitState
	switch token {
	case TargetNearest:
		u = ws.NearestEnemy()
	case TargetWeakest:
		u = ws.WeakestEnemy()
	case "":
		return TargetWeighted
	default:
		return token
	}
	if u == nil {
		return ""
	}
	return u.UID
}
