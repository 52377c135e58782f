package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// BindScripts points the engine.* queries of mgr at the live state of ctl.
//
// Precondition: mgr and ctl must be non-nil; no hook may be running.
func BindScripts(mgr *scripting.Manager, ctl *battle.Controller) {
	mgr.ListUnits = func() []*scripting.UnitInfo {
		s := ctl.Snapshot()
		out := make([]*scripting.UnitInfo, 0, len(s.Units))
		for i := range s.Units {
			out = append(out, unitInfo(&s.Units[i]))
		}
		return out
	}
	mgr.GetUnit = func(uid string) *scripting.UnitInfo {
		for _, u := range ctl.Snapshot().Units {
			if u.ID == uid {
				return unitInfo(&u)
			}
		}
		return nil
	}
	mgr.GetOptions = func(uid string) []*scripting.OptionInfo {
		s := ctl.Snapshot()
		if s.Active == nil || s.Active.ID != uid {
			return nil
		}
		return optionInfos(ctl.AttackOptions())
	}
}

func unitInfo(u *unit.Unit) *scripting.UnitInfo {
	return &scripting.UnitInfo{
		UID:     u.ID,
		Name:    u.Name,
		Team:    u.Team.String(),
		Role:    u.Role.String(),
		State:   u.State.String(),
		Life:    u.Life,
		MaxLife: u.MaxLife,
		X:       u.Pos.X,
		Y:       u.Pos.Y,
	}
}

func optionInfos(opts []battle.Option) []*scripting.OptionInfo {
	out := make([]*scripting.OptionInfo, 0, len(opts))
	for _, o := range opts {
		out = append(out, &scripting.OptionInfo{
			Attack:   o.Attack,
			Tier:     o.Tier.String(),
			Expected: o.Expected,
			Lethal:   o.Lethal,
			Targets:  len(o.Targets),
		})
	}
	return out
}
