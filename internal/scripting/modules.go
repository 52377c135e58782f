package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.roll(n)            -> integer in [1, n]
//	engine.dice.percent()          -> integer in [0, 100]
//	engine.unit.get(uid)           -> unit table or nil
//	engine.unit.life_pct(uid)      -> number or nil
//	engine.battle.enemies(uid)     -> array of unit tables
//	engine.battle.allies(uid)      -> array of unit tables, self excluded
//	engine.battle.options(uid)     -> array of option tables
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "unit", m.unitModule(L))
	L.SetField(engine, "battle", m.battleModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n < 1 {
			L.ArgError(1, "die size must be >= 1")
			return 0
		}
		L.Push(lua.LNumber(m.roller.Intn(n) + 1))
		return 1
	}))
	L.SetField(mod, "percent", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(dice.Percent(m.roller)))
		return 1
	}))
	return mod
}

func (m *Manager) unitModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(func(L *lua.LState) int {
		u := m.lookup(L.CheckString(1))
		if u == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(unitToTable(L, u))
		return 1
	}))
	L.SetField(mod, "life_pct", L.NewFunction(func(L *lua.LState) int {
		u := m.lookup(L.CheckString(1))
		if u == nil || u.MaxLife <= 0 {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(float64(u.Life) / float64(u.MaxLife) * 100))
		return 1
	}))
	return mod
}

func (m *Manager) battleModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "enemies", L.NewFunction(func(L *lua.LState) int {
		L.Push(m.sideTable(L, L.CheckString(1), false))
		return 1
	}))
	L.SetField(mod, "allies", L.NewFunction(func(L *lua.LState) int {
		L.Push(m.sideTable(L, L.CheckString(1), true))
		return 1
	}))
	L.SetField(mod, "options", L.NewFunction(func(L *lua.LState) int {
		uid := L.CheckString(1)
		out := L.NewTable()
		if m.GetOptions != nil {
			for _, o := range m.GetOptions(uid) {
				out.Append(optionToTable(L, o))
			}
		}
		L.Push(out)
		return 1
	}))
	return mod
}

func (m *Manager) lookup(uid string) *UnitInfo {
	if m.GetUnit == nil {
		return nil
	}
	return m.GetUnit(uid)
}

// sideTable lists the living units on uid's side (allies) or the other side.
func (m *Manager) sideTable(L *lua.LState, uid string, allies bool) *lua.LTable {
	out := L.NewTable()
	self := m.lookup(uid)
	if self == nil || m.ListUnits == nil {
		return out
	}
	for _, u := range m.ListUnits() {
		if u.UID == uid || u.Life <= 0 {
			continue
		}
		if (u.Team == self.Team) == allies {
			out.Append(unitToTable(L, u))
		}
	}
	return out
}

func unitToTable(L *lua.LState, u *UnitInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "uid", lua.LString(u.UID))
	L.SetField(t, "name", lua.LString(u.Name))
	L.SetField(t, "team", lua.LString(u.Team))
	L.SetField(t, "role", lua.LString(u.Role))
	L.SetField(t, "state", lua.LString(u.State))
	L.SetField(t, "life", lua.LNumber(u.Life))
	L.SetField(t, "max_life", lua.LNumber(u.MaxLife))
	L.SetField(t, "x", lua.LNumber(u.X))
	L.SetField(t, "y", lua.LNumber(u.Y))
	return t
}

func optionToTable(L *lua.LState, o *OptionInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "attack", lua.LString(o.Attack))
	L.SetField(t, "tier", lua.LString(o.Tier))
	L.SetField(t, "expected", lua.LNumber(o.Expected))
	L.SetField(t, "lethal", lua.LNumber(o.Lethal))
	L.SetField(t, "targets", lua.LNumber(o.Targets))
	return t
}
