package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given script set's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(set, hook string, args ...lua.LValue) (lua.LValue, error)
}

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	Action string // ActionAttack or ActionEndTurn
	// Target is a target policy, or the UID a unit-naming policy resolved to.
	Target string
}

// Planner evaluates an HTN domain for the acting unit and produces an ordered
// action plan for its attack phase.
//
// Invariant: domain and caller must not be nil.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	set    string
}

// NewPlanner constructs a Planner whose preconditions run in script set set.
//
// Precondition: domain and caller must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, set string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	return &Planner{domain: domain, caller: caller, set: set}
}

// Domain returns the planner's domain ID.
func (p *Planner) Domain() string { return p.domain.ID }

// Plan evaluates the HTN domain against state and returns an ordered plan.
//
// Precondition: state and state.Self must not be nil.
// Postcondition: returns non-nil slice (may be empty); never returns error for Lua failures
// (they are treated as precondition-false).
func (p *Planner) Plan(state *WorldState) ([]PlannedAction, error) {
	if state == nil || state.Self == nil {
		return nil, fmt.Errorf("ai.Planner.Plan: state and state.Self must not be nil")
	}

	taskQueue := []string{RootTask}
	result := []PlannedAction{}

	const maxDepth = 32
	for steps := 0; len(taskQueue) > 0 && steps < maxDepth; steps++ {
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			target := ""
			if op.Action == ActionAttack {
				target = state.ResolveTarget(op.Target)
			}
			result = append(result, PlannedAction{Action: op.Action, Target: target})
			continue
		}

		method := p.findApplicableMethod(current, state)
		if method == nil {
			continue
		}
		subtasks := make([]string, 0, len(method.Subtasks)+len(taskQueue))
		subtasks = append(subtasks, method.Subtasks...)
		taskQueue = append(subtasks, taskQueue...)
	}
	return result, nil
}

// findApplicableMethod returns the first Method for taskID whose precondition passes,
// or nil if none applies.
//
// Methods are tried in declaration order. An empty Precondition always passes.
func (p *Planner) findApplicableMethod(taskID string, state *WorldState) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if m.Precondition == "" {
			return m
		}
		val, _ := p.caller.CallHook(p.set, m.Precondition, lua.LString(state.Self.UID))
		if val == lua.LTrue {
			return m
		}
	}
	return nil
}
