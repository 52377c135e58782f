package battle

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Phase is the step of the acting unit's turn.
type Phase int

const (
	PhaseCheck Phase = iota
	PhaseMove
	PhaseAttack
	PhaseLoad
	PhaseEnded
)

// String returns the state name used by the phase machine.
func (p Phase) String() string {
	switch p {
	case PhaseCheck:
		return "check"
	case PhaseMove:
		return "move"
	case PhaseAttack:
		return "attack"
	case PhaseLoad:
		return "load"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

func parsePhase(s string) Phase {
	switch s {
	case "check":
		return PhaseCheck
	case "move":
		return PhaseMove
	case "attack":
		return PhaseAttack
	case "load":
		return PhaseLoad
	default:
		return PhaseEnded
	}
}

// Phase machine events.
const (
	evConfirm    = "confirm"     // check -> move
	evMoveDone   = "move_done"   // move -> attack
	evAttackDone = "attack_done" // attack -> load
	evEndTurn    = "end_turn"    // move|attack -> load
	evNext       = "next"        // load -> check
	evEnd        = "end"         // any -> ended
)

// newMachine builds the Check -> Move -> Attack -> Load cycle. Entry actions
// are run by the controller after each event returns, never from callbacks.
func newMachine(logger *zap.Logger) *fsm.FSM {
	check, move, attack, load, ended :=
		PhaseCheck.String(), PhaseMove.String(), PhaseAttack.String(), PhaseLoad.String(), PhaseEnded.String()
	return fsm.NewFSM(
		check,
		fsm.Events{
			{Name: evConfirm, Src: []string{check}, Dst: move},
			{Name: evMoveDone, Src: []string{move}, Dst: attack},
			{Name: evAttackDone, Src: []string{attack}, Dst: load},
			{Name: evEndTurn, Src: []string{move, attack}, Dst: load},
			{Name: evNext, Src: []string{load}, Dst: check},
			{Name: evEnd, Src: []string{check, move, attack, load}, Dst: ended},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("phase transition",
					zap.String("event", e.Event),
					zap.String("from", e.Src),
					zap.String("to", e.Dst),
				)
			},
		},
	)
}
