package battle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommand rejects a command that is not legal in the current
	// phase; the wrapping error carries a hint for the player.
	ErrInvalidCommand = errors.New("cannot do that")
	// ErrInputLocked rejects a command from the side that is not acting.
	ErrInputLocked = errors.New("input locked")
	// ErrBattleEnded rejects every command once the battle is over.
	ErrBattleEnded = errors.New("battle has ended")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, fmt.Sprintf(format, args...))
}
