package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every draw is auditable.
// All rolls are logged at debug level with the range and the result.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped Source and logs the result, so a Roller is itself a Source.
//
// Precondition: n > 0.
// Postcondition: result in [0, n); one debug entry is written.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll",
		zap.Int("range", n),
		zap.Int("result", v),
	)
	return v
}
