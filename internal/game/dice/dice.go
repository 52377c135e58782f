// Package dice provides the randomness abstraction used by combat resolution
// and the AI agents.
package dice

// Source is the randomness provider for every roll in a battle.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Percent rolls uniformly in [0, 100] inclusive.
//
// Postcondition: 0 <= result <= 100.
func Percent(src Source) int {
	return src.Intn(101)
}

// Fraction draws a value in [lo, hi] at a resolution of 1/1000.
//
// Precondition: lo <= hi.
// Postcondition: lo <= result <= hi.
func Fraction(src Source, lo, hi float64) float64 {
	step := src.Intn(1001)
	return lo + (hi-lo)*float64(step)/1000
}
