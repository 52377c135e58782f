// Package combat resolves attacks: hit, critical, damage and its application.
package combat

// Outcome is the result tier of one attack against one defender.
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Critical
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single attack against a single defender.
type Result struct {
	// AttackerID is the attacking unit's ID.
	AttackerID string
	// TargetID is the defending unit's ID.
	TargetID string
	// Attack is the name of the attack used.
	Attack string
	// HitChance is accuracy minus the defender tile's avoid penalty.
	HitChance int
	// HitRoll is the raw roll in [0,100].
	HitRoll int
	// CritRate is the critical percentage for the type matchup; zero on a miss.
	CritRate int
	// CritRoll is the raw critical roll in [0,100]; zero on a miss.
	CritRoll int
	// Outcome is Miss, Hit or Critical.
	Outcome Outcome
	// RandomFactor is the spread factor applied to damage; zero on a miss.
	RandomFactor float64
	// Damage is the rounded damage dealt; zero on a miss.
	Damage int
	// LifeAfter is the defender's life once the result is applied.
	LifeAfter int
	// Defeated is true when the defender's life reached zero.
	Defeated bool
}

// Landed reports whether the attack connected.
func (r Result) Landed() bool { return r.Outcome != Miss }

// Expectation summarizes the average outcome of an attack before it is rolled.
type Expectation struct {
	// HitProbability is in [0,1].
	HitProbability float64
	// MeanDamage is the expected damage counting misses as zero.
	MeanDamage float64
	// Lethal is true when an average non-critical hit defeats the defender.
	Lethal bool
}
