package combat

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Resolver rolls and applies attacks using one rule set and map.
type Resolver struct {
	rules  *ruleset.Rules
	m      *grid.Map
	src    dice.Source
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: rules, m and src must be non-nil.
func NewResolver(rules *ruleset.Rules, m *grid.Map, src dice.Source, logger *zap.Logger) *Resolver {
	if rules == nil || m == nil || src == nil {
		panic("combat.NewResolver: rules, map and source must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{rules: rules, m: m, src: src, logger: logger}
}

// HitChance returns a's accuracy less the avoid penalty of the tile at pos.
func (r *Resolver) HitChance(a *ruleset.Attack, pos grid.Coord) int {
	return a.Accuracy - r.m.Stats(pos).AvoidPenalty
}

// Matchup returns the tier of a's type against the defender's type.
func (r *Resolver) Matchup(a *ruleset.Attack, defender *unit.Unit) ruleset.Affinity {
	return r.rules.Types.Tier(a.Type, defender.Type)
}

// typeMultiplier looks up the damage multiplier for tier.
// A tier with no entry degrades to 1.0 and is logged.
func (r *Resolver) typeMultiplier(tier ruleset.Affinity) float64 {
	m, ok := r.rules.Combat.DamageMultipliers[tier]
	if !ok {
		r.logger.Warn("affinity tier has no damage multiplier; using 1.0", zap.Stringer("tier", tier))
		return 1.0
	}
	return m
}

// critRate looks up the critical percentage for tier.
func (r *Resolver) critRate(tier ruleset.Affinity) int {
	rate, ok := r.rules.Combat.CriticalRates[tier]
	if !ok {
		r.logger.Warn("affinity tier has no critical rate; using 0", zap.Stringer("tier", tier))
		return 0
	}
	return rate
}

// OwnTypeMultiplier rewards a unit using a move of its own type and penalizes
// a move whose type is strong against the unit's own type.
func (r *Resolver) OwnTypeMultiplier(attacker *unit.Unit, a *ruleset.Attack) float64 {
	switch {
	case a.Type != "" && a.Type == attacker.Type:
		return r.rules.Combat.SameTypeMultiplier
	case r.rules.Types.IsStrongAgainst(a.Type, attacker.Type):
		return r.rules.Combat.BadMatchupMultiplier
	default:
		return 1.0
	}
}

// Damage evaluates the damage formula for one landed attack.
//
// damage = round(power × move power × type × own / (defence × (1 + reduction)) × factor)
// A critical replaces the type multiplier with the critical multiplier.
//
// Postcondition: Returns >= 0.
func (r *Resolver) Damage(attacker, defender *unit.Unit, a *ruleset.Attack, critical bool, factor float64) int {
	mult := r.typeMultiplier(r.Matchup(a, defender))
	if critical {
		mult = r.rules.Combat.CriticalMultiplier
	}
	defence := float64(defender.Defence)
	if defence <= 0 {
		defence = 1
	}
	reduction := r.m.Stats(defender.Pos).DamageReduction
	raw := float64(attacker.Power) * float64(a.Power) * mult * r.OwnTypeMultiplier(attacker, a) /
		(defence * (1 + reduction)) * factor
	dmg := int(math.Round(raw))
	if dmg < 0 || math.IsNaN(raw) {
		return 0
	}
	return dmg
}

// Resolve rolls a against defender without mutating either unit.
// The hit roll comes first; the critical roll and the random factor are drawn only on a hit.
//
// Precondition: attacker, defender and a must be non-nil.
// Postcondition: Damage == 0 iff Outcome == Miss or the formula rounds to zero.
func (r *Resolver) Resolve(attacker, defender *unit.Unit, a *ruleset.Attack) Result {
	res := Result{
		AttackerID: attacker.ID,
		TargetID:   defender.ID,
		Attack:     a.Name,
		HitChance:  r.HitChance(a, defender.Pos),
		LifeAfter:  defender.Life,
	}
	res.HitRoll = dice.Percent(r.src)
	if res.HitRoll > res.HitChance {
		res.Outcome = Miss
		return res
	}
	res.Outcome = Hit
	res.CritRate = r.critRate(r.Matchup(a, defender))
	res.CritRoll = dice.Percent(r.src)
	if res.CritRoll <= res.CritRate {
		res.Outcome = Critical
	}
	res.RandomFactor = dice.Fraction(r.src, r.rules.Combat.RandomMin, r.rules.Combat.RandomMax)
	res.Damage = r.Damage(attacker, defender, a, res.Outcome == Critical, res.RandomFactor)
	res.LifeAfter = max(defender.Life-res.Damage, 0)
	res.Defeated = res.LifeAfter == 0
	return res
}

// Apply subtracts res.Damage from defender.
//
// Postcondition: defender.Life >= 0; res.LifeAfter and res.Defeated reflect the defender.
func (r *Resolver) Apply(defender *unit.Unit, res *Result) {
	res.Defeated = defender.ApplyDamage(res.Damage)
	res.LifeAfter = defender.Life
	r.logger.Debug("attack resolved",
		zap.String("attacker", res.AttackerID),
		zap.String("target", res.TargetID),
		zap.String("attack", res.Attack),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("damage", res.Damage),
		zap.Int("life_after", res.LifeAfter),
	)
}

// Strike resolves a against defender and applies the result.
func (r *Resolver) Strike(attacker, defender *unit.Unit, a *ruleset.Attack) Result {
	res := r.Resolve(attacker, defender, a)
	r.Apply(defender, &res)
	return res
}

// probability returns P(roll <= threshold) for a roll uniform over [0,100].
func probability(threshold int) float64 {
	return min(max(float64(threshold+1)/101, 0), 1)
}

// Expected estimates the average result of a against defender without rolling.
//
// Postcondition: 0 <= HitProbability <= 1; MeanDamage >= 0.
func (r *Resolver) Expected(attacker, defender *unit.Unit, a *ruleset.Attack) Expectation {
	hitP := probability(r.HitChance(a, defender.Pos))
	critP := probability(r.critRate(r.Matchup(a, defender)))
	factor := (r.rules.Combat.RandomMin + r.rules.Combat.RandomMax) / 2
	normal := float64(r.Damage(attacker, defender, a, false, factor))
	crit := float64(r.Damage(attacker, defender, a, true, factor))
	return Expectation{
		HitProbability: hitP,
		MeanDamage:     hitP * (normal*(1-critP) + crit*critP),
		Lethal:         hitP > 0 && int(normal) >= defender.Life,
	}
}
