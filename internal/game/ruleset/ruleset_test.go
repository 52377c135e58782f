package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
)

const rulesYAML = `
terrain:
  forest: {move_cost: 2, damage_reduction: 0.25, avoid_penalty: 15}
roles:
  forward: 5
  back: 1
combat:
  critical_multiplier: 2.5
  critical_rates: {strong: 30}
types:
  - id: fire
    strong: [wood]
    weak: [water]
  - id: water
    slightly_strong: [fire]
  - id: wood
attacks:
  - name: Ember
    scale: single
    tier: low
    type: fire
    power: 20
    accuracy: 90
    range: [1, 2]
  - name: Flame Fan
    scale: range
    tier: mid
    type: fire
    power: 25
    accuracy: 80
    pattern: [[1, 0], [2, 0], [2, 1], [2, -1]]
    rotatable: true
`

func TestLoadFromBytes_Full(t *testing.T) {
	rules, err := ruleset.LoadFromBytes([]byte(rulesYAML))
	require.NoError(t, err)

	forest, ok := rules.Terrain.Lookup(grid.FeatureForest)
	require.True(t, ok)
	assert.Equal(t, 0.25, forest.DamageReduction)
	// untouched features keep defaults
	rock, _ := rules.Terrain.Lookup(grid.FeatureRock)
	assert.Equal(t, 3, rock.MoveCost)

	assert.Equal(t, 5, rules.MoveBudget(ruleset.RoleForward))
	assert.Equal(t, 3, rules.MoveBudget(ruleset.RoleMiddle))
	assert.Equal(t, 1, rules.MoveBudget(ruleset.RoleBack))

	assert.Equal(t, 2.5, rules.Combat.CriticalMultiplier)
	assert.Equal(t, 30, rules.Combat.CriticalRates[ruleset.AffinityStrong])
	assert.Equal(t, 10, rules.Combat.CriticalRates[ruleset.AffinityNeutral])

	ember, ok := rules.Attack("Ember")
	require.True(t, ok)
	assert.Equal(t, ruleset.ScaleSingle, ember.Scale)
	assert.Equal(t, 1, ember.RangeMin)
	assert.Equal(t, 2, ember.RangeMax)

	fan, ok := rules.Attack("Flame Fan")
	require.True(t, ok)
	assert.Equal(t, ruleset.ScaleRange, fan.Scale)
	assert.Equal(t, ruleset.TierMid, fan.Tier)
	assert.True(t, fan.Rotatable)
	assert.Equal(t, []grid.Coord{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: -1}}, fan.Pattern)

	names := []string{}
	for _, a := range rules.Attacks() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Ember", "Flame Fan"}, names)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesYAML), 0644))
	rules, err := ruleset.LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, rules.Attacks(), 2)
}

func TestLoadFromBytes_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "bogus: 1\n",
		"unknown terrain":  "terrain:\n  lava: {move_cost: 1}\n",
		"unknown role":     "roles:\n  flank: 2\n",
		"negative budget":  "roles:\n  back: -1\n",
		"unknown affinity": "combat:\n  critical_rates: {mighty: 1}\n",
		"empty type id":    "types:\n  - strong: [x]\n",
		"empty pattern":    "attacks:\n  - name: Burst\n    scale: range\n",
		"bad range":        "attacks:\n  - name: Shot\n    range: [3, 1]\n",
		"unknown type":     "attacks:\n  - name: Shot\n    type: plasma\n",
		"duplicate attack": "attacks:\n  - name: Shot\n  - name: Shot\n",
		"bad tier":         "attacks:\n  - name: Shot\n    tier: ultra\n",
		"bad offset":       "attacks:\n  - name: Burst\n    scale: range\n    pattern: [[1]]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ruleset.LoadFromBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestTypeChart_DefaultsToNeutral(t *testing.T) {
	c := ruleset.NewTypeChart()
	assert.Equal(t, ruleset.AffinityNeutral, c.Tier("fire", "stone"))
	assert.False(t, c.IsStrongAgainst("fire", "stone"))
	assert.False(t, c.IsWeakAgainst("fire", "stone"))
}

// A strong relation in one direction must not create a weak relation in the other.
func TestTypeChart_NotMirrored(t *testing.T) {
	rules, err := ruleset.LoadFromBytes([]byte(rulesYAML))
	require.NoError(t, err)
	chart := rules.Types

	assert.Equal(t, ruleset.AffinityStrong, chart.Tier("fire", "wood"))
	assert.Equal(t, ruleset.AffinityNeutral, chart.Tier("wood", "fire"))
	assert.False(t, chart.IsWeakAgainst("wood", "fire"))

	assert.Equal(t, ruleset.AffinityWeak, chart.Tier("fire", "water"))
	assert.Equal(t, ruleset.AffinitySlightlyStrong, chart.Tier("water", "fire"))
}

// IsWeakAgainst must depend on its argument.
func TestTypeChart_WeakAgainstUsesArgument(t *testing.T) {
	c := ruleset.NewTypeChart()
	c.Set("fire", "water", ruleset.AffinityWeak)
	assert.True(t, c.IsWeakAgainst("fire", "water"))
	assert.False(t, c.IsWeakAgainst("fire", "wood"))
}

func TestProperty_TypeChart_SetDoesNotMirror(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := ruleset.TypeID(rapid.StringMatching(`[a-z]{3,6}`).Draw(rt, "a"))
		b := ruleset.TypeID(rapid.StringMatching(`[A-Z]{3,6}`).Draw(rt, "b"))
		tier := rapid.SampledFrom(ruleset.Affinities).Draw(rt, "tier")
		c := ruleset.NewTypeChart()
		c.Set(a, b, tier)
		assert.Equal(rt, tier, c.Tier(a, b))
		assert.Equal(rt, ruleset.AffinityNeutral, c.Tier(b, a))
	})
}

func TestCombatTable_ValidateMissingTier(t *testing.T) {
	table := ruleset.DefaultCombatTable()
	require.NoError(t, table.Validate())
	delete(table.DamageMultipliers, ruleset.AffinityStrong)
	assert.Error(t, table.Validate())
}

func TestParseRole(t *testing.T) {
	r, err := ruleset.ParseRole("Back")
	require.NoError(t, err)
	assert.Equal(t, ruleset.RoleBack, r)
	_, err = ruleset.ParseRole("flank")
	assert.Error(t, err)
}
