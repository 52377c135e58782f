package grid

// TerrainStats are the fixed constants a terrain feature contributes to
// movement and combat.
type TerrainStats struct {
	// MoveCost is the movement budget spent entering a tile of this feature.
	MoveCost int `yaml:"move_cost"`
	// DamageReduction is the fraction added to the defender's divisor (0.2 = +20%).
	DamageReduction float64 `yaml:"damage_reduction"`
	// AvoidPenalty is subtracted, in percentage points, from an attacker's accuracy.
	AvoidPenalty int `yaml:"avoid_penalty"`
}

// TerrainTable maps every feature to its stats.
type TerrainTable map[Feature]TerrainStats

// DefaultTerrain returns the stock terrain constants.
// Unmovable tiles cost more than any role budget, so they are never reachable.
func DefaultTerrain() TerrainTable {
	return TerrainTable{
		FeaturePlain:     {MoveCost: 1, DamageReduction: 0, AvoidPenalty: 0},
		FeatureForest:    {MoveCost: 2, DamageReduction: 0.2, AvoidPenalty: 15},
		FeatureRock:      {MoveCost: 3, DamageReduction: 0.4, AvoidPenalty: 25},
		FeatureUnmovable: {MoveCost: 99, DamageReduction: 0, AvoidPenalty: 0},
	}
}

// Lookup returns the stats for f. A feature with no entry yields zero stats and false.
func (tt TerrainTable) Lookup(f Feature) (TerrainStats, bool) {
	s, ok := tt[f]
	return s, ok
}
