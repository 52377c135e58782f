package ruleset

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// yamlRulesFile is the top-level YAML structure of a rules file.
type yamlRulesFile struct {
	Terrain map[string]grid.TerrainStats `yaml:"terrain"`
	Roles   map[string]int               `yaml:"roles"`
	Combat  *yamlCombat                  `yaml:"combat"`
	Types   []yamlType                   `yaml:"types"`
	Attacks []yamlAttack                 `yaml:"attacks"`
}

type yamlCombat struct {
	DamageMultipliers    map[string]float64 `yaml:"damage_multipliers"`
	CriticalRates        map[string]int     `yaml:"critical_rates"`
	CriticalMultiplier   float64            `yaml:"critical_multiplier"`
	SameTypeMultiplier   float64            `yaml:"same_type_multiplier"`
	BadMatchupMultiplier float64            `yaml:"bad_matchup_multiplier"`
	RandomMin            float64            `yaml:"random_min"`
	RandomMax            float64            `yaml:"random_max"`
}

type yamlType struct {
	ID             string   `yaml:"id"`
	Strong         []string `yaml:"strong"`
	SlightlyStrong []string `yaml:"slightly_strong"`
	SlightlyWeak   []string `yaml:"slightly_weak"`
	Weak           []string `yaml:"weak"`
}

type yamlAttack struct {
	Name      string  `yaml:"name"`
	Scale     string  `yaml:"scale"`
	Tier      string  `yaml:"tier"`
	Type      string  `yaml:"type"`
	Power     int     `yaml:"power"`
	Accuracy  int     `yaml:"accuracy"`
	Range     []int   `yaml:"range"`
	Pattern   [][]int `yaml:"pattern"`
	Rotatable bool    `yaml:"rotatable"`
}

// LoadFromFile reads and validates a rules YAML file.
//
// Precondition: path must point to a readable YAML rules file.
// Postcondition: Returns validated Rules or a non-nil error.
func LoadFromFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses rules from YAML. Sections that are omitted keep their defaults.
//
// Postcondition: Returns validated Rules or a non-nil error; unknown YAML keys are rejected.
func LoadFromBytes(data []byte) (*Rules, error) {
	var file yamlRulesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}

	rules := NewRules()

	for name, stats := range file.Terrain {
		f, err := grid.ParseFeature(name)
		if err != nil {
			return nil, fmt.Errorf("terrain: %w", err)
		}
		rules.Terrain[f] = stats
	}

	for name, budget := range file.Roles {
		role, err := ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("roles: %w", err)
		}
		if budget < 0 {
			return nil, fmt.Errorf("roles: budget for %s must be >= 0, got %d", role, budget)
		}
		rules.MoveBudgets[role] = budget
	}

	if file.Combat != nil {
		table, err := convertCombat(*file.Combat)
		if err != nil {
			return nil, err
		}
		rules.Combat = table
	}
	if err := rules.Combat.Validate(); err != nil {
		return nil, err
	}

	for _, yt := range file.Types {
		if yt.ID == "" {
			return nil, fmt.Errorf("types: type has empty id")
		}
		from := TypeID(yt.ID)
		rules.Types.AddType(from)
		for _, rel := range []struct {
			to []string
			a  Affinity
		}{
			{yt.Strong, AffinityStrong},
			{yt.SlightlyStrong, AffinitySlightlyStrong},
			{yt.SlightlyWeak, AffinitySlightlyWeak},
			{yt.Weak, AffinityWeak},
		} {
			for _, to := range rel.to {
				rules.Types.Set(from, TypeID(to), rel.a)
			}
		}
	}

	for _, ya := range file.Attacks {
		a, err := convertAttack(ya)
		if err != nil {
			return nil, err
		}
		if a.Type != "" && !rules.Types.Known(a.Type) {
			return nil, fmt.Errorf("attack %q: unknown type %q", a.Name, a.Type)
		}
		if err := rules.AddAttack(a); err != nil {
			return nil, err
		}
	}

	return rules, nil
}

func convertCombat(yc yamlCombat) (CombatTable, error) {
	table := DefaultCombatTable()
	for k, v := range yc.DamageMultipliers {
		a, err := ParseAffinity(k)
		if err != nil {
			return CombatTable{}, fmt.Errorf("combat.damage_multipliers: %w", err)
		}
		table.DamageMultipliers[a] = v
	}
	for k, v := range yc.CriticalRates {
		a, err := ParseAffinity(k)
		if err != nil {
			return CombatTable{}, fmt.Errorf("combat.critical_rates: %w", err)
		}
		table.CriticalRates[a] = v
	}
	if yc.CriticalMultiplier != 0 {
		table.CriticalMultiplier = yc.CriticalMultiplier
	}
	if yc.SameTypeMultiplier != 0 {
		table.SameTypeMultiplier = yc.SameTypeMultiplier
	}
	if yc.BadMatchupMultiplier != 0 {
		table.BadMatchupMultiplier = yc.BadMatchupMultiplier
	}
	if yc.RandomMin != 0 {
		table.RandomMin = yc.RandomMin
	}
	if yc.RandomMax != 0 {
		table.RandomMax = yc.RandomMax
	}
	return table, nil
}

func convertAttack(ya yamlAttack) (*Attack, error) {
	scale, err := parseScale(ya.Scale)
	if err != nil {
		return nil, fmt.Errorf("attack %q: %w", ya.Name, err)
	}
	tier, err := parseTier(ya.Tier)
	if err != nil {
		return nil, fmt.Errorf("attack %q: %w", ya.Name, err)
	}
	a := &Attack{
		Name:      ya.Name,
		Scale:     scale,
		Tier:      tier,
		Type:      TypeID(ya.Type),
		Power:     ya.Power,
		Accuracy:  ya.Accuracy,
		Rotatable: ya.Rotatable,
	}
	switch len(ya.Range) {
	case 0:
		a.RangeMin, a.RangeMax = 1, 1
	case 1:
		a.RangeMin, a.RangeMax = ya.Range[0], ya.Range[0]
	case 2:
		a.RangeMin, a.RangeMax = ya.Range[0], ya.Range[1]
	default:
		return nil, fmt.Errorf("attack %q: range must have one or two bounds", ya.Name)
	}
	for _, p := range ya.Pattern {
		if len(p) != 2 {
			return nil, fmt.Errorf("attack %q: pattern offsets must be [x, y] pairs", ya.Name)
		}
		a.Pattern = append(a.Pattern, grid.Coord{X: p[0], Y: p[1]})
	}
	return a, nil
}
