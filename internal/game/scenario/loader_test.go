package scenario_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/scenario"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

const skirmishYAML = `
scenario:
  id: ford
  name: The Ford
  first_team: enemy
  max_sets: 12
  legend:
    ".": plain
    "f": forest
    "#": wall
  layout:
    - "..f."
    - ".# ."
  units:
    - id: a1
      name: Archer
      team: player
      role: back
      type: wood
      max_life: 40
      power: 12
      defence: 8
      attacks: [Jab, Fireball]
      at: [0, 0]
    - id: b1
      team: enemy
      max_life: 50
      power: 10
      defence: 10
      attacks: [Jab]
      at: [3, 1]
`

func testRules(t *testing.T) *ruleset.Rules {
	r := ruleset.NewRules()
	r.Types.AddType("wood")
	require.NoError(t, r.AddAttack(&ruleset.Attack{
		Name: "Jab", Scale: ruleset.ScaleSingle, Tier: ruleset.TierLow, Power: 10, Accuracy: 90, RangeMin: 1, RangeMax: 1,
	}))
	return r
}

func TestLoadFromBytes_Full(t *testing.T) {
	s, err := scenario.LoadFromBytes([]byte(skirmishYAML))
	require.NoError(t, err)

	assert.Equal(t, "ford", s.ID)
	assert.Equal(t, "The Ford", s.Name)
	assert.Equal(t, unit.TeamEnemy, s.FirstTeam)
	assert.Equal(t, 12, s.MaxSets)
	assert.Equal(t, 4, s.Width)
	assert.Equal(t, 2, s.Height)
	assert.Len(t, s.Features, 7, "the space is a hole in the map")
	assert.Equal(t, grid.FeatureForest, s.Features[grid.Coord{X: 2, Y: 0}])
	assert.Equal(t, grid.FeatureUnmovable, s.Features[grid.Coord{X: 1, Y: 1}])
	_, hole := s.Features[grid.Coord{X: 2, Y: 1}]
	assert.False(t, hole)

	require.Len(t, s.Units, 2)
	a := s.Units[0]
	assert.Equal(t, ruleset.RoleBack, a.Role)
	assert.Equal(t, ruleset.TypeID("wood"), a.Type)
	assert.Equal(t, grid.Coord{X: 0, Y: 0}, a.Start)
	b := s.Units[1]
	assert.Equal(t, "b1", b.Name, "name defaults to id")
	assert.Equal(t, ruleset.RoleForward, b.Role, "role defaults to forward")
}

func TestLoadFromBytes_Rejections(t *testing.T) {
	tests := map[string]string{
		"unknown key": `
scenario:
  id: x
  colour: red
`,
		"unknown legend character": `
scenario:
  id: x
  legend: {".": plain}
  layout: [".x"]
`,
		"unknown terrain tag": `
scenario:
  id: x
  legend: {".": lava}
  layout: ["."]
`,
		"one team only": `
scenario:
  id: x
  legend: {".": plain}
  layout: [".."]
  units:
    - {id: a, team: player, max_life: 1, at: [0, 0]}
`,
		"unit on a wall": `
scenario:
  id: x
  legend: {".": plain, "#": wall}
  layout: [".#"]
  units:
    - {id: a, team: player, max_life: 1, at: [0, 0]}
    - {id: b, team: enemy, max_life: 1, at: [1, 0]}
`,
		"shared start": `
scenario:
  id: x
  legend: {".": plain}
  layout: [".."]
  units:
    - {id: a, team: player, max_life: 1, at: [0, 0]}
    - {id: b, team: enemy, max_life: 1, at: [0, 0]}
`,
		"off the map": `
scenario:
  id: x
  legend: {".": plain}
  layout: [".."]
  units:
    - {id: a, team: player, max_life: 1, at: [0, 0]}
    - {id: b, team: enemy, max_life: 1, at: [5, 0]}
`,
		"bad position": `
scenario:
  id: x
  legend: {".": plain}
  layout: [".."]
  units:
    - {id: a, team: player, max_life: 1, at: [0]}
`,
		"unknown team": `
scenario:
  id: x
  legend: {".": plain}
  layout: [".."]
  units:
    - {id: a, team: neutral, max_life: 1, at: [0, 0]}
`,
		"missing id": `
scenario:
  legend: {".": plain}
  layout: ["."]
`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := scenario.LoadFromBytes([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := scenario.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBuild_MapAndRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ford.yaml")
	require.NoError(t, os.WriteFile(path, []byte(skirmishYAML), 0644))
	s, err := scenario.LoadFromFile(path)
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	rules := testRules(t)
	m, roster, err := s.Build(rules, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 7, m.Len())
	assert.Equal(t, 2, rules.Terrain[grid.FeatureForest].MoveCost)
	assert.Equal(t, 2, m.MoveCost(grid.Coord{X: 2, Y: 0}))

	archer, ok := roster.Get("a1")
	require.True(t, ok)
	assert.Equal(t, 40, archer.Life)
	assert.Equal(t, rules.MoveBudget(ruleset.RoleBack), archer.MoveBudget)
	require.Len(t, archer.Attacks, 1, "Fireball is not in the rules")
	assert.Equal(t, "Jab", archer.Attacks[0].Name)
	assert.Equal(t, 1, logs.FilterMessage("unknown attack; skipping").Len())

	at, ok := roster.UnitAt(grid.Coord{X: 3, Y: 1})
	require.True(t, ok)
	assert.Equal(t, "b1", at.ID)
}

func TestBuild_InvalidUnitStats(t *testing.T) {
	s, err := scenario.LoadFromBytes([]byte(`
scenario:
  id: x
  legend: {".": plain}
  layout: [".."]
  units:
    - {id: a, team: player, max_life: 0, at: [0, 0]}
    - {id: b, team: enemy, max_life: 5, at: [1, 0]}
`))
	require.NoError(t, err)
	_, _, err = s.Build(testRules(t), nil)
	assert.Error(t, err)
}

func TestBuild_UnknownUnitType(t *testing.T) {
	s, err := scenario.LoadFromBytes([]byte(`
scenario:
  id: x
  legend: {".": plain}
  layout: [".."]
  units:
    - {id: a, team: player, type: fier, max_life: 5, at: [0, 0]}
    - {id: b, team: enemy, type: wood, max_life: 5, at: [1, 0]}
`))
	require.NoError(t, err)
	_, _, err = s.Build(testRules(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"fier"`)
}

func TestShippedScenario_Builds(t *testing.T) {
	root := repoRoot(t)
	rules, err := ruleset.LoadFromFile(filepath.Join(root, "content", "rules.yaml"))
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)

	dir := filepath.Join(root, "content", "scenarios")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		s, err := scenario.LoadFromFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err, e.Name())
		_, roster, err := s.Build(rules, zap.New(core))
		require.NoError(t, err, e.Name())
		assert.NotZero(t, roster.Count(unit.TeamPlayer))
		assert.NotZero(t, roster.Count(unit.TeamEnemy))
	}
	assert.Zero(t, logs.Len(), "shipped scenarios reference only known attacks")
}

func TestProperty_LayoutDimensions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(2, 8).Draw(rt, "w")
		h := rapid.IntRange(1, 6).Draw(rt, "h")
		src := "scenario:\n  id: p\n  legend: {\".\": plain}\n  layout:\n"
		for y := 0; y < h; y++ {
			row := ""
			for x := 0; x < w; x++ {
				row += "."
			}
			src += "    - \"" + row + "\"\n"
		}
		src += "  units:\n    - {id: a, team: player, max_life: 1, at: [0, 0]}\n    - {id: b, team: enemy, max_life: 1, at: [1, 0]}\n"
		s, err := scenario.LoadFromBytes([]byte(src))
		if err != nil {
			rt.Fatalf("LoadFromBytes: %v", err)
		}
		if s.Width != w || s.Height != h || len(s.Features) != w*h {
			rt.Fatalf("got %dx%d with %d tiles, want %dx%d", s.Width, s.Height, len(s.Features), w, h)
		}
	})
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}
