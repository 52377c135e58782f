package ai_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// maxSrc always rolls the top of the range: a sure hit at accuracy 100,
// never a critical, random factor 1.0.
type maxSrc struct{}

func (maxSrc) Intn(n int) int { return n - 1 }

// repoRoot walks up from the test's working directory to find the module root.
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

// duel builds a 5x3 plain field with p1 at (0,1) and e1 at (4,1), both armed
// with a single Low tier jab.
func duel(t *testing.T, life, maxSets int) *battle.Controller {
	t.Helper()
	rules := ruleset.NewRules()
	jab := &ruleset.Attack{Name: "Jab", Scale: ruleset.ScaleSingle, Tier: ruleset.TierLow, Power: 10, Accuracy: 100, RangeMin: 1, RangeMax: 1}
	require.NoError(t, rules.AddAttack(jab))

	var tiles []*grid.Tile
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			tiles = append(tiles, grid.NewTile(grid.Coord{X: x, Y: y}, grid.FeaturePlain))
		}
	}
	m, err := grid.NewMap(tiles, rules.Terrain, nil)
	require.NoError(t, err)

	fighter := func(id string, team unit.Team, pos grid.Coord) *unit.Unit {
		return unit.New(unit.Definition{
			ID: id, Name: id, Team: team, Role: ruleset.RoleForward,
			MaxLife: life, Power: 10, Defence: 10, Attacks: []*ruleset.Attack{jab}, Start: pos,
		}, rules.MoveBudget(ruleset.RoleForward))
	}
	roster, err := unit.NewRoster([]*unit.Unit{
		fighter("p1", unit.TeamPlayer, grid.Coord{X: 0, Y: 1}),
		fighter("e1", unit.TeamEnemy, grid.Coord{X: 4, Y: 1}),
	})
	require.NoError(t, err)

	d := battle.Assemble(rules, m, roster, maxSrc{}, 32, zaptest.NewLogger(t))
	d.FirstTeam = unit.TeamPlayer
	d.MaxSets = maxSets
	ctl, err := battle.NewController(d)
	require.NoError(t, err)
	return ctl
}

// play runs one agent per team until the battle ends.
func play(t *testing.T, ctl *battle.Controller, player, enemy *ai.Agent) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	errs := make(chan error, 2)
	for _, a := range []*ai.Agent{player, enemy} {
		go func(a *ai.Agent) { errs <- a.Run(ctx) }(a)
	}
	ctl.Start(ctx)
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}
	select {
	case <-ctl.Done():
	default:
		t.Fatal("agents returned before the battle ended")
	}
}

func TestAgent_DuelEndsWithFirstStriker(t *testing.T) {
	ctl := duel(t, 30, 10)
	cfg := ai.Config{}
	play(t, ctl,
		ai.NewAgent(ctl, unit.TeamPlayer, nil, maxSrc{}, cfg, zaptest.NewLogger(t)),
		ai.NewAgent(ctl, unit.TeamEnemy, nil, maxSrc{}, cfg, zaptest.NewLogger(t)),
	)

	winner, ok := ctl.Winner()
	require.True(t, ok, "no draw expected")
	assert.Equal(t, unit.TeamPlayer, winner, "player closes in and strikes first every set")
	s := ctl.Snapshot()
	assert.True(t, s.Ended)
	assert.Equal(t, 3, s.Set, "one jab per unit per set at 10 damage against 30 life")
}

func TestAgent_ClosesDistanceBeforeAttacking(t *testing.T) {
	ctl := duel(t, 30, 1)
	play(t, ctl,
		ai.NewAgent(ctl, unit.TeamPlayer, nil, maxSrc{}, ai.Config{}, nil),
		ai.NewAgent(ctl, unit.TeamEnemy, nil, maxSrc{}, ai.Config{}, nil),
	)
	s := ctl.Snapshot()
	require.Len(t, s.Units, 2, "nobody falls in a single set")
	for _, u := range s.Units {
		switch u.ID {
		case "p1":
			assert.Equal(t, grid.Coord{X: 3, Y: 1}, u.Pos)
			assert.Equal(t, 20, u.Life)
		case "e1":
			assert.Equal(t, grid.Coord{X: 4, Y: 1}, u.Pos, "already adjacent, so the enemy stays put")
			assert.Equal(t, 20, u.Life)
		}
	}
	_, ok := ctl.Winner()
	assert.False(t, ok, "running out of sets is a draw")
}

func TestAgent_PlansWithScriptedDomain(t *testing.T) {
	ctl := duel(t, 30, 10)
	root := repoRoot(t)
	logger := zaptest.NewLogger(t)

	domains, err := ai.LoadDomains(filepath.Join(root, "content", "ai"))
	require.NoError(t, err)
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(3), logger), logger)
	defer mgr.Close()
	require.NoError(t, mgr.LoadGlobal(filepath.Join(root, "content", "scripts", "ai"), 0))
	ai.BindScripts(mgr, ctl)

	reg, err := ai.NewRegistryFromDomains(domains, mgr, unit.TeamPlayer.String())
	require.NoError(t, err)
	skirmisher, ok := reg.PlannerFor("skirmisher")
	require.True(t, ok)
	brute, ok := reg.PlannerFor("brute")
	require.True(t, ok)

	play(t, ctl,
		ai.NewAgent(ctl, unit.TeamPlayer, skirmisher, maxSrc{}, ai.Config{}, logger),
		ai.NewAgent(ctl, unit.TeamEnemy, brute, maxSrc{}, ai.Config{}, logger),
	)
	winner, ok := ctl.Winner()
	require.True(t, ok)
	assert.Equal(t, unit.TeamPlayer, winner)
}

func TestAgent_PacingDelayStillFinishes(t *testing.T) {
	ctl := duel(t, 10, 5)
	cfg := ai.Config{DelayMin: time.Millisecond, DelayMax: 2 * time.Millisecond, RandomTargetChance: 1}
	play(t, ctl,
		ai.NewAgent(ctl, unit.TeamPlayer, nil, dice.NewSeededSource(9), cfg, nil),
		ai.NewAgent(ctl, unit.TeamEnemy, nil, dice.NewSeededSource(10), cfg, nil),
	)
	winner, ok := ctl.Winner()
	require.True(t, ok)
	assert.Equal(t, unit.TeamPlayer, winner)
}

func TestAgent_Run_CancelledBeforeStart(t *testing.T) {
	ctl := duel(t, 30, 0)
	agent := ai.NewAgent(ctl, unit.TeamEnemy, nil, maxSrc{}, ai.Config{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not stop on cancellation")
	}
}

func TestAgent_Run_ReturnsImmediatelyAfterEnd(t *testing.T) {
	ctl := duel(t, 10, 5)
	play(t, ctl,
		ai.NewAgent(ctl, unit.TeamPlayer, nil, maxSrc{}, ai.Config{}, nil),
		ai.NewAgent(ctl, unit.TeamEnemy, nil, maxSrc{}, ai.Config{}, nil),
	)
	late := ai.NewAgent(ctl, unit.TeamEnemy, nil, maxSrc{}, ai.Config{}, nil)
	assert.NoError(t, late.Run(context.Background()))
	assert.Equal(t, unit.TeamEnemy, late.Team())
}

func TestNewAgent_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { ai.NewAgent(nil, unit.TeamPlayer, nil, maxSrc{}, ai.Config{}, nil) })
	ctl := duel(t, 10, 0)
	assert.Panics(t, func() { ai.NewAgent(ctl, unit.TeamPlayer, nil, nil, ai.Config{}, nil) })
}
