package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// yamlScenarioFile is the top-level YAML structure for scenario files.
type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

// yamlScenario is the YAML representation of a scenario.
//
// Layout rows run top to bottom as y = 0, 1, ...; each character is looked up
// in Legend. A space is no tile at all.
type yamlScenario struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	FirstTeam string            `yaml:"first_team"`
	MaxSets   int               `yaml:"max_sets"`
	Legend    map[string]string `yaml:"legend"`
	Layout    []string          `yaml:"layout"`
	Units     []yamlUnit        `yaml:"units"`
}

type yamlUnit struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Team    string   `yaml:"team"`
	Role    string   `yaml:"role"`
	Type    string   `yaml:"type"`
	MaxLife int      `yaml:"max_life"`
	Power   int      `yaml:"power"`
	Defence int      `yaml:"defence"`
	Attacks []string `yaml:"attacks"`
	At      []int    `yaml:"at"`
}

// LoadFromFile reads and validates a scenario YAML file.
//
// Precondition: path must point to a readable YAML scenario file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a scenario from YAML bytes.
//
// Postcondition: Returns a validated Scenario or a non-nil error; unknown YAML keys are rejected.
func LoadFromBytes(data []byte) (*Scenario, error) {
	var file yamlScenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	s, err := convertYAMLScenario(file.Scenario)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating scenario: %w", err)
	}
	return s, nil
}

func convertYAMLScenario(ys yamlScenario) (*Scenario, error) {
	s := &Scenario{
		ID:       ys.ID,
		Name:     ys.Name,
		MaxSets:  ys.MaxSets,
		Height:   len(ys.Layout),
		Features: make(map[grid.Coord]grid.Feature),
	}
	if ys.FirstTeam != "" {
		team, err := unit.ParseTeam(ys.FirstTeam)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: first_team: %w", ys.ID, err)
		}
		s.FirstTeam = team
	}

	legend := make(map[rune]grid.Feature, len(ys.Legend))
	for key, tag := range ys.Legend {
		r := []rune(key)
		if len(r) != 1 {
			return nil, fmt.Errorf("scenario %q: legend key %q must be a single character", ys.ID, key)
		}
		f, err := grid.ParseFeature(tag)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: legend %q: %w", ys.ID, key, err)
		}
		legend[r[0]] = f
	}

	for y, row := range ys.Layout {
		x := 0
		for _, ch := range row {
			if ch != ' ' {
				f, ok := legend[ch]
				if !ok {
					return nil, fmt.Errorf("scenario %q: layout row %d: %q is not in the legend", ys.ID, y, ch)
				}
				s.Features[grid.Coord{X: x, Y: y}] = f
			}
			x++
		}
		if x > s.Width {
			s.Width = x
		}
	}

	for _, yu := range ys.Units {
		us, err := convertYAMLUnit(yu)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", ys.ID, err)
		}
		s.Units = append(s.Units, us)
	}
	return s, nil
}

func convertYAMLUnit(yu yamlUnit) (UnitSpec, error) {
	team, err := unit.ParseTeam(yu.Team)
	if err != nil {
		return UnitSpec{}, fmt.Errorf("unit %q: %w", yu.ID, err)
	}
	role := ruleset.RoleForward
	if yu.Role != "" {
		if role, err = ruleset.ParseRole(yu.Role); err != nil {
			return UnitSpec{}, fmt.Errorf("unit %q: %w", yu.ID, err)
		}
	}
	if len(yu.At) != 2 {
		return UnitSpec{}, fmt.Errorf("unit %q: at must be an [x, y] pair", yu.ID)
	}
	name := yu.Name
	if name == "" {
		name = yu.ID
	}
	return UnitSpec{
		ID:      yu.ID,
		Name:    name,
		Team:    team,
		Role:    role,
		Type:    ruleset.TypeID(strings.TrimSpace(yu.Type)),
		MaxLife: yu.MaxLife,
		Power:   yu.Power,
		Defence: yu.Defence,
		Attacks: yu.Attacks,
		Start:   grid.Coord{X: yu.At[0], Y: yu.At[1]},
	}, nil
}
