package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/attr"
	"github.com/lastdescent/actorsim/internal/core/geom"
)

const sample = `
attribute_profiles:
  - name: grunt
    base: {max_health: 30, move_speed: 2.5}
abilities:
  - id: bite
    shape: arc
    cooldown: 1
    damage: 5
    range: 1
    arc_degrees: 90
  - id: bolt
    shape: ray
    range: 6
actors:
  - name: grunt
    attributes: grunt
    abilities: [bite, bolt]
    team: 1
    body_radius: 0.4
    behavior: {kind: hold}
  - name: dummy
scenarios:
  - name: pit
    obstacles:
      - {at: {x: 1, y: 1}, radius: 0.5}
    spawns:
      - {actor: grunt, at: {x: 2, y: 0}}
      - {actor: dummy, at: {x: 0, y: 0}, control: player}
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(sample))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}

	grunt := c.Actor("grunt")
	if grunt == nil {
		t.Fatal("grunt not loaded")
	}
	if grunt.Slots() != 2 || grunt.Ability(0).ID != "bite" || grunt.Ability(1).Shape != ability.ShapeRay {
		t.Errorf("abilities resolved wrong: %+v", grunt.Abilities)
	}
	if grunt.Ability(0) != c.Ability("bite") {
		t.Error("ability definitions are not shared")
	}
	if grunt.Attributes.Base[attr.MaxHealth] != 30 {
		t.Errorf("max_health = %v", grunt.Attributes.Base[attr.MaxHealth])
	}
	if c.Behavior("grunt").Kind != BehaviorHold {
		t.Errorf("behavior = %q", c.Behavior("grunt").Kind)
	}
	if c.Behavior("dummy").Kind != BehaviorChase {
		t.Error("missing behavior should default to chase")
	}
	if c.Actor("dummy").Attributes != nil {
		t.Error("actor without a profile got one")
	}

	s, err := c.Scenario("pit")
	if err != nil {
		t.Fatalf("Scenario: %v", err)
	}
	if len(s.Spawns) != 2 || s.Spawns[0].Control != ControlAI || s.Spawns[1].Control != ControlPlayer {
		t.Errorf("spawns = %+v", s.Spawns)
	}
	if !s.Spawns[0].At.Equal(geom.V(2, 0)) {
		t.Errorf("spawn position = %v", s.Spawns[0].At)
	}
	if len(s.Obstacles) != 1 || s.Obstacles[0].Radius != 0.5 {
		t.Errorf("obstacles = %+v", s.Obstacles)
	}
	if _, err := c.Scenario("nope"); !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("unknown scenario err = %v", err)
	}
}

func TestParseCatalogErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown ability",
			yaml: "actors:\n  - name: a\n    abilities: [missing]\n",
			want: ErrUnknownAbility,
		},
		{
			name: "unknown profile",
			yaml: "actors:\n  - name: a\n    attributes: missing\n",
			want: ErrUnknownProfile,
		},
		{
			name: "unknown actor in scenario",
			yaml: "scenarios:\n  - name: s\n    spawns:\n      - {actor: ghost, at: {x: 0, y: 0}}\n",
			want: ErrUnknownActor,
		},
		{
			name: "duplicate actor",
			yaml: "actors:\n  - name: a\n  - name: a\n",
			want: ErrDuplicate,
		},
		{
			name: "delayed arc without window",
			yaml: "abilities:\n  - {id: swing, shape: arc, window: {pre_delay: 0.2}}\n",
			want: ability.ErrDelayNoWindow,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.yaml))
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSchemaRejects(t *testing.T) {
	cases := map[string]string{
		"bad shape":         "abilities:\n  - {id: a, shape: cone}\n",
		"negative cooldown": "abilities:\n  - {id: a, shape: area, cooldown: -1}\n",
		"unknown attribute": "attribute_profiles:\n  - {name: p, base: {mana: 3}}\n",
		"unknown field":     "actors:\n  - {name: a, speed: 3}\n",
		"empty spawns":      "scenarios:\n  - {name: s, spawns: []}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			err := Validate([]byte(doc))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), "validate catalog") {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if p, a, ac, s := c.Counts(); p != 1 || a != 2 || ac != 2 || s != 1 {
		t.Errorf("counts = %d %d %d %d", p, a, ac, s)
	}
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestShippedCatalog(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "data", "yaml", "catalog.yaml"))
	if err != nil {
		t.Fatalf("shipped catalog: %v", err)
	}
	for _, name := range c.ScenarioNames() {
		if _, err := c.Scenario(name); err != nil {
			t.Errorf("scenario %s: %v", name, err)
		}
	}
}

func TestActorDefinitionSlots(t *testing.T) {
	var nilDef *ActorDefinition
	if nilDef.Ability(0) != nil || nilDef.Slots() != 0 {
		t.Error("nil definition should have no slots")
	}
	def := &ActorDefinition{Abilities: []*ability.Definition{{ID: "a"}}}
	if def.Ability(-1) != nil || def.Ability(1) != nil {
		t.Error("out-of-range slot returned a definition")
	}
}
