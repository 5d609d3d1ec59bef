package data

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/attr"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownProfile  = errors.New("unknown attribute profile")
	ErrUnknownAbility  = errors.New("unknown ability")
	ErrUnknownActor    = errors.New("unknown actor")
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrDuplicate       = errors.New("duplicate name")
)

// Behavior kinds an actor entry may request for its brain.
const (
	BehaviorChase    = "chase"
	BehaviorHold     = "hold"
	BehaviorScripted = "scripted"
)

// Spawn control modes.
const (
	ControlAI     = "ai"
	ControlPlayer = "player"
	ControlIdle   = "idle"
)

// BehaviorProfile selects the movement behavior of an AI-driven actor.
type BehaviorProfile struct {
	Kind   string
	Script string // Lua file, relative to the scripts dir
}

// Obstacle is a static circle that blocks rays and line of sight.
type Obstacle struct {
	At     geom.Vec2
	Radius float64
}

// Spawn places one actor in a scenario.
type Spawn struct {
	Actor   *ActorDefinition
	At      geom.Vec2
	Facing  geom.Vec2
	Control string
}

// Scenario is a named arena layout.
type Scenario struct {
	Name      string
	Obstacles []Obstacle
	Spawns    []Spawn
}

// Catalog holds every loaded definition, indexed by name. Definitions are
// shared by pointer between all actors built from them.
type Catalog struct {
	profiles  map[string]*AttributeProfile
	abilities map[string]*ability.Definition
	actors    map[string]*ActorDefinition
	behaviors map[string]BehaviorProfile
	scenarios map[string]*Scenario
}

func (c *Catalog) Profile(name string) *AttributeProfile { return c.profiles[name] }
func (c *Catalog) Ability(id string) *ability.Definition { return c.abilities[id] }
func (c *Catalog) Actor(name string) *ActorDefinition { return c.actors[name] }

// Behavior returns the brain behavior configured for an actor, defaulting
// to chase.
func (c *Catalog) Behavior(actor string) BehaviorProfile {
	if b, ok := c.behaviors[actor]; ok && b.Kind != "" {
		return b
	}
	return BehaviorProfile{Kind: BehaviorChase}
}

// Scenario returns the named scenario.
func (c *Catalog) Scenario(name string) (*Scenario, error) {
	s, ok := c.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return s, nil
}

// Counts returns the number of loaded profiles, abilities, actors and scenarios.
func (c *Catalog) Counts() (profiles, abilities, actors, scenarios int) {
	return len(c.profiles), len(c.abilities), len(c.actors), len(c.scenarios)
}

// ScenarioNames lists scenario names in sorted order.
func (c *Catalog) ScenarioNames() []string {
	names := make([]string, 0, len(c.scenarios))
	for n := range c.scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// --- YAML loading ---

type profileEntry struct {
	Name string             `yaml:"name"`
	Base map[string]float64 `yaml:"base"`
}

type windowEntry struct {
	PreDelay float64 `yaml:"pre_delay"`
	Duration float64 `yaml:"duration"`
}

type abilityEntry struct {
	ID          string      `yaml:"id"`
	Shape       string      `yaml:"shape"`
	Cooldown    float64     `yaml:"cooldown"`
	Damage      float64     `yaml:"damage"`
	Range       float64     `yaml:"range"`
	Radius      float64     `yaml:"radius"`
	Offset      float64     `yaml:"offset"`
	ArcDegrees  float64     `yaml:"arc_degrees"`
	RayDistance float64     `yaml:"ray_distance"`
	HurtboxMask uint32      `yaml:"hurtbox_mask"`
	Window      windowEntry `yaml:"window"`
}

type behaviorEntry struct {
	Kind   string `yaml:"kind"`
	Script string `yaml:"script"`
}

type actorEntry struct {
	Name           string        `yaml:"name"`
	Attributes     string        `yaml:"attributes"`
	Abilities      []string      `yaml:"abilities"`
	Team           int           `yaml:"team"`
	DetectionRange float64       `yaml:"detection_range"`
	BodyRadius     float64       `yaml:"body_radius"`
	Layer          uint32        `yaml:"layer"`
	Behavior       behaviorEntry `yaml:"behavior"`
}

type obstacleEntry struct {
	At     geom.Vec2 `yaml:"at"`
	Radius float64   `yaml:"radius"`
}

type spawnEntry struct {
	Actor   string    `yaml:"actor"`
	At      geom.Vec2 `yaml:"at"`
	Facing  geom.Vec2 `yaml:"facing"`
	Control string    `yaml:"control"`
}

type scenarioEntry struct {
	Name      string          `yaml:"name"`
	Obstacles []obstacleEntry `yaml:"obstacles"`
	Spawns    []spawnEntry    `yaml:"spawns"`
}

type catalogFile struct {
	Profiles  []profileEntry  `yaml:"attribute_profiles"`
	Abilities []abilityEntry  `yaml:"abilities"`
	Actors    []actorEntry    `yaml:"actors"`
	Scenarios []scenarioEntry `yaml:"scenarios"`
}

// LoadCatalog reads, validates and resolves a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog validates raw YAML against the catalog schema and resolves
// every cross reference.
func ParseCatalog(raw []byte) (*Catalog, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{
		profiles:  make(map[string]*AttributeProfile, len(f.Profiles)),
		abilities: make(map[string]*ability.Definition, len(f.Abilities)),
		actors:    make(map[string]*ActorDefinition, len(f.Actors)),
		behaviors: make(map[string]BehaviorProfile, len(f.Actors)),
		scenarios: make(map[string]*Scenario, len(f.Scenarios)),
	}
	for i := range f.Profiles {
		if err := c.addProfile(&f.Profiles[i]); err != nil {
			return nil, err
		}
	}
	for i := range f.Abilities {
		if err := c.addAbility(&f.Abilities[i]); err != nil {
			return nil, err
		}
	}
	for i := range f.Actors {
		if err := c.addActor(&f.Actors[i]); err != nil {
			return nil, err
		}
	}
	for i := range f.Scenarios {
		if err := c.addScenario(&f.Scenarios[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) addProfile(e *profileEntry) error {
	if _, dup := c.profiles[e.Name]; dup {
		return fmt.Errorf("profile %q: %w", e.Name, ErrDuplicate)
	}
	p := &AttributeProfile{Name: e.Name, Base: make(map[attr.ID]float64, len(e.Base))}
	for name, v := range e.Base {
		id, ok := attr.Parse(name)
		if !ok {
			return fmt.Errorf("profile %q: unknown attribute %q", e.Name, name)
		}
		p.Base[id] = v
	}
	c.profiles[e.Name] = p
	return nil
}

func (c *Catalog) addAbility(e *abilityEntry) error {
	if _, dup := c.abilities[e.ID]; dup {
		return fmt.Errorf("ability %q: %w", e.ID, ErrDuplicate)
	}
	shape, ok := ability.ParseShape(e.Shape)
	if !ok {
		return fmt.Errorf("ability %q: unknown shape %q", e.ID, e.Shape)
	}
	def := &ability.Definition{
		ID:          e.ID,
		Cooldown:    e.Cooldown,
		Damage:      e.Damage,
		Range:       e.Range,
		Shape:       shape,
		Radius:      e.Radius,
		Offset:      e.Offset,
		ArcDegrees:  e.ArcDegrees,
		RayDistance: e.RayDistance,
		Window:      ability.Window{PreDelay: e.Window.PreDelay, Duration: e.Window.Duration},
		HurtboxMask: ability.Mask(e.HurtboxMask),
	}
	if err := def.Validate(); err != nil {
		return err
	}
	c.abilities[e.ID] = def
	return nil
}

func (c *Catalog) addActor(e *actorEntry) error {
	if _, dup := c.actors[e.Name]; dup {
		return fmt.Errorf("actor %q: %w", e.Name, ErrDuplicate)
	}
	def := &ActorDefinition{
		Name:           e.Name,
		Team:           e.Team,
		DetectionRange: e.DetectionRange,
		BodyRadius:     e.BodyRadius,
		Layer:          ability.Mask(e.Layer),
	}
	if e.Attributes != "" {
		p, ok := c.profiles[e.Attributes]
		if !ok {
			return fmt.Errorf("actor %q: %w %q", e.Name, ErrUnknownProfile, e.Attributes)
		}
		def.Attributes = p
	}
	for _, id := range e.Abilities {
		a, ok := c.abilities[id]
		if !ok {
			return fmt.Errorf("actor %q: %w %q", e.Name, ErrUnknownAbility, id)
		}
		def.Abilities = append(def.Abilities, a)
	}
	c.actors[e.Name] = def
	c.behaviors[e.Name] = BehaviorProfile{Kind: e.Behavior.Kind, Script: e.Behavior.Script}
	return nil
}

func (c *Catalog) addScenario(e *scenarioEntry) error {
	if _, dup := c.scenarios[e.Name]; dup {
		return fmt.Errorf("scenario %q: %w", e.Name, ErrDuplicate)
	}
	s := &Scenario{Name: e.Name}
	for _, o := range e.Obstacles {
		s.Obstacles = append(s.Obstacles, Obstacle{At: o.At, Radius: o.Radius})
	}
	for _, sp := range e.Spawns {
		def, ok := c.actors[sp.Actor]
		if !ok {
			return fmt.Errorf("scenario %q: %w %q", e.Name, ErrUnknownActor, sp.Actor)
		}
		control := sp.Control
		if control == "" {
			control = ControlAI
		}
		s.Spawns = append(s.Spawns, Spawn{Actor: def, At: sp.At, Facing: sp.Facing, Control: control})
	}
	c.scenarios[e.Name] = s
	return nil
}
