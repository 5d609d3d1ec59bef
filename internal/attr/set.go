package attr

import (
	"fmt"
	"math"
)

// ID names one attribute. Values index the Set arrays.
type ID int

const (
	Health ID = iota
	MaxHealth
	MoveSpeed
	Damage
	AttackSpeed

	count
)

var names = [count]string{"health", "max_health", "move_speed", "damage", "attack_speed"}

func (id ID) String() string {
	if id < 0 || id >= count {
		return fmt.Sprintf("attr(%d)", int(id))
	}
	return names[id]
}

// Parse maps a catalog name to an ID.
func Parse(name string) (ID, bool) {
	for i, n := range names {
		if n == name {
			return ID(i), true
		}
	}
	return 0, false
}

// Change describes one base or current value transition.
type Change struct {
	ID   ID
	Old  float64
	New  float64
	Base bool
}

// Provider is the attribute contract the life layer depends on.
type Provider interface {
	Current(id ID) float64
	Base(id ID) float64
	ApplyDelta(id ID, delta float64)
	Subscribe(fn func(Change)) int
	Unsubscribe(token int)
}

// Set stores base and current values per attribute.
// Invariants: every value >= 0, base max health >= 1,
// current health in [0, base max health].
// No modifiers yet: current mirrors base for everything but health unless
// set explicitly.
type Set struct {
	base    [count]float64
	current [count]float64
	subs    []listener
	nextTok int
}

type listener struct {
	token int
	fn    func(Change)
}

func NewSet() *Set {
	s := &Set{}
	s.base[MaxHealth] = 1
	return s
}

// Seed replaces every base value with base and spawns at full health.
// Attributes missing from base read 0. It does not notify.
func (s *Set) Seed(base map[ID]float64) {
	s.base = [count]float64{}
	s.current = [count]float64{}
	for id, v := range base {
		if id < 0 || id >= count || id == Health {
			continue
		}
		v = math.Max(0, v)
		s.base[id] = v
		if id != MaxHealth {
			s.current[id] = v
		}
	}
	if s.base[MaxHealth] < 1 {
		s.base[MaxHealth] = 1
	}
	s.current[Health] = s.base[MaxHealth]
}

func (s *Set) valid(id ID) bool { return id >= 0 && id < count }

func (s *Set) Base(id ID) float64 {
	if !s.valid(id) {
		return 0
	}
	return s.base[id]
}

func (s *Set) Current(id ID) float64 {
	if !s.valid(id) {
		return 0
	}
	if id == Health {
		return s.current[id]
	}
	if c := s.current[id]; c > 0 {
		return c
	}
	return s.base[id]
}

// SetBase changes a base value. Lowering max health clamps current health
// without healing; other non-health attributes mirror into current.
func (s *Set) SetBase(id ID, v float64) {
	if !s.valid(id) || id == Health {
		return
	}
	v = math.Max(0, v)
	if id == MaxHealth && v < 1 {
		v = 1
	}
	old := s.base[id]
	if old == v {
		return
	}
	s.base[id] = v
	s.notify(Change{ID: id, Old: old, New: v, Base: true})

	if id == MaxHealth {
		s.SetCurrent(Health, math.Min(s.current[Health], v))
		return
	}
	s.SetCurrent(id, v)
}

func (s *Set) SetCurrent(id ID, v float64) {
	if !s.valid(id) {
		return
	}
	v = math.Max(0, v)
	if id == Health {
		v = math.Min(v, math.Max(1, s.base[MaxHealth]))
	}
	old := s.current[id]
	if old == v {
		return
	}
	s.current[id] = v
	s.notify(Change{ID: id, Old: old, New: v})
}

// ApplyDelta adds delta to the current value (negative for damage).
func (s *Set) ApplyDelta(id ID, delta float64) {
	s.SetCurrent(id, s.Current(id)+delta)
}

// Subscribe registers a change listener and returns its token.
func (s *Set) Subscribe(fn func(Change)) int {
	s.nextTok++
	s.subs = append(s.subs, listener{token: s.nextTok, fn: fn})
	return s.nextTok
}

func (s *Set) Unsubscribe(token int) {
	for i, l := range s.subs {
		if l.token == token {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Set) notify(c Change) {
	for _, l := range s.subs {
		l.fn(c)
	}
}
