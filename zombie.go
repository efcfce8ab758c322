package main

import (
	"sort"
	"time"
)

const (
	ZombieSpeed       = 4.0 // units/s, twice the single-player wander speed
	ZombieShotDamage  = 50
	ZombieAttackRange = 1.5
	ZombieAttackCD    = 1000 * time.Millisecond
	ZombieAttackDmg   = PlayerHitDamage
)

// Difficulty only affects zombie health
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// ParseDifficulty maps the client string; unknown values mean medium
func ParseDifficulty(s string) Difficulty {
	switch s {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyHard:
		return "hard"
	default:
		return "medium"
	}
}

// ZombieHealth returns the spawn health for a difficulty
func (d Difficulty) ZombieHealth() int {
	switch d {
	case DifficultyEasy:
		return 200
	case DifficultyHard:
		return 400
	default:
		return 300
	}
}

// Zombie is one live horde member. Grounding (y) is a client concern.
type Zombie struct {
	ID         int
	X, Z       float64
	Rotation   float64
	Health     int
	Speed      float64
	LastAttack time.Time // zero means never attacked
}

// NewZombie creates a zombie with full health for the difficulty
func NewZombie(id int, x, z float64, d Difficulty) *Zombie {
	return &Zombie{
		ID:     id,
		X:      x,
		Z:      z,
		Health: d.ZombieHealth(),
		Speed:  ZombieSpeed,
	}
}

// TakeDamage reduces health and returns true if the zombie died
func (z *Zombie) TakeDamage(dmg int) bool {
	if z.Health <= 0 {
		return false
	}
	z.Health -= dmg
	return z.Health <= 0
}

// CanAttack reports whether the per-zombie cooldown has elapsed
func (z *Zombie) CanAttack(now time.Time) bool {
	return z.LastAttack.IsZero() || now.Sub(z.LastAttack) >= ZombieAttackCD
}

// ToState converts to the hordeSpawned entry
func (z *Zombie) ToState() ZombieState {
	return ZombieState{ID: z.ID, X: z.X, Z: z.Z, Health: z.Health}
}

// ZombieSet holds live zombies and issues their ids. Ids only grow until Reset.
type ZombieSet struct {
	byID   map[int]*Zombie
	nextID int
}

// NewZombieSet creates an empty set
func NewZombieSet() *ZombieSet {
	return &ZombieSet{byID: make(map[int]*Zombie)}
}

// Spawn creates a zombie with the next id
func (s *ZombieSet) Spawn(x, z float64, d Difficulty) *Zombie {
	s.nextID++
	zb := NewZombie(s.nextID, x, z, d)
	s.byID[zb.ID] = zb
	return zb
}

func (s *ZombieSet) Get(id int) *Zombie { return s.byID[id] }
func (s *ZombieSet) Len() int           { return len(s.byID) }

// Remove deletes a zombie; it reports whether the id was present
func (s *ZombieSet) Remove(id int) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

// Reset clears every zombie and restarts ids from zero
func (s *ZombieSet) Reset() {
	s.byID = make(map[int]*Zombie)
	s.nextID = 0
}

// Sorted returns the zombies ordered by id
func (s *ZombieSet) Sorted() []*Zombie {
	out := make([]*Zombie, 0, len(s.byID))
	for _, z := range s.byID {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// States returns the full list sent with hordeSpawned
func (s *ZombieSet) States() []ZombieState {
	sorted := s.Sorted()
	out := make([]ZombieState, 0, len(sorted))
	for _, z := range sorted {
		out = append(out, z.ToState())
	}
	return out
}
