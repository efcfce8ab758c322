package main

import (
	"math/rand"
	"strings"
)

const MaxPlayers = 4

// Palette is the fixed set of player colors, in preference order
var Palette = [...]int{
	0xff0000, // red
	0xffff00, // yellow
	0xff00ff, // magenta
	0xffa500, // orange
	0xff1493, // deep pink
	0xffffff, // white
}

// Registry holds connected players in connection order. Iteration order is
// what makes host migration deterministic.
type Registry struct {
	players map[string]*Player
	order   []string
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*Player)}
}

// Len returns the number of connected players
func (r *Registry) Len() int { return len(r.players) }

// Full reports whether the registry is at capacity
func (r *Registry) Full() bool { return len(r.players) >= MaxPlayers }

// Get returns a player by id, or nil
func (r *Registry) Get(id string) *Player { return r.players[id] }

// Add inserts a player; the caller checks capacity first
func (r *Registry) Add(p *Player) {
	if _, ok := r.players[p.ID]; ok {
		return
	}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Remove deletes a player and returns it, or nil if unknown
func (r *Registry) Remove(id string) *Player {
	p, ok := r.players[id]
	if !ok {
		return nil
	}
	delete(r.players, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p
}

// Each visits players in connection order
func (r *Registry) Each(fn func(p *Player)) {
	for _, id := range r.order {
		fn(r.players[id])
	}
}

// Host returns the current host, or nil
func (r *Registry) Host() *Player {
	for _, id := range r.order {
		if p := r.players[id]; p.IsHost {
			return p
		}
	}
	return nil
}

// FirstJoined returns the earliest-connected joined player, or nil
func (r *Registry) FirstJoined() *Player {
	for _, id := range r.order {
		if p := r.players[id]; p.Joined() {
			return p
		}
	}
	return nil
}

// NameTaken reports whether a joined player other than exceptID already
// uses name, compared case-insensitively
func (r *Registry) NameTaken(name, exceptID string) bool {
	for _, p := range r.players {
		if p.ID == exceptID || !p.Joined() {
			continue
		}
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// AnyInGame reports whether at least one player is in the active round
func (r *Registry) AnyInGame() bool {
	for _, p := range r.players {
		if p.InGame() {
			return true
		}
	}
	return false
}

// NextColor picks the first palette entry no connected player uses,
// falling back to a uniformly random entry once all are taken
func (r *Registry) NextColor(rng *rand.Rand) int {
	used := make(map[int]bool, len(r.players))
	for _, p := range r.players {
		used[p.Color] = true
	}
	for _, c := range Palette {
		if !used[c] {
			return c
		}
	}
	return Palette[rng.Intn(len(Palette))]
}

// Snapshot returns the id -> view map sent as currentPlayers / lobbyUpdate
func (r *Registry) Snapshot() map[string]PlayerView {
	out := make(map[string]PlayerView, len(r.players))
	for id, p := range r.players {
		out[id] = p.ToView()
	}
	return out
}
