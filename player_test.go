package main

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("p1", 0xff0000)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, StateUnjoined, p.State)
	assert.Equal(t, SpawnY, p.Y)
	assert.False(t, p.Joined())
	assert.False(t, p.InGame())
}

func TestPlayerStateTransitions(t *testing.T) {
	p := NewPlayer("p1", 0)

	assert.False(t, p.EnterRound(), "unjoined players cannot enter a round")
	assert.False(t, p.Die(), "unjoined players have no dead state")

	p.Join("Alice")
	assert.Equal(t, StateLobby, p.State)
	assert.False(t, p.Die(), "lobby players have no dead state")

	require.True(t, p.EnterRound())
	assert.True(t, p.InGame())
	assert.False(t, p.IsDead())

	require.True(t, p.Die())
	assert.True(t, p.InGame(), "dead implies in a round")
	assert.True(t, p.IsDead())
	assert.False(t, p.Die())

	p.Join("Alicia")
	assert.Equal(t, StateDead, p.State, "renaming keeps the round state")
	assert.Equal(t, "Alicia", p.Name)

	p.LeaveRound()
	assert.Equal(t, StateLobby, p.State)
	view := p.ToView()
	assert.True(t, view.Joined)
	assert.False(t, view.InGame)
	assert.False(t, view.IsDead)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "Alice"},
		{"  Bob  ", "Bob"},
		{"", DefaultName},
		{"   ", DefaultName},
		{strings.Repeat("x", 20), strings.Repeat("x", 16)},
		{strings.Repeat("é", 20), strings.Repeat("é", 16)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestRegistryKeepsConnectionOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"a", "b", "c"} {
		r.Add(NewPlayer(id, 0))
	}
	r.Remove("a")
	r.Get("c").Join("Carol")
	r.Get("b").Join("Bob")

	var order []string
	r.Each(func(p *Player) { order = append(order, p.ID) })
	assert.Equal(t, []string{"b", "c"}, order)
	assert.Equal(t, "b", r.FirstJoined().ID)
	assert.Nil(t, r.Remove("a"))
}

func TestRegistryNameTaken(t *testing.T) {
	r := NewRegistry()
	alice := NewPlayer("a", 0)
	alice.Join("Alice")
	r.Add(alice)
	r.Add(NewPlayer("u", 0)) // unjoined, still named "Player"

	assert.True(t, r.NameTaken("alice", "x"))
	assert.True(t, r.NameTaken("ALICE", "x"))
	assert.False(t, r.NameTaken("Alice", "a"), "own name is not a conflict")
	assert.False(t, r.NameTaken("Player", "x"), "unjoined players do not reserve names")
}

func TestRegistryNextColor(t *testing.T) {
	r := NewRegistry()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 4; i++ {
		c := r.NextColor(rng)
		assert.Equal(t, Palette[i], c)
		r.Add(NewPlayer(string(rune('a'+i)), c))
	}
	r.Remove("b")
	assert.Equal(t, Palette[1], r.NextColor(rng), "freed colors are reused first")

	full := NewRegistry()
	for i, c := range Palette {
		full.Add(NewPlayer(string(rune('a'+i)), c))
	}
	assert.Contains(t, Palette[:], full.NextColor(rng))
}
