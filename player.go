package main

import "strings"

const (
	SpawnX          = 0.0
	SpawnY          = 50.0
	SpawnZ          = 0.0
	DefaultName     = "Player"
	maxNameLen      = 16
	PlayerHitDamage = 10 // per shootPlayer event and per zombie swing
)

// PlayerState is the per-player lifecycle. Dead implies the player is in a round.
type PlayerState int

const (
	StateUnjoined PlayerState = iota
	StateLobby
	StateInGame
	StateDead
)

func (s PlayerState) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateInGame:
		return "in_game"
	case StateDead:
		return "dead"
	default:
		return "unjoined"
	}
}

// Player represents one connected session
type Player struct {
	ID       string
	Name     string
	Color    int
	X, Y, Z  float64
	Rotation float64
	IsHost   bool
	Kills    int
	State    PlayerState
}

// NewPlayer creates an unjoined player at the spawn point
func NewPlayer(id string, color int) *Player {
	return &Player{
		ID:    id,
		Name:  DefaultName,
		Color: color,
		X:     SpawnX,
		Y:     SpawnY,
		Z:     SpawnZ,
		State: StateUnjoined,
	}
}

func (p *Player) Joined() bool { return p.State != StateUnjoined }
func (p *Player) InGame() bool { return p.State == StateInGame || p.State == StateDead }
func (p *Player) IsDead() bool { return p.State == StateDead }

// Join completes the name handshake. Only valid from Unjoined; a second
// requestJoin from a joined player renames without touching its state.
func (p *Player) Join(name string) {
	p.Name = name
	if p.State == StateUnjoined {
		p.State = StateLobby
	}
}

// EnterRound moves a lobby player into the active round. Dead players keep
// their dead flag until they return to the lobby.
func (p *Player) EnterRound() bool {
	if p.State != StateLobby {
		return false
	}
	p.State = StateInGame
	return true
}

// Die marks an in-round player dead. Lobby and unjoined players have no
// dead state and are left as they are.
func (p *Player) Die() bool {
	if p.State != StateInGame {
		return false
	}
	p.State = StateDead
	return true
}

// LeaveRound returns the player to the lobby, clearing both in-game and dead.
func (p *Player) LeaveRound() {
	if p.InGame() {
		p.State = StateLobby
	}
}

// Move stores the latest client-reported transform
func (p *Player) Move(m MovementMsg) {
	p.X = m.X
	p.Y = m.Y
	p.Z = m.Z
	p.Rotation = m.Rotation
}

// ToView converts to protocol view
func (p *Player) ToView() PlayerView {
	return PlayerView{
		ID:       p.ID,
		Name:     p.Name,
		Color:    p.Color,
		X:        p.X,
		Y:        p.Y,
		Z:        p.Z,
		Rotation: p.Rotation,
		IsHost:   p.IsHost,
		Joined:   p.Joined(),
		InGame:   p.InGame(),
		IsDead:   p.IsDead(),
		Kills:    p.Kills,
	}
}

// SanitizeName trims and truncates a requested display name
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	r := []rune(name)
	if len(r) > maxNameLen {
		name = string(r[:maxNameLen])
	}
	return name
}
