package main

import "encoding/json"

// Client -> Server events
const (
	MsgRequestJoin    = "requestJoin"
	MsgPlayerMovement = "playerMovement"
	MsgShootPlayer    = "shootPlayer"
	MsgShootZombie    = "shootZombie"
	MsgPlayerDied     = "playerDied"
	MsgPlayerRespawn  = "playerRespawn"
	MsgStartGame      = "startGame"
	MsgReturnToLobby  = "returnToLobby"
)

// Server -> Client events
const (
	MsgJoinSuccess        = "joinSuccess"
	MsgJoinError          = "joinError"
	MsgServerFull         = "serverFull"
	MsgCurrentPlayers     = "currentPlayers"
	MsgNewPlayer          = "newPlayer"
	MsgLobbyUpdate        = "lobbyUpdate"
	MsgPlayerMoved        = "playerMoved"
	MsgPlayerDisconnected = "playerDisconnected"
	MsgNameUpdated        = "nameUpdated"
	MsgPlayerDamaged      = "playerDamaged"
	MsgUpdatePlayerKills  = "updatePlayerKills"
	MsgGameStateUpdate    = "gameStateUpdate"
	MsgGameStarted        = "gameStarted"
	MsgHordeTimerUpdate   = "hordeTimerUpdate"
	MsgGameTimerUpdate    = "gameTimerUpdate"
	MsgHordeSpawned       = "hordeSpawned"
	MsgZombieUpdate       = "zombieUpdate"
	MsgZombieDamaged      = "zombieDamaged"
	MsgZombieDied         = "zombieDied"
	MsgGameVictory        = "gameVictory"
	MsgYouAreHost         = "youAreHost"

	// playerDied and playerRespawn reuse the inbound event names when
	// relayed to the other connections.
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming JSON messages; the payload is decoded later by type
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// MovementMsg is sent by the client every frame it moves
type MovementMsg struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Rotation float64 `json:"rotation"`
}

// PlayerView is the public projection of a Player
type PlayerView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Color    int     `json:"color"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Rotation float64 `json:"rotation"`
	IsHost   bool    `json:"isHost"`
	Joined   bool    `json:"joined"`
	InGame   bool    `json:"inGame"`
	IsDead   bool    `json:"isDead"`
	Kills    int     `json:"kills"`
}

// JoinSuccessMsg confirms a requestJoin to the caller
type JoinSuccessMsg struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// NameUpdatedMsg is broadcast when a player completes the name handshake
type NameUpdatedMsg struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color int    `json:"color"`
}

// PlayerDamagedMsg is delivered only to the damaged player
type PlayerDamagedMsg struct {
	Amount     int    `json:"amount"`
	AttackerID string `json:"attackerId,omitempty"`
	ZombieID   int    `json:"zombieId,omitempty"`
}

// KillsMsg carries a player's updated kill counter
type KillsMsg struct {
	ID    string `json:"id"`
	Kills int    `json:"kills"`
}

// ZombieState is one entry of a hordeSpawned list
type ZombieState struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Health int     `json:"health"`
}

// ZombieDelta is one entry of a zombieUpdate batch
type ZombieDelta struct {
	ID       int     `json:"id"`
	X        float64 `json:"x"`
	Z        float64 `json:"z"`
	Rotation float64 `json:"rotation"`
}

// ZombieDamagedMsg reports a zombie's remaining health after a hit
type ZombieDamagedMsg struct {
	ID     int `json:"id"`
	Health int `json:"health"`
}

// StatusMsg is the operator view of the game returned by /api/admin/status
type StatusMsg struct {
	Phase         string `json:"phase"`
	Difficulty    string `json:"difficulty"`
	Wave          int    `json:"wave"`
	NextHordeTime int64  `json:"nextHordeTime"`
	GameEndTime   int64  `json:"gameEndTime"`
	Players       int    `json:"players"`
	Joined        int    `json:"joined"`
	Zombies       int    `json:"zombies"`
	HostID        string `json:"hostId,omitempty"`
	HostName      string `json:"hostName,omitempty"`
	Connections   int    `json:"connections"`
}
