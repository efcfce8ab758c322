package main

import (
	"github.com/rs/zerolog/log"
)

// connect admits a connection. A full server gets serverFull and is closed
// without touching the registry.
func (g *Game) connect(c Conn) (string, error) {
	if g.players.Full() {
		c.Send(Envelope{T: MsgServerFull})
		c.Close()
		log.Info().Int("players", g.players.Len()).Msg("connection rejected: server full")
		return "", ErrServerFull
	}

	id := NewPlayerID()
	p := NewPlayer(id, g.players.NextColor(g.rng))
	g.players.Add(p)
	g.gw.Attach(id, c)

	g.gw.SendTo(id, MsgCurrentPlayers, g.players.Snapshot())
	running := g.phase == PhaseActive
	g.gw.SendTo(id, MsgGameStateUpdate, running)
	if running {
		g.gw.SendTo(id, MsgHordeTimerUpdate, g.horde.nextHordeTime)
		g.gw.SendTo(id, MsgGameTimerUpdate, g.horde.gameEndTime)
	}
	g.gw.BroadcastExcept(id, MsgNewPlayer, p.ToView())
	g.broadcastLobby()

	log.Info().Str("player", id).Int("players", g.players.Len()).Msg("player connected")
	return id, nil
}

// requestJoin completes the name handshake. The first joined player with no
// host present becomes host.
func (g *Game) requestJoin(id, name string) error {
	p := g.players.Get(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	name = SanitizeName(name)
	if g.players.NameTaken(name, id) {
		g.gw.SendTo(id, MsgJoinError, joinErrorText)
		log.Debug().Str("player", id).Str("name", name).Msg("join rejected: name taken")
		return ErrNameTaken
	}

	p.Join(name)
	if g.hostID == "" {
		g.setHost(p)
	}

	g.gw.Broadcast(MsgNameUpdated, NameUpdatedMsg{ID: id, Name: p.Name, Color: p.Color})
	g.gw.SendTo(id, MsgJoinSuccess, JoinSuccessMsg{Name: p.Name, IsHost: p.IsHost})
	g.broadcastLobby()

	log.Info().Str("player", id).Str("name", p.Name).Bool("host", p.IsHost).Msg("player joined")
	return nil
}

// disconnect removes a player, migrating host if needed. An empty registry
// forces a hard reset.
func (g *Game) disconnect(id string) {
	p := g.players.Remove(id)
	g.gw.Detach(id)
	if p == nil {
		return
	}
	log.Info().Str("player", id).Str("name", p.Name).Int("players", g.players.Len()).Msg("player disconnected")

	if g.hostID == id {
		g.hostID = ""
		if next := g.players.FirstJoined(); next != nil {
			g.setHost(next)
			g.gw.SendTo(next.ID, MsgYouAreHost, nil)
			log.Info().Str("player", next.ID).Str("name", next.Name).Msg("host migrated")
		}
	}

	g.gw.Broadcast(MsgPlayerDisconnected, id)
	g.broadcastLobby()

	if g.players.Len() == 0 {
		g.hostID = ""
		g.resetToLobby(OutcomeAbandoned)
		return
	}
	g.checkEmpty()
}

// updateMovement stores the sender's transform and relays it to everyone
// else. A transform with NaN or infinite components is ignored; it could
// not be encoded into any later JSON snapshot.
func (g *Game) updateMovement(id string, m MovementMsg) {
	p := g.players.Get(id)
	if p == nil {
		return
	}
	if !finite(m.X, m.Y, m.Z, m.Rotation) {
		log.Debug().Str("player", id).Msg("non-finite movement ignored")
		return
	}
	p.Move(m)
	g.gw.BroadcastExcept(id, MsgPlayerMoved, p.ToView())
}

// recordRespawn relays a respawn. The dead flag stays set; only
// returnToLobby clears it.
func (g *Game) recordRespawn(id string) {
	if g.players.Get(id) == nil {
		return
	}
	g.gw.BroadcastExcept(id, MsgPlayerRespawn, id)
}

// startGame moves the session from lobby to an active round. Only the host
// may start it, and only from the lobby.
func (g *Game) startGame(requesterID string, d Difficulty) error {
	if g.phase != PhaseLobby {
		return ErrAlreadyRunning
	}
	if g.hostID == "" || requesterID != g.hostID {
		log.Debug().Str("player", requesterID).Msg("startGame ignored: not host")
		return ErrNotHost
	}

	now := g.now()
	g.difficulty = d
	players := 0
	g.players.Each(func(p *Player) {
		if p.Joined() {
			p.EnterRound()
			players++
		}
	})
	g.phase = PhaseActive
	g.roundStart = now
	g.rec.Track(EvtRoundStart, "", map[string]interface{}{
		"difficulty": d.String(),
		"players":    players,
	})

	g.startHorde(now)
	g.gw.Broadcast(MsgGameStateUpdate, true)
	g.gw.Broadcast(MsgGameStarted, nil)
	g.broadcastLobby()

	log.Info().Str("difficulty", d.String()).Int("players", players).Msg("game started")
	return nil
}

// returnToLobby takes a player out of the round and clears its dead flag
func (g *Game) returnToLobby(id string) {
	p := g.players.Get(id)
	if p == nil {
		return
	}
	p.LeaveRound()
	g.broadcastLobby()
	g.checkEmpty()
}

// checkEmpty ends an active round once nobody is left in it
func (g *Game) checkEmpty() {
	if g.phase != PhaseActive || g.players.AnyInGame() {
		return
	}
	log.Info().Int("wave", g.horde.wave).Msg("no players in game, returning to lobby")
	g.resetToLobby(OutcomeAbandoned)
}

// hardReset is the operator-triggered reset. Players and host are kept.
func (g *Game) hardReset(outcome RoundOutcome) {
	log.Warn().Str("phase", g.phase.String()).Msg("hard reset")
	g.resetToLobby(outcome)
}

// resetToLobby stops the horde timer, clears zombies and their id counter,
// returns every in-round player to the lobby and tells every client the
// round is over
func (g *Game) resetToLobby(outcome RoundOutcome) {
	wasRunning := g.phase != PhaseLobby
	g.stopHorde()
	g.zombies.Reset()
	g.phase = PhaseLobby
	if wasRunning {
		g.recordRoundEnd(outcome)
	}
	returned := 0
	g.players.Each(func(p *Player) {
		if p.InGame() {
			p.LeaveRound()
			returned++
		}
	})
	g.gw.Broadcast(MsgGameStateUpdate, false)
	g.gw.Broadcast(MsgZombieUpdate, []ZombieDelta{})
	if returned > 0 {
		g.broadcastLobby()
	}
	log.Info().Str("outcome", string(outcome)).Bool("was_running", wasRunning).Int("returned", returned).Msg("session reset to lobby")
}

func (g *Game) setHost(p *Player) {
	if old := g.players.Get(g.hostID); old != nil {
		old.IsHost = false
	}
	p.IsHost = true
	g.hostID = p.ID
}

func (g *Game) broadcastLobby() {
	g.gw.Broadcast(MsgLobbyUpdate, g.players.Snapshot())
}

func (g *Game) recordRoundEnd(outcome RoundOutcome) {
	now := g.now()
	summary := RoundSummary{
		Difficulty: g.difficulty.String(),
		Waves:      g.horde.wave,
		Outcome:    outcome,
		StartedAt:  g.roundStart,
		EndedAt:    now,
		Kills:      make(map[string]int),
	}
	g.players.Each(func(p *Player) {
		if p.Joined() {
			summary.Kills[p.Name] = p.Kills
		}
	})
	g.rec.RecordRound(summary)
	g.rec.Track(EvtRoundEnd, "", map[string]interface{}{
		"outcome":  string(outcome),
		"waves":    g.horde.wave,
		"duration": now.Sub(g.roundStart).Seconds(),
	})
}
