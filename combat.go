package main

import "github.com/rs/zerolog/log"

// shootPlayer forwards a hit to the target only. Hit validation is the
// shooter's client's job.
func (g *Game) shootPlayer(shooterID, targetID string) {
	if g.players.Get(shooterID) == nil || g.players.Get(targetID) == nil {
		return
	}
	g.gw.SendTo(targetID, MsgPlayerDamaged, PlayerDamagedMsg{
		Amount:     PlayerHitDamage,
		AttackerID: shooterID,
	})
}

// shootZombie applies one hit. A zombie is removed, and its death announced,
// exactly once: later shots at the same id are unknown and ignored.
func (g *Game) shootZombie(shooterID string, zombieID int) error {
	shooter := g.players.Get(shooterID)
	if shooter == nil {
		return ErrUnknownPlayer
	}
	z := g.zombies.Get(zombieID)
	if z == nil {
		return ErrUnknownZombie
	}

	if !z.TakeDamage(ZombieShotDamage) {
		g.gw.Broadcast(MsgZombieDamaged, ZombieDamagedMsg{ID: z.ID, Health: z.Health})
		return nil
	}

	g.zombies.Remove(z.ID)
	g.gw.Broadcast(MsgZombieDied, z.ID)
	g.rec.Track(EvtZombieKilled, shooter.Name, map[string]interface{}{
		"zombie": z.ID,
		"wave":   g.horde.wave,
	})
	log.Debug().Str("player", shooterID).Int("zombie", z.ID).Int("zombies", g.zombies.Len()).Msg("zombie killed")
	return nil
}

// recordDeath marks a player dead and credits the killer if still connected,
// including a player reported as its own killer. Deaths of unjoined players
// are only relayed.
// The player stays registered until it disconnects.
func (g *Game) recordDeath(id, killerID string) {
	p := g.players.Get(id)
	if p == nil {
		return
	}
	p.Die()

	if killer := g.players.Get(killerID); killer != nil && p.Joined() {
		killer.Kills++
		g.gw.Broadcast(MsgUpdatePlayerKills, KillsMsg{ID: killer.ID, Kills: killer.Kills})
		g.rec.Track(EvtPlayerKill, killer.Name, map[string]interface{}{"victim": p.Name})
	}
	g.gw.BroadcastExcept(id, MsgPlayerDied, id)
	g.rec.Track(EvtPlayerDeath, p.Name, nil)
	log.Debug().Str("player", id).Str("killer", killerID).Msg("player died")
}
