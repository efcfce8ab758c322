package main

import (
	"math"
	"time"
)

// simTick advances every zombie one fixed step: target the nearest joined
// player, steer (seek + separation), move speed/TickRate, and swing if in
// range and off cooldown. Zombies without a target are left out of the batch.
func (g *Game) simTick(now time.Time) {
	if g.players.Len() == 0 || g.zombies.Len() == 0 {
		return
	}

	zs := g.zombies.Sorted()
	deltas := make([]ZombieDelta, 0, len(zs))
	for _, z := range zs {
		target, dist := NearestPlayer(g.players, z.X, z.Z)
		if target == nil {
			continue
		}

		dir := Steer(Seek(z.X, z.Z, target.X, target.Z), Separation(z, zs))
		step := z.Speed / TickRate
		nx, nz := z.X+dir.X*step, z.Z+dir.Z*step
		if isFinite(nx) && isFinite(nz) {
			z.X, z.Z = nx, nz
		}
		z.Rotation = math.Atan2(target.X-z.X, target.Z-z.Z)

		if dist < ZombieAttackRange && z.CanAttack(now) {
			z.LastAttack = now
			g.gw.SendTo(target.ID, MsgPlayerDamaged, PlayerDamagedMsg{
				Amount:   ZombieAttackDmg,
				ZombieID: z.ID,
			})
		}

		deltas = append(deltas, ZombieDelta{ID: z.ID, X: z.X, Z: z.Z, Rotation: z.Rotation})
	}

	if len(deltas) > 0 {
		g.gw.Broadcast(MsgZombieUpdate, deltas)
	}
}
