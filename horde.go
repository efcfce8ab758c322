package main

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	HordeInterval = 60 * time.Second
	MaxWaves      = 10
	HordeBaseSize = 25
	WorldSize     = 400.0 // square map centred on the origin
	SpawnInset    = 20.0  // cluster centres stay this far from the edge
	HordeJitter   = 5.0   // radius around the cluster centre
)

// hordeState is the wall-clock wave scheduler. A nil ticker means inactive.
type hordeState struct {
	ticker        Ticker
	wave          int
	nextHordeTime int64 // epoch ms, 0 when inactive
	gameEndTime   int64 // epoch ms, 0 when inactive
}

func (h *hordeState) active() bool { return h.ticker != nil }

// startHorde spawns wave 1 immediately and arms the recurring timer.
// Calling it while already active does nothing.
func (g *Game) startHorde(now time.Time) {
	if g.horde.active() {
		return
	}
	g.horde.wave = 0
	g.spawnHorde(1)
	g.horde.wave = 1
	g.horde.nextHordeTime = now.Add(HordeInterval).UnixMilli()
	g.horde.gameEndTime = now.Add(MaxWaves * HordeInterval).UnixMilli()
	g.gw.Broadcast(MsgHordeTimerUpdate, g.horde.nextHordeTime)
	g.gw.Broadcast(MsgGameTimerUpdate, g.horde.gameEndTime)
	g.horde.ticker = g.newTicker(HordeInterval)
}

// fireHorde handles one recurring timer firing: the next wave, or victory
// once MaxWaves have been spawned
func (g *Game) fireHorde(now time.Time) {
	if !g.horde.active() || g.phase != PhaseActive {
		return
	}
	if g.horde.wave >= MaxWaves {
		g.victory()
		return
	}
	g.spawnHorde(g.horde.wave + 1)
	g.horde.wave++
	g.horde.nextHordeTime += HordeInterval.Milliseconds()
	g.gw.Broadcast(MsgHordeTimerUpdate, g.horde.nextHordeTime)
}

// stopHorde cancels the timer and zeroes both timestamps. It leaves the
// zombie set alone; callers clear it when the round ends.
func (g *Game) stopHorde() {
	if !g.horde.active() {
		return
	}
	g.horde.ticker.Stop()
	g.horde.ticker = nil
	g.horde.nextHordeTime = 0
	g.horde.gameEndTime = 0
	g.gw.Broadcast(MsgHordeTimerUpdate, int64(0))
	g.gw.Broadcast(MsgGameTimerUpdate, int64(0))
}

func (g *Game) victory() {
	log.Info().Int("wave", g.horde.wave).Msg("all waves survived")
	g.phase = PhaseEnding
	g.gw.Broadcast(MsgGameVictory, nil)
	g.resetToLobby(OutcomeVictory)
}

// spawnHorde adds HordeBaseSize*wave zombies around one random cluster
// centre and broadcasts the full zombie list
func (g *Game) spawnHorde(wave int) {
	half := WorldSize/2 - SpawnInset
	cx := (g.rng.Float64()*2 - 1) * half
	cz := (g.rng.Float64()*2 - 1) * half

	count := HordeBaseSize * wave
	for i := 0; i < count; i++ {
		angle := g.rng.Float64() * 2 * math.Pi
		r := math.Sqrt(g.rng.Float64()) * HordeJitter
		g.zombies.Spawn(cx+math.Cos(angle)*r, cz+math.Sin(angle)*r, g.difficulty)
	}

	g.gw.Broadcast(MsgHordeSpawned, g.zombies.States())
	g.rec.Track(EvtWaveSpawned, "", map[string]interface{}{
		"wave":       wave,
		"size":       count,
		"difficulty": g.difficulty.String(),
	})
	log.Info().Int("wave", wave).Int("spawned", count).Int("zombies", g.zombies.Len()).
		Float64("x", cx).Float64("z", cz).Msg("horde spawned")
}
