package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnHordeScalesWithWave(t *testing.T) {
	h := newHarness(t)
	_, c := h.join(t, "Alice")

	h.g.spawnHorde(1)
	require.Equal(t, HordeBaseSize, h.g.zombies.Len())
	h.g.spawnHorde(3)
	require.Equal(t, HordeBaseSize*4, h.g.zombies.Len())

	last := 0
	for _, z := range h.g.zombies.Sorted() {
		assert.Greater(t, z.ID, last, "ids strictly increase")
		last = z.ID
	}
	assert.Equal(t, HordeBaseSize*4, last)

	spawned, ok := c.Last(MsgHordeSpawned)
	require.True(t, ok)
	assert.Len(t, spawned.Data.([]ZombieState), HordeBaseSize*4, "the full list is broadcast, not the delta")
}

func TestSpawnHordeStaysInBounds(t *testing.T) {
	h := newHarness(t)
	limit := WorldSize/2 - SpawnInset + HordeJitter
	for wave := 1; wave <= 5; wave++ {
		h.g.spawnHorde(wave)
	}
	for _, z := range h.g.zombies.Sorted() {
		assert.LessOrEqual(t, math.Abs(z.X), limit)
		assert.LessOrEqual(t, math.Abs(z.Z), limit)
	}
}

func TestHordeHealthByDifficulty(t *testing.T) {
	tests := []struct {
		d    Difficulty
		want int
	}{
		{ParseDifficulty("easy"), 200},
		{ParseDifficulty("medium"), 300},
		{ParseDifficulty("hard"), 400},
		{ParseDifficulty("nightmare"), 300},
	}
	for _, tt := range tests {
		h := newHarness(t)
		h.g.difficulty = tt.d
		h.g.spawnHorde(1)
		for _, z := range h.g.zombies.Sorted() {
			require.Equal(t, tt.want, z.Health, tt.d.String())
		}
	}
}

func TestStartHordeIsIdempotent(t *testing.T) {
	h := newHarness(t)
	_, c := h.join(t, "Alice")

	h.g.startHorde(h.now)
	h.g.startHorde(h.now)

	assert.Len(t, h.tickers, 1)
	assert.Equal(t, HordeBaseSize, h.g.zombies.Len())
	assert.Equal(t, 1, h.g.horde.wave)
	assert.Equal(t, 1, c.Count(MsgHordeSpawned))
	assert.Equal(t, 1, c.Count(MsgGameTimerUpdate))
}

func TestStopHordeIsIdempotent(t *testing.T) {
	h := newHarness(t)
	_, c := h.join(t, "Alice")

	h.g.stopHorde()
	assert.Zero(t, c.Count(MsgHordeTimerUpdate), "stopping an inactive timer broadcasts nothing")

	h.g.startHorde(h.now)
	h.g.stopHorde()
	h.g.stopHorde()
	assert.Equal(t, 2, c.Count(MsgHordeTimerUpdate))
	assert.Zero(t, h.g.horde.nextHordeTime)
	assert.Zero(t, h.g.horde.gameEndTime)
	assert.Equal(t, HordeBaseSize, h.g.zombies.Len(), "stop leaves zombies to the caller")
}

func TestHordeFiringAdvancesWave(t *testing.T) {
	h := newHarness(t)
	hostID, c := h.join(t, "Alice")
	require.NoError(t, h.g.startGame(hostID, DifficultyMedium))
	start := h.now

	h.advance(HordeInterval)
	h.g.fireHorde(h.now)

	assert.Equal(t, 2, h.g.horde.wave)
	assert.Equal(t, HordeBaseSize*3, h.g.zombies.Len())
	assert.Equal(t, start.Add(2*HordeInterval).UnixMilli(), h.g.horde.nextHordeTime)
	assert.Equal(t, start.Add(MaxWaves*HordeInterval).UnixMilli(), h.g.horde.gameEndTime)
	next, _ := c.Last(MsgHordeTimerUpdate)
	assert.Equal(t, h.g.horde.nextHordeTime, next.Data)
}

func TestVictoryAfterMaxWaves(t *testing.T) {
	h := newHarness(t)
	hostID, c := h.join(t, "Alice")
	require.NoError(t, h.g.startGame(hostID, DifficultyEasy))
	ticker := h.hordeTicker(t)

	for i := 1; i < MaxWaves; i++ {
		h.advance(HordeInterval)
		h.g.fireHorde(h.now)
	}
	require.Equal(t, MaxWaves, h.g.horde.wave)
	require.Equal(t, HordeBaseSize*MaxWaves*(MaxWaves+1)/2, h.g.zombies.Len())
	require.Zero(t, c.Count(MsgGameVictory))

	h.advance(HordeInterval)
	h.g.fireHorde(h.now)

	assert.Equal(t, 1, c.Count(MsgGameVictory))
	assert.True(t, ticker.stopped)
	assert.False(t, h.g.horde.active())
	assert.Equal(t, PhaseLobby, h.g.phase)
	assert.Zero(t, h.g.zombies.Len())
	state, _ := c.Last(MsgGameStateUpdate)
	assert.Equal(t, false, state.Data)

	assert.Equal(t, StateLobby, h.player(t, hostID).State)
	lobby, ok := c.Last(MsgLobbyUpdate)
	require.True(t, ok)
	assert.False(t, lobby.Data.(map[string]PlayerView)[hostID].InGame)

	h.g.fireHorde(h.now)
	assert.Equal(t, 1, c.Count(MsgGameVictory))

	require.Len(t, h.rec.rounds, 1)
	assert.Equal(t, OutcomeVictory, h.rec.rounds[0].Outcome)
	assert.Equal(t, MaxWaves, h.rec.rounds[0].Waves)
}

func TestRunLoopFiresHordeFromTicker(t *testing.T) {
	h := newHarness(t)
	go h.g.Run()
	defer h.g.Stop()

	c := &recConn{}
	id, err := h.g.Connect(c)
	require.NoError(t, err)
	require.True(t, h.g.call(func() {
		h.g.requestJoin(id, "Alice")
		h.g.startGame(id, DifficultyMedium)
	}))

	var ticker *fakeTicker
	require.True(t, h.g.call(func() { ticker = h.hordeTicker(t) }))
	ticker.ch <- h.now

	assert.Eventually(t, func() bool {
		return h.g.Status().Wave == 2
	}, timeout, pollInterval)
}
