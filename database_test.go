package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "horde.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDBIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horde.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err, "migrations already applied")
	require.NoError(t, db.Close())
}

func TestInsertAndListRounds(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := db.InsertRound(RoundSummary{
		Difficulty: "easy",
		Waves:      3,
		Outcome:    OutcomeAbandoned,
		StartedAt:  start,
		EndedAt:    start.Add(150 * time.Second),
		Kills:      map[string]int{"Alice": 2},
	})
	require.NoError(t, err)
	id, err := db.InsertRound(RoundSummary{
		Difficulty: "hard",
		Waves:      10,
		Outcome:    OutcomeVictory,
		StartedAt:  start.Add(time.Hour),
		EndedAt:    start.Add(time.Hour + 10*time.Minute),
		Kills:      map[string]int{"Alice": 1, "Bob": 4},
	})
	require.NoError(t, err)

	rounds, err := db.RecentRounds(10)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	want := RoundRow{
		ID:         id,
		Difficulty: "hard",
		Waves:      10,
		Outcome:    "victory",
		StartedAt:  "2024-03-01T13:00:00Z",
		EndedAt:    "2024-03-01T13:10:00Z",
		Duration:   600,
		Kills:      map[string]int{"Alice": 1, "Bob": 4},
	}
	if diff := cmp.Diff(want, rounds[0]); diff != "" {
		t.Errorf("newest round mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]int{"Alice": 2}, rounds[1].Kills)

	limited, err := db.RecentRounds(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, id, limited[0].ID)
}

func TestRecentRoundsEmpty(t *testing.T) {
	db := openTestDB(t)
	rounds, err := db.RecentRounds(10)
	require.NoError(t, err)
	assert.NotNil(t, rounds)
	assert.Empty(t, rounds)
}

func TestAnalyticsFlushesOnStop(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)

	a.Track(EvtRoundStart, "", map[string]interface{}{"difficulty": "easy"})
	a.Track(EvtZombieKilled, "Alice", map[string]interface{}{"zombie": 1})
	a.Track(EvtZombieKilled, "Alice", nil)
	a.RecordRound(RoundSummary{
		Difficulty: "easy",
		Waves:      1,
		Outcome:    OutcomeReset,
		StartedAt:  time.Now().Add(-time.Minute),
		EndedAt:    time.Now(),
		Kills:      map[string]int{"Alice": 0},
	})
	a.Stop()
	a.Track(EvtPlayerDeath, "late", nil)

	counts, err := a.EventCounts(statsEventDays)
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]int{EvtRoundStart: 1, EvtZombieKilled: 2}, counts, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("event counts mismatch (-want +got):\n%s", diff)
	}

	rounds, err := a.RecentRounds(statsRecentRounds)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "reset", rounds[0].Outcome)
}

func TestAnalyticsDisabled(t *testing.T) {
	var a *Analytics

	rounds, err := a.RecentRounds(10)
	require.NoError(t, err)
	assert.Empty(t, rounds)

	counts, err := a.EventCounts(7)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
