package main

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event types for analytics tracking
const (
	EvtRoundStart   = "round_start"
	EvtRoundEnd     = "round_end"
	EvtWaveSpawned  = "wave_spawned"
	EvtZombieKilled = "zombie_killed"
	EvtPlayerKill   = "player_kill"
	EvtPlayerDeath  = "player_death"
)

const (
	analyticsQueueSize  = 1024
	analyticsBatchSize  = 50
	analyticsFlushEvery = 5 * time.Second
)

// RoundOutcome is how a round ended
type RoundOutcome string

const (
	OutcomeVictory   RoundOutcome = "victory"
	OutcomeAbandoned RoundOutcome = "abandoned"
	OutcomeReset     RoundOutcome = "reset"
)

// RoundSummary describes one finished round
type RoundSummary struct {
	Difficulty string
	Waves      int
	Outcome    RoundOutcome
	StartedAt  time.Time
	EndedAt    time.Time
	Kills      map[string]int // player name -> kills
}

// Recorder receives game events. Implementations must never block the game loop.
type Recorder interface {
	Track(evtType, playerName string, data map[string]interface{})
	RecordRound(r RoundSummary)
}

type nopRecorder struct{}

func (nopRecorder) Track(string, string, map[string]interface{}) {}
func (nopRecorder) RecordRound(RoundSummary)                     {}

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type       string
	PlayerName string
	Data       string // JSON metadata (optional)
	Timestamp  time.Time
}

type analyticsItem struct {
	event *AnalyticsEvent
	round *RoundSummary
}

// Analytics handles event tracking with batched background writes
type Analytics struct {
	db    *DB
	items chan analyticsItem
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:    db,
		items: make(chan analyticsItem, analyticsQueueSize),
		stop:  make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType, playerName string, data map[string]interface{}) {
	evt := &AnalyticsEvent{
		Type:       evtType,
		PlayerName: playerName,
		Timestamp:  time.Now().UTC(),
	}
	if len(data) > 0 {
		if b, err := json.Marshal(data); err == nil {
			evt.Data = string(b)
		}
	}
	a.enqueue(analyticsItem{event: evt})
}

// RecordRound enqueues a round summary (non-blocking)
func (a *Analytics) RecordRound(r RoundSummary) {
	a.enqueue(analyticsItem{round: &r})
}

func (a *Analytics) enqueue(it analyticsItem) {
	select {
	case <-a.stop:
		return
	default:
	}
	select {
	case a.items <- it:
	default:
		// Queue full: drop
	}
}

// Stop gracefully shuts down the analytics writer, flushing what is queued
func (a *Analytics) Stop() {
	a.once.Do(func() { close(a.stop) })
	a.wg.Wait()
}

// writer is the background goroutine that batches and writes to the DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]analyticsItem, 0, analyticsBatchSize)
	ticker := time.NewTicker(analyticsFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case it := <-a.items:
			batch = append(batch, it)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// Drain what is already queued
			for {
				select {
				case it := <-a.items:
					batch = append(batch, it)
				default:
					if len(batch) > 0 {
						a.flush(batch)
					}
					return
				}
			}
		}
	}
}

// flush writes a batch of events and rounds to the database
func (a *Analytics) flush(items []analyticsItem) {
	if a.db == nil || len(items) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Error().Err(err).Msg("analytics: begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_name, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		log.Error().Err(err).Msg("analytics: prepare")
		return
	}
	defer stmt.Close()

	var rounds []RoundSummary
	for _, it := range items {
		if it.round != nil {
			rounds = append(rounds, *it.round)
			continue
		}
		evt := it.event
		name := sql.NullString{String: evt.PlayerName, Valid: evt.PlayerName != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, name, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.Error().Err(err).Str("event", evt.Type).Msg("analytics: insert")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("analytics: commit")
	}

	for _, r := range rounds {
		if _, err := a.db.InsertRound(r); err != nil {
			log.Error().Err(err).Str("outcome", string(r.Outcome)).Msg("analytics: insert round")
		}
	}
}

// --- Query methods for the API ---

// RecentRounds returns the latest finished rounds, empty when recording is off
func (a *Analytics) RecentRounds(limit int) ([]RoundRow, error) {
	if a == nil || a.db == nil {
		return []RoundRow{}, nil
	}
	return a.db.RecentRounds(limit)
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	result := make(map[string]int)
	if a == nil || a.db == nil {
		return result, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= strftime('%Y-%m-%dT%H:%M:%SZ', 'now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}
