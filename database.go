package main

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// RoundRow represents a finished round
type RoundRow struct {
	ID         int64          `json:"id"`
	Difficulty string         `json:"difficulty"`
	Waves      int            `json:"waves"`
	Outcome    string         `json:"outcome"`
	StartedAt  string         `json:"startedAt"`
	EndedAt    string         `json:"endedAt"`
	Duration   float64        `json:"duration"`
	Kills      map[string]int `json:"kills"`
}

// OpenDB opens (or creates) the SQLite database and applies migrations
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db.conn, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// gooseLogger routes migration output through zerolog
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Debug().Str("component", "goose").Msgf(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Str("component", "goose").Msgf(format, v...)
}

// InsertRound records a finished round and its players' kills
func (db *DB) InsertRound(r RoundSummary) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO rounds (difficulty, waves, outcome, started_at, ended_at, duration)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Difficulty, r.Waves, string(r.Outcome),
		r.StartedAt.UTC().Format(time.RFC3339), r.EndedAt.UTC().Format(time.RFC3339),
		r.EndedAt.Sub(r.StartedAt).Seconds(),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(r.Kills))
	for name := range r.Kills {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := tx.Exec(
			"INSERT INTO round_players (round_id, name, kills) VALUES (?, ?, ?)",
			id, name, r.Kills[name],
		); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// RecentRounds returns the most recently finished rounds, newest first
func (db *DB) RecentRounds(limit int) ([]RoundRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, difficulty, waves, outcome, started_at, ended_at, duration
		FROM rounds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []RoundRow{}
	byID := make(map[int64]int)
	for rows.Next() {
		var r RoundRow
		if err := rows.Scan(&r.ID, &r.Difficulty, &r.Waves, &r.Outcome, &r.StartedAt, &r.EndedAt, &r.Duration); err != nil {
			return nil, err
		}
		r.Kills = make(map[string]int)
		byID[r.ID] = len(result)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	prows, err := db.conn.Query(`
		SELECT round_id, name, kills FROM round_players
		WHERE round_id >= ? AND round_id <= ?`,
		result[len(result)-1].ID, result[0].ID)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var (
			roundID int64
			name    string
			kills   int
		)
		if err := prows.Scan(&roundID, &name, &kills); err != nil {
			return nil, err
		}
		if i, ok := byID[roundID]; ok {
			result[i].Kills[name] = kills
		}
	}
	return result, prows.Err()
}
