package history

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wricardo/scrabble-duel/game/engine"
	"github.com/wricardo/scrabble-duel/game/history/migrations"
	_ "modernc.org/sqlite"
)

const migrationTable = "schema_migrations"

// SQLiteStore persists the history in SQLite
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies the migrations
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordCompletedGame stores a finished game with its players
func (s *SQLiteStore) RecordCompletedGame(ctx context.Context, r GameRecord) error {
	if err := validateRecord(r); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, game_id, mode, session_type, dictionary, started_at, duration_seconds, abandoned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GameID, string(r.Mode), string(r.Type), r.Dictionary,
		r.StartedAt.UTC().UnixMilli(), r.Duration.Minutes*60+r.Duration.Seconds, r.Abandoned,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	for seat, p := range r.Players {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_players (record_id, seat, player_id, name, score) VALUES (?, ?, ?, ?, ?)`,
			r.ID, seat, p.ID, p.Name, p.Score,
		)
		if err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
	}
	return tx.Commit()
}

// RecordHighScore stores one player's final score
func (s *SQLiteStore) RecordHighScore(ctx context.Context, hs HighScore) error {
	if err := validateScore(hs); err != nil {
		return err
	}
	if hs.RecordedAt.IsZero() {
		hs.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO high_scores (mode, name, score, recorded_at) VALUES (?, ?, ?, ?)`,
		string(hs.Mode), hs.Name, hs.Score, hs.RecordedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert high score: %w", err)
	}
	return nil
}

// RecentGames returns the latest games, most recent first
func (s *SQLiteStore) RecentGames(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, mode, session_type, dictionary, started_at, duration_seconds, abandoned
		 FROM games ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	records := []GameRecord{}
	index := map[string]int{}
	for rows.Next() {
		var (
			r         GameRecord
			mode, typ string
			started   int64
			seconds   int
		)
		if err := rows.Scan(&r.ID, &r.GameID, &mode, &typ, &r.Dictionary, &started, &seconds, &r.Abandoned); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		r.Mode = engine.Mode(mode)
		r.Type = engine.SessionType(typ)
		r.StartedAt = time.UnixMilli(started).UTC()
		r.Duration = engine.Duration{Minutes: seconds / 60, Seconds: seconds % 60}
		index[r.ID] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	ids := make([]any, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	prows, err := s.db.QueryContext(ctx,
		`SELECT record_id, player_id, name, score FROM game_players
		 WHERE record_id IN (`+placeholders+`) ORDER BY record_id, seat`, ids...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var recordID string
		var p engine.PlayerScore
		if err := prows.Scan(&recordID, &p.ID, &p.Name, &p.Score); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		i := index[recordID]
		records[i].Players = append(records[i].Players, p)
	}
	return records, prows.Err()
}

// BestScores returns the best distinct scores of mode with the names that
// reached them
func (s *SQLiteStore) BestScores(ctx context.Context, mode engine.Mode) ([]BestScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, score, recorded_at FROM high_scores WHERE mode = ?
		 ORDER BY score DESC, recorded_at ASC, id ASC`, string(mode))
	if err != nil {
		return nil, fmt.Errorf("query high scores: %w", err)
	}
	defer rows.Close()

	var scores []HighScore
	for rows.Next() {
		hs := HighScore{Mode: mode}
		var recorded int64
		if err := rows.Scan(&hs.Name, &hs.Score, &recorded); err != nil {
			return nil, fmt.Errorf("scan high score: %w", err)
		}
		hs.RecordedAt = time.UnixMilli(recorded).UTC()
		scores = append(scores, hs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupBest(scores), nil
}

// migrate applies each embedded .sql file once, in name order
func migrate(db *sql.DB, migrationFS fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var found int
		err := db.QueryRow(`SELECT 1 FROM `+migrationTable+` WHERE name = ?`, name).Scan(&found)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration %s: %w", name, err)
		}

		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(upSection(string(content))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// upSection returns the SQL between the Up and Down markers
func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	start := strings.Index(content, up)
	if start == -1 {
		return content
	}
	content = content[start+len(up):]
	if end := strings.Index(content, down); end != -1 {
		content = content[:end]
	}
	return content
}
