// Package store keeps saved games in a local SQLite file for offline play.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vancomm/antimine/internal/mines"
)

//go:embed schema.sql
var schemaSQL string

var ErrNotFound = errors.New("save not found")

const (
	OutcomePlaying = "playing"
	OutcomeLost    = "lost"
	OutcomeWon     = "won"
)

// Store is safe for concurrent use. Writes are serialized.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func outcome(save mines.SaveState) string {
	switch {
	case save.Dead():
		return OutcomeLost
	case save.Won():
		return OutcomeWon
	default:
		return OutcomePlaying
	}
}

// SaveGame inserts save, or replaces the row it was loaded from, and returns
// the row id.
func (s *Store) SaveGame(ctx context.Context, save mines.SaveState) (int64, error) {
	state, err := save.Bytes()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	args := []any{
		string(save.Difficulty),
		save.Minefield.String(),
		int64(save.Seed),
		save.ElapsedSeconds,
		outcome(save),
		state,
		s.now().UnixNano(),
	}

	if save.SaveID == 0 {
		res, err := s.db.ExecContext(ctx, `
INSERT INTO saves (difficulty, minefield, seed, elapsed_seconds, outcome, state, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO saves (save_id, difficulty, minefield, seed, elapsed_seconds, outcome, state, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(save_id)
DO UPDATE SET
	elapsed_seconds = excluded.elapsed_seconds,
	outcome = excluded.outcome,
	state = excluded.state,
	updated_at = excluded.updated_at;`,
		append([]any{save.SaveID}, args...)...)
	if err != nil {
		return 0, err
	}
	return save.SaveID, nil
}

func decode(id int64, state []byte) (*mines.SaveState, error) {
	save, err := mines.DecodeSaveState(state)
	if err != nil {
		return nil, fmt.Errorf("save %d is corrupt: %w", id, err)
	}
	save.SaveID = id
	return save, nil
}

// FetchCurrentSave returns the most recently saved unfinished game, or nil.
func (s *Store) FetchCurrentSave(ctx context.Context) (*mines.SaveState, error) {
	var (
		id    int64
		state []byte
	)
	err := s.db.QueryRowContext(ctx, `
SELECT save_id, state FROM saves
WHERE outcome = ?
ORDER BY updated_at DESC, save_id DESC
LIMIT 1;`, OutcomePlaying).Scan(&id, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(id, state)
}

func (s *Store) Get(ctx context.Context, id int64) (*mines.SaveState, error) {
	var state []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM saves WHERE save_id = ?;`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(id, state)
}

type Summary struct {
	SaveID         int64
	Difficulty     mines.Difficulty
	Minefield      string
	Seed           uint64
	ElapsedSeconds int64
	Outcome        string
	UpdatedAt      time.Time
}

// List returns every save, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT save_id, difficulty, minefield, seed, elapsed_seconds, outcome, updated_at
FROM saves
ORDER BY updated_at DESC, save_id DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum        Summary
			difficulty string
			seed       int64
			updatedAt  int64
		)
		if err := rows.Scan(
			&sum.SaveID, &difficulty, &sum.Minefield, &seed,
			&sum.ElapsedSeconds, &sum.Outcome, &updatedAt,
		); err != nil {
			return nil, err
		}
		sum.Difficulty = mines.Difficulty(difficulty)
		sum.Seed = uint64(seed)
		sum.UpdatedAt = time.Unix(0, updatedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a save. Deleting a missing save returns [ErrNotFound].
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE save_id = ?;`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
