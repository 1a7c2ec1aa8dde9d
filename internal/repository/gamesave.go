package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/antimine/internal/mines"
)

type GameSave struct {
	SaveID         int64      `db:"save_id"`
	PlayerID       *int64     `db:"player_id"`
	Difficulty     string     `db:"difficulty"`
	Width          int32      `db:"width"`
	Height         int32      `db:"height"`
	Mines          int32      `db:"mines"`
	Seed           int64      `db:"seed"`
	ElapsedSeconds int64      `db:"elapsed_seconds"`
	Dead           bool       `db:"dead"`
	Won            bool       `db:"won"`
	Score          *int64     `db:"score"`
	State          []byte     `db:"state"`
	StartedAt      time.Time  `db:"started_at"`
	EndedAt        *time.Time `db:"ended_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// SaveState decodes the stored board. The row id wins over whatever id the
// blob carries.
func (s *GameSave) SaveState() (*mines.SaveState, error) {
	save, err := mines.DecodeSaveState(s.State)
	if err != nil {
		return nil, fmt.Errorf("game_save %d holds an invalid state: %w", s.SaveID, err)
	}
	save.SaveID = s.SaveID
	return save, nil
}

func (s *GameSave) Finished() bool {
	return s.Dead || s.Won
}

func saveArgs(save mines.SaveState) (pgx.NamedArgs, error) {
	state, err := save.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to encode game state: %w", err)
	}
	dead, won := save.Dead(), save.Won()
	var score *int64
	if won {
		s := mines.Score(save.ElapsedSeconds, save.Difficulty, save.Minefield)
		score = &s
	}
	return pgx.NamedArgs{
		"difficulty":      string(save.Difficulty),
		"width":           save.Minefield.Width,
		"height":          save.Minefield.Height,
		"mines":           save.Minefield.Mines,
		"seed":            int64(save.Seed),
		"elapsed_seconds": save.ElapsedSeconds,
		"dead":            dead,
		"won":             won,
		"finished":        dead || won,
		"score":           score,
		"state":           state,
	}, nil
}

// CreateSave stores a new game. playerID is nil for anonymous games.
func (q *Queries) CreateSave(
	ctx context.Context, playerID *int64, save mines.SaveState,
) (*GameSave, error) {
	args, err := saveArgs(save)
	if err != nil {
		return nil, err
	}
	args["player_id"] = playerID

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_save (
			player_id, difficulty, width, height, mines, seed,
			elapsed_seconds, dead, won, score, state, ended_at
		)
		VALUES (
			@player_id, @difficulty, @width, @height, @mines, @seed,
			@elapsed_seconds, @dead, @won, @score, @state,
			CASE WHEN @finished::boolean THEN now() END
		)
		RETURNING *`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSave])
}

// UpdateSave overwrites the game save.SaveID refers to. A game that ends
// keeps the time it first ended at.
func (q *Queries) UpdateSave(ctx context.Context, save mines.SaveState) (*GameSave, error) {
	args, err := saveArgs(save)
	if err != nil {
		return nil, err
	}
	args["save_id"] = save.SaveID

	rows, _ := q.db.Query(
		ctx,
		`UPDATE game_save SET
			elapsed_seconds = @elapsed_seconds,
			dead = @dead,
			won = @won,
			score = @score,
			state = @state,
			ended_at = CASE WHEN @finished::boolean THEN coalesce(ended_at, now()) END,
			updated_at = now()
		WHERE save_id = @save_id
		RETURNING *`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSave])
}

func (q *Queries) GetSave(ctx context.Context, saveID int64) (*GameSave, error) {
	rows, _ := q.db.Query(
		ctx, "SELECT * FROM game_save WHERE save_id = $1", saveID,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSave])
}

// FetchCurrentSave returns the player's most recently touched unfinished
// game.
func (q *Queries) FetchCurrentSave(ctx context.Context, playerID int64) (*GameSave, error) {
	rows, _ := q.db.Query(
		ctx,
		`SELECT * FROM game_save
		WHERE player_id = $1 AND NOT dead AND NOT won
		ORDER BY updated_at DESC
		LIMIT 1`,
		playerID,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSave])
}

func (q *Queries) DeleteSave(ctx context.Context, saveID int64) error {
	_, err := q.db.Exec(ctx, "DELETE FROM game_save WHERE save_id = $1", saveID)
	return err
}
