package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

type Highscore struct {
	SaveID         int64   `db:"save_id" json:"save_id,string"`
	Username       *string `db:"username" json:"username"`
	Difficulty     string  `db:"difficulty" json:"difficulty"`
	Width          int32   `db:"width" json:"width"`
	Height         int32   `db:"height" json:"height"`
	Mines          int32   `db:"mines" json:"mines"`
	ElapsedSeconds int64   `db:"elapsed_seconds" json:"elapsed_seconds"`
	Score          int64   `db:"score" json:"score"`
}

type HighscoreFilter struct {
	Username   *string
	Difficulty *string
	Limit      int
}

const defaultHighscoreLimit = 50

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.Difficulty != nil {
		clauses = append(clauses, "difficulty = @difficulty")
		args["difficulty"] = *f.Difficulty
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultHighscoreLimit
	}
	args["limit"] = limit
	return strings.Join(clauses, " AND "), args
}

func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		save_id,
		username,
		difficulty,
		width,
		height,
		mines,
		elapsed_seconds,
		score
	FROM game_save
		LEFT OUTER JOIN player USING (player_id)
	WHERE
		won = true
		AND score IS NOT NULL
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY score DESC, elapsed_seconds LIMIT @limit"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
