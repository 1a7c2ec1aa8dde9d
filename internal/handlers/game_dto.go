package handlers

import (
	"strconv"

	"github.com/vancomm/antimine/internal/mines"
	"github.com/vancomm/antimine/internal/repository"
	"github.com/vancomm/antimine/internal/session"
)

type CreateGameDTO struct {
	Difficulty string `schema:"difficulty" validate:"omitempty,oneof=standard beginner intermediate expert custom"`
	Width      int    `schema:"width" validate:"required_if=Difficulty custom,omitempty,min=1,max=200"`
	Height     int    `schema:"height" validate:"required_if=Difficulty custom,omitempty,min=1,max=200"`
	Mines      int    `schema:"mines" validate:"required_if=Difficulty custom,omitempty,min=1"`
	Cell       int    `schema:"cell,required" validate:"min=0"`
}

// Board picks the difficulty the request asks for. Dimensions without a
// difficulty mean a custom board.
func (dto CreateGameDTO) Board() (mines.Difficulty, *mines.Minefield) {
	d := mines.Difficulty(dto.Difficulty)
	if d == "" {
		d = mines.Standard
		if dto.Width > 0 || dto.Height > 0 || dto.Mines > 0 {
			d = mines.Custom
		}
	}
	if d != mines.Custom {
		return d, nil
	}
	return d, &mines.Minefield{Width: dto.Width, Height: dto.Height, Mines: dto.Mines}
}

type CellDTO struct {
	Cell int `schema:"cell,required" validate:"min=0"`
}

type HighscoresDTO struct {
	Difficulty string `schema:"difficulty" validate:"omitempty,oneof=standard beginner intermediate expert custom"`
	Username   string `schema:"username" validate:"omitempty,max=32"`
	Limit      int    `schema:"limit" validate:"omitempty,min=1,max=500"`
}

func (dto HighscoresDTO) Filter() repository.HighscoreFilter {
	f := repository.HighscoreFilter{Limit: dto.Limit}
	if dto.Difficulty != "" {
		f.Difficulty = &dto.Difficulty
	}
	if dto.Username != "" {
		f.Username = &dto.Username
	}
	return f
}

type GameDTO struct {
	SaveID         string           `json:"save_id,omitempty"`
	Difficulty     mines.Difficulty `json:"difficulty"`
	State          session.Event    `json:"state"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Mines          int              `json:"mines"`
	RemainingMines int              `json:"remaining_mines"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
	Dead           bool             `json:"dead"`
	Won            bool             `json:"won"`
	Score          *int64           `json:"score,omitempty"`
	Cells          []mines.Area     `json:"cells"`
	StartedAt      *int64           `json:"started_at,omitempty"`
	EndedAt        *int64           `json:"ended_at,omitempty"`
}

// newGameDTO describes a game from its controller view and, once the game is
// stored, its row.
func newGameDTO(d mines.Difficulty, field mines.Minefield, view session.Update, row *repository.GameSave) *GameDTO {
	dto := &GameDTO{
		Difficulty:     d,
		State:          view.Event,
		Width:          view.Width,
		Height:         view.Height,
		Mines:          field.Mines,
		RemainingMines: view.RemainingMines,
		ElapsedSeconds: view.Elapsed,
		Dead:           view.Event == session.EventGameOver || view.Event == session.EventResumeGameOver,
		Won:            view.Event == session.EventVictory || view.Event == session.EventResumeVictory,
		Cells:          view.Field,
	}
	if row == nil {
		return dto
	}
	dto.SaveID = strconv.FormatInt(row.SaveID, 10)
	dto.Score = row.Score
	startedAt := row.StartedAt.UnixMilli()
	dto.StartedAt = &startedAt
	if row.EndedAt != nil {
		endedAt := row.EndedAt.UnixMilli()
		dto.EndedAt = &endedAt
	}
	return dto
}

type PlayerInfo struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

type CredentialsDTO struct {
	Username string `schema:"username,required" validate:"required,min=3,max=32,alphanum"`
	Password string `schema:"password,required" validate:"required,min=6"`
}
