package session

import (
	"context"

	"github.com/vancomm/antimine/internal/mines"
)

// Saves persists snapshots for a single player.
type Saves interface {
	// FetchCurrentSave returns the unfinished game to resume, or nil.
	FetchCurrentSave(ctx context.Context) (*mines.SaveState, error)
	// SaveGame inserts or updates the save and returns its id.
	SaveGame(ctx context.Context, save mines.SaveState) (int64, error)
}

// Dimensions resolves a difficulty to a board.
type Dimensions interface {
	Minefield(d mines.Difficulty) (mines.Minefield, error)
}

// Analytics observes what the player does. Implementations must not block.
type Analytics interface {
	NewGame(field mines.Minefield, d mines.Difficulty, seed uint64)
	ResumePreviousGame()
	PressArea(id int)
	LongPressArea(id int)
	LongPressMultipleArea(id int)
	GameOver(d mines.Difficulty, elapsedSeconds, score int64)
	Victory(d mines.Difficulty, elapsedSeconds, score int64)
}

type noAnalytics struct{}

func (noAnalytics) NewGame(mines.Minefield, mines.Difficulty, uint64) {}
func (noAnalytics) ResumePreviousGame()                               {}
func (noAnalytics) PressArea(int)                                     {}
func (noAnalytics) LongPressArea(int)                                 {}
func (noAnalytics) LongPressMultipleArea(int)                         {}
func (noAnalytics) GameOver(mines.Difficulty, int64, int64)           {}
func (noAnalytics) Victory(mines.Difficulty, int64, int64)            {}
