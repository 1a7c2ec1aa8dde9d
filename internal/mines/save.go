package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// CellState is the player-visible part of a cell that a save has to keep.
// Mine counts are derived from the mine positions on restore.
type CellState struct {
	Covered bool `json:"covered"`
	Mark    Mark `json:"mark"`
	Mistake bool `json:"mistake"`
}

// SaveState is a self-contained snapshot of a game. It shares no memory
// with the [Game] it was taken from.
type SaveState struct {
	SaveID         int64       `json:"save_id"`
	Seed           uint64      `json:"seed"`
	Difficulty     Difficulty  `json:"difficulty"`
	ElapsedSeconds int64       `json:"elapsed_seconds"`
	Minefield      Minefield   `json:"minefield"`
	Planted        bool        `json:"planted"`
	MinePositions  []int       `json:"mine_positions"`
	Cells          []CellState `json:"cells"`
}

func (g *Game) SaveState(elapsedSeconds int64, difficulty Difficulty) SaveState {
	cells := make([]CellState, g.grid.Len())
	for i, a := range g.grid.areas {
		cells[i] = CellState{Covered: a.IsCovered, Mark: a.Mark, Mistake: a.Mistake}
	}
	return SaveState{
		SaveID:         g.saveID,
		Seed:           g.seed,
		Difficulty:     difficulty,
		ElapsedSeconds: elapsedSeconds,
		Minefield:      g.field,
		Planted:        g.planted,
		MinePositions:  g.MinePositions(),
		Cells:          cells,
	}
}

// RestoreGame rebuilds the exact board a save was taken from. Mines are put
// back where they were; nothing is regenerated.
func RestoreGame(save SaveState) (*Game, error) {
	if err := save.validate(); err != nil {
		return nil, err
	}

	g, err := NewGame(save.Minefield, save.Seed)
	if err != nil {
		return nil, err
	}
	g.saveID = save.SaveID
	g.planted = save.Planted

	for _, id := range save.MinePositions {
		g.grid.at(id).HasMine = true
	}
	for i := range g.grid.areas {
		a := &g.grid.areas[i]
		a.MinesAround = g.grid.countAround(i, hasMine)
		a.IsCovered = save.Cells[i].Covered
		a.Mark = save.Cells[i].Mark
		a.Mistake = save.Cells[i].Mistake
	}
	return g, nil
}

func (s SaveState) validate() error {
	if err := s.Minefield.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSave, err)
	}
	size := s.Minefield.Cells()
	if len(s.Cells) != size {
		return fmt.Errorf("%w: %d cells for a %d cell board", ErrInvalidSave, len(s.Cells), size)
	}

	if !s.Planted {
		if len(s.MinePositions) != 0 {
			return fmt.Errorf("%w: mines listed on an unplanted board", ErrInvalidSave)
		}
		for i, c := range s.Cells {
			if !c.Covered {
				return fmt.Errorf("%w: cell %d open before planting", ErrInvalidSave, i)
			}
		}
	} else {
		if len(s.MinePositions) != s.Minefield.Mines {
			return fmt.Errorf("%w: %d mine positions, want %d",
				ErrInvalidSave, len(s.MinePositions), s.Minefield.Mines)
		}
		prev := -1
		for _, id := range s.MinePositions {
			if id <= prev || id >= size {
				return fmt.Errorf("%w: bad mine position %d", ErrInvalidSave, id)
			}
			prev = id
		}
	}

	for i, c := range s.Cells {
		if c.Mark < MarkNone || c.Mark > MarkQuestion {
			return fmt.Errorf("%w: cell %d has unknown mark %d", ErrInvalidSave, i, c.Mark)
		}
		if !c.Covered && c.Mark != MarkNone {
			return fmt.Errorf("%w: open cell %d carries a %s", ErrInvalidSave, i, c.Mark)
		}
	}
	return nil
}

// Dead reports whether the saved game was lost.
func (s SaveState) Dead() bool {
	for _, id := range s.MinePositions {
		if id < len(s.Cells) && !s.Cells[id].Covered {
			return true
		}
	}
	return false
}

// Won reports whether the saved game was won.
func (s SaveState) Won() bool {
	if !s.Planted || s.Dead() {
		return false
	}
	covered := 0
	for _, c := range s.Cells {
		if c.Covered {
			covered++
		}
	}
	return covered == len(s.MinePositions)
}

func (s SaveState) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeSaveState(buf []byte) (*SaveState, error) {
	var save SaveState
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&save); err != nil {
		return nil, err
	}
	return &save, nil
}
