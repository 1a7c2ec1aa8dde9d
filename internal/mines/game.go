package mines

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Game is the minefield engine. It is not safe for concurrent use; the
// owner serialises calls and copies state out with [Game.SaveState] or
// [Game.Field] before handing it to other goroutines.
type Game struct {
	field         Minefield
	grid          *Grid
	seed          uint64
	saveID        int64
	planted       bool
	questionMarks bool
}

// NewGame creates an unplanted board. Mines are placed by
// [Game.PlantMinesExcept] once the first cell is known.
func NewGame(field Minefield, seed uint64) (*Game, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		field:         field,
		grid:          NewGrid(field.Width, field.Height),
		seed:          seed,
		questionMarks: true,
	}
	return g, nil
}

func (g *Game) Minefield() Minefield { return g.field }
func (g *Game) Seed() uint64         { return g.seed }
func (g *Game) SaveID() int64        { return g.saveID }
func (g *Game) HasMines() bool       { return g.planted }

func (g *Game) SetCurrentSaveID(id int64) {
	g.saveID = id
}

// SetQuestionMarks controls whether [Game.SwitchMarkAt] passes through the
// question mark on its way back to an unmarked cell.
func (g *Game) SetQuestionMarks(enabled bool) {
	g.questionMarks = enabled
}

// Field returns a copy of every area, for a full redraw.
func (g *Game) Field() []Area {
	return g.grid.Areas()
}

func (g *Game) Area(id int) (Area, error) {
	a, ok := g.grid.Area(id)
	if !ok {
		return Area{}, g.outOfRange(id)
	}
	return a, nil
}

// Neighbors lists the ids around id.
func (g *Game) Neighbors(id int) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	ids := make([]int, 0, 8)
	for j := range g.grid.Neighbors(id) {
		ids = append(ids, j)
	}
	return ids, nil
}

// MinePositions returns the ids of all mined cells in ascending order.
func (g *Game) MinePositions() []int {
	ids := make([]int, 0, g.field.Mines)
	for i := range g.grid.areas {
		if g.grid.areas[i].HasMine {
			ids = append(ids, i)
		}
	}
	return ids
}

func (g *Game) outOfRange(id int) error {
	return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, id, g.grid.Len())
}

func (g *Game) check(id int) error {
	if !g.grid.Contains(id) {
		return g.outOfRange(id)
	}
	return nil
}

func (g *Game) HasCoverOn(id int) bool {
	a, ok := g.grid.Area(id)
	return ok && a.IsCovered
}

func (g *Game) HasMarkOn(id int) bool {
	a, ok := g.grid.Area(id)
	return ok && a.Mark != MarkNone
}

func (g *Game) IsFlagged(id int) bool {
	a, ok := g.grid.Area(id)
	return ok && a.Mark == MarkFlag
}

// SwitchMarkAt cycles the mark of a covered cell:
// none -> flag -> question -> none. Revealed cells are left alone.
func (g *Game) SwitchMarkAt(id int) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	a := g.grid.at(id)
	if !a.IsCovered {
		return nil, nil
	}
	switch a.Mark {
	case MarkNone:
		a.Mark = MarkFlag
	case MarkFlag:
		if g.questionMarks {
			a.Mark = MarkQuestion
		} else {
			a.Mark = MarkNone
		}
	default:
		a.Mark = MarkNone
	}
	return []int{id}, nil
}

func (g *Game) RemoveMark(id int) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	a := g.grid.at(id)
	if a.Mark == MarkNone {
		return nil, nil
	}
	a.Mark = MarkNone
	a.Mistake = false
	return []int{id}, nil
}

// Highlight marks the covered neighbours of a revealed numbered cell as a
// hint for the player.
func (g *Game) Highlight(id int) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	a := g.grid.at(id)
	if a.IsCovered || a.MinesAround == 0 {
		return nil, nil
	}
	var changed []int
	for j := range g.grid.Neighbors(id) {
		n := g.grid.at(j)
		if n.IsCovered && !n.Highlighted {
			n.Highlighted = true
			changed = append(changed, j)
		}
	}
	return changed, nil
}

// TurnOffAllHighlighted clears every highlight and reports whether any was
// set.
func (g *Game) TurnOffAllHighlighted() bool {
	changed := false
	for i := range g.grid.areas {
		if g.grid.areas[i].Highlighted {
			g.grid.areas[i].Highlighted = false
			changed = true
		}
	}
	return changed
}
