package mines

import "github.com/sirupsen/logrus"

// RunFlagAssistant applies the two trivial deductions around every revealed
// number until nothing more follows:
//
//   - if the number equals the known mines plus the undecided covered
//     neighbours, all of those neighbours are mines and get flagged;
//   - if the number equals the known mines, the undecided neighbours are safe
//     and get opened (flooding as a click would).
//
// Only mines proven during this pass count as known. Flags the player placed
// are treated as undecided, so a wrong flag can never trick the assistant
// into opening a mine. This is stricter than chording, which trusts the
// flags around a number: a number whose mines the player flagged by hand
// opens nothing here unless the assistant can prove those mines itself.
// Player flags on proven-safe cells are left in place.
//
// Cells are re-examined only when something around them changed, which
// bounds the work by a small multiple of the board size. Returns every cell
// that was flagged or uncovered.
func (g *Game) RunFlagAssistant() ([]int, error) {
	if !g.planted {
		return nil, ErrNotYetPlanted
	}
	if g.HasAnyMineExploded() {
		return nil, nil
	}

	size := g.grid.Len()
	known := make([]bool, size)
	touched := make([]bool, size)
	todo := newCellTodo(size)

	var changed []int
	record := func(i int) {
		if !touched[i] {
			touched[i] = true
			changed = append(changed, i)
		}
	}
	wake := func(i int) {
		for j := range g.grid.Neighbors(i) {
			if n := g.grid.at(j); !n.IsCovered && n.MinesAround > 0 {
				todo.add(j)
			}
		}
	}

	for i := range g.grid.areas {
		if a := &g.grid.areas[i]; !a.IsCovered && a.MinesAround > 0 {
			todo.add(i)
		}
	}

	steps, limit := 0, 10*size
	for i, ok := todo.pop(); ok; i, ok = todo.pop() {
		if steps++; steps > limit {
			Log.WithField("steps", steps).Warn("flag assistant hit its step limit")
			break
		}

		a := g.grid.at(i)
		proven := 0
		undecided := make([]int, 0, 8)
		for j := range g.grid.Neighbors(i) {
			if !g.grid.at(j).IsCovered {
				continue
			}
			if known[j] {
				proven++
			} else {
				undecided = append(undecided, j)
			}
		}
		if len(undecided) == 0 {
			continue
		}

		switch a.MinesAround {
		case proven + len(undecided):
			for _, j := range undecided {
				known[j] = true
				if n := g.grid.at(j); n.Mark != MarkFlag {
					n.Mark = MarkFlag
					record(j)
				}
				wake(j)
			}
		case proven:
			for _, j := range undecided {
				if g.grid.at(j).Mark == MarkFlag {
					continue
				}
				for _, o := range g.reveal(j) {
					record(o)
					if g.grid.at(o).MinesAround > 0 {
						todo.add(o)
					}
					wake(o)
				}
			}
		}
	}

	Log.WithFields(logrus.Fields{
		"steps":   steps,
		"changed": len(changed),
	}).Debug("flag assistant done")

	return changed, nil
}
