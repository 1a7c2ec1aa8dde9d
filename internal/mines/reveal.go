package mines

// ClickArea opens a covered, unmarked cell and returns the ids of every cell
// it uncovered. A zero cell floods outward through covered, unmarked
// territory. Clicking a mine uncovers just that cell and flags it as the
// mistake that ended the game.
//
// Once a mine has exploded the board no longer accepts reveals.
func (g *Game) ClickArea(id int) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	if !g.planted {
		return nil, ErrNotYetPlanted
	}
	if g.HasAnyMineExploded() {
		return nil, nil
	}

	a := g.grid.at(id)
	if !a.IsCovered || a.Mark != MarkNone {
		return nil, nil
	}
	if a.HasMine {
		g.explode(a)
		return []int{id}, nil
	}
	return g.reveal(id), nil
}

// OpenNeighbors chords a revealed number: when exactly as many neighbours
// are flagged as the number says, every other covered neighbour is opened
// as if clicked. Otherwise nothing happens.
func (g *Game) OpenNeighbors(id int) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	if !g.planted {
		return nil, ErrNotYetPlanted
	}
	if g.HasAnyMineExploded() {
		return nil, nil
	}

	a := g.grid.at(id)
	if a.IsCovered || a.MinesAround == 0 {
		return nil, nil
	}
	if g.grid.countAround(id, isFlagged) != a.MinesAround {
		return nil, nil
	}

	var changed []int
	for j := range g.grid.Neighbors(id) {
		n := g.grid.at(j)
		if !n.IsCovered || n.Mark == MarkFlag {
			continue
		}
		if n.HasMine {
			/* a wrong flag elsewhere; stop at the first blast */
			g.explode(n)
			return append(changed, j), nil
		}
		changed = append(changed, g.reveal(j)...)
	}
	return changed, nil
}

func (g *Game) explode(a *Area) {
	a.IsCovered = false
	a.Mark = MarkNone
	a.Mistake = true
	a.Highlighted = false
	Log.WithField("id", a.ID).Debug("mine exploded")
}

// reveal uncovers the safe cell id and everything reachable from it through
// zero cells. Each cell is uncovered once, so the walk is linear in the
// board size.
func (g *Game) reveal(id int) []int {
	a := g.grid.at(id)
	if !a.IsCovered || a.HasMine {
		return nil
	}

	changed := []int{id}
	uncover(a)
	if a.MinesAround != 0 {
		return changed
	}

	todo := newCellTodo(g.grid.Len())
	todo.add(id)
	for i, ok := todo.pop(); ok; i, ok = todo.pop() {
		for j := range g.grid.Neighbors(i) {
			n := g.grid.at(j)
			if !n.IsCovered || n.Mark != MarkNone || n.HasMine {
				continue
			}
			uncover(n)
			changed = append(changed, j)
			if n.MinesAround == 0 {
				todo.add(j)
			}
		}
	}
	return changed
}

func uncover(a *Area) {
	a.IsCovered = false
	a.Mark = MarkNone
	a.Highlighted = false
}

func isFlagged(a *Area) bool { return a.Mark == MarkFlag }

// RevealAllEmptyAreas uncovers every covered, unflagged cell without a mine.
// Used to disclose the board once a game is over.
func (g *Game) RevealAllEmptyAreas() []int {
	var changed []int
	for i := range g.grid.areas {
		a := &g.grid.areas[i]
		if a.IsCovered && !a.HasMine && a.Mark != MarkFlag {
			uncover(a)
			changed = append(changed, i)
		}
	}
	return changed
}
