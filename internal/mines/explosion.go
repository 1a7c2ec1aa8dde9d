package mines

import "slices"

// HasAnyMineExploded reports whether a mined cell has been uncovered.
func (g *Game) HasAnyMineExploded() bool {
	for i := range g.grid.areas {
		if a := &g.grid.areas[i]; a.HasMine && !a.IsCovered {
			return true
		}
	}
	return false
}

// FindExplodedMine returns the mine the player set off.
func (g *Game) FindExplodedMine() (Area, bool) {
	var fallback *Area
	for i := range g.grid.areas {
		a := &g.grid.areas[i]
		if !a.HasMine || a.IsCovered {
			continue
		}
		if a.Mistake {
			return *a, true
		}
		if fallback == nil {
			fallback = a
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Area{}, false
}

// TakeExplosionRadius lists the mines still hidden under an unflagged cover,
// nearest to exploded first. Ties go to the lower id. Correctly flagged mines
// are left out so their flags stay visible.
func (g *Game) TakeExplosionRadius(exploded Area) []Area {
	var out []Area
	for i := range g.grid.areas {
		a := g.grid.areas[i]
		if a.HasMine && a.IsCovered && a.Mark != MarkFlag && a.ID != exploded.ID {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(x, y Area) int {
		dx := g.grid.Distance(exploded.ID, x.ID)
		dy := g.grid.Distance(exploded.ID, y.ID)
		if dx != dy {
			return dx - dy
		}
		return x.ID - y.ID
	})
	return out
}

// RevealMine uncovers a single hidden mine. It is one step of the end of
// game sweep, so stopping between calls leaves a consistent board.
func (g *Game) RevealMine(id int) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	a := g.grid.at(id)
	if !a.HasMine || !a.IsCovered || a.Mark == MarkFlag {
		return nil, nil
	}
	uncover(a)
	return []int{id}, nil
}

// ShowWrongFlags marks every flag that sits on a safe cell as a mistake.
func (g *Game) ShowWrongFlags() []int {
	var changed []int
	for i := range g.grid.areas {
		a := &g.grid.areas[i]
		if a.Mark == MarkFlag && !a.HasMine && !a.Mistake {
			a.Mistake = true
			changed = append(changed, i)
		}
	}
	return changed
}
