package mines

// CheckVictory is true once every safe cell is uncovered and no mine has
// been set off.
func (g *Game) CheckVictory() bool {
	if !g.planted {
		return false
	}
	for i := range g.grid.areas {
		a := &g.grid.areas[i]
		if a.HasMine && !a.IsCovered {
			return false
		}
		if !a.HasMine && a.IsCovered {
			return false
		}
	}
	return true
}

// FlagAllMines puts a flag on every mine. Called after a win.
func (g *Game) FlagAllMines() []int {
	var changed []int
	for i := range g.grid.areas {
		a := &g.grid.areas[i]
		if a.HasMine && a.IsCovered && a.Mark != MarkFlag {
			a.Mark = MarkFlag
			changed = append(changed, i)
		}
	}
	return changed
}

// RemainingMines is the mine count minus the number of flags. It goes
// negative when the player over-flags.
func (g *Game) RemainingMines() int {
	flags := 0
	for i := range g.grid.areas {
		if g.grid.areas[i].Mark == MarkFlag {
			flags++
		}
	}
	return g.field.Mines - flags
}

// Score rewards faster games and harder boards.
func (g *Game) Score(elapsedSeconds int64, difficulty Difficulty) int64 {
	return Score(elapsedSeconds, difficulty, g.field)
}

func Score(elapsedSeconds int64, difficulty Difficulty, field Minefield) int64 {
	elapsedSeconds = max(elapsedSeconds, 0)
	return difficulty.weight(field) * 100_000 / (elapsedSeconds + 10)
}
