package mines

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// PlantMinesExcept places the configured number of mines uniformly at random,
// never on safeID and, when alsoAvoidNeighbors is set, never next to it
// either. The layout depends only on the game seed.
//
// Planting happens once per game: later calls return [ErrAlreadyPlanted] and
// leave the board untouched.
func (g *Game) PlantMinesExcept(safeID int, alsoAvoidNeighbors bool) error {
	if err := g.check(safeID); err != nil {
		return err
	}
	if g.planted {
		return ErrAlreadyPlanted
	}

	width, height, mineCount := g.field.Width, g.field.Height, g.field.Mines
	sx, sy := safeID%width, safeID/width

	/*
	 * Write down the list of possible mine locations.
	 */
	candidates := make([]int, 0, width*height)
	for y := range height {
		for x := range width {
			if x == sx && y == sy {
				continue
			}
			if alsoAvoidNeighbors && absDiff(sy, y) <= 1 && absDiff(sx, x) <= 1 {
				continue
			}
			candidates = append(candidates, y*width+x)
		}
	}

	if mineCount >= len(candidates) {
		return fmt.Errorf(
			"%w: %d mines need more than %d free cells",
			ErrInvalidConfiguration, mineCount, len(candidates),
		)
	}

	/*
	 * Now pick n off the list at random.
	 */
	r := NewRand(g.seed)
	k := len(candidates)
	for range mineCount {
		i := r.IntN(k)
		g.grid.at(candidates[i]).HasMine = true
		k--
		candidates[i] = candidates[k]
	}

	for i := range g.grid.areas {
		g.grid.areas[i].MinesAround = g.grid.countAround(i, hasMine)
	}
	g.planted = true

	Log.WithFields(logrus.Fields{
		"field":          g.field.String(),
		"seed":           g.seed,
		"safe":           safeID,
		"avoidNeighbors": alsoAvoidNeighbors,
	}).Debug("mines planted")

	return nil
}

func hasMine(a *Area) bool { return a.HasMine }
