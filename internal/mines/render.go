package mines

import (
	"strconv"
	"strings"
)

// Symbol is the single character the text renderer uses for a.
func (a Area) Symbol(revealAll bool) string {
	switch {
	case a.Mark == MarkFlag && a.Mistake:
		return "x"
	case a.Mark == MarkFlag:
		return "F"
	case a.HasMine && !a.IsCovered && a.Mistake:
		return "X"
	case a.HasMine && (!a.IsCovered || revealAll):
		return "*"
	case a.IsCovered && !revealAll && a.Mark == MarkQuestion:
		return "?"
	case a.IsCovered && !revealAll:
		return "#"
	case a.MinesAround == 0:
		return "."
	default:
		return strconv.Itoa(a.MinesAround)
	}
}

// Render draws the board one row per line. With revealAll set, covered
// cells show what lies beneath them.
func (g *Game) Render(revealAll bool) string {
	return RenderAreas(g.grid.areas, g.field.Width, revealAll)
}

func RenderAreas(areas []Area, width int, revealAll bool) string {
	var b strings.Builder
	for i, a := range areas {
		if i%width != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.Symbol(revealAll))
		if i%width == width-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
