package mines

import (
	"iter"
	"strconv"
)

type Mark int8

const (
	MarkNone Mark = iota
	MarkFlag
	MarkQuestion
)

func (m Mark) String() string {
	switch m {
	case MarkNone:
		return "none"
	case MarkFlag:
		return "flag"
	case MarkQuestion:
		return "question"
	default:
		return "mark(" + strconv.Itoa(int(m)) + ")"
	}
}

// Area is a single cell of the board.
type Area struct {
	ID          int  `json:"id"`
	Row         int  `json:"row"`
	Col         int  `json:"col"`
	HasMine     bool `json:"has_mine"`
	IsCovered   bool `json:"is_covered"`
	Mark        Mark `json:"mark"`
	MinesAround int  `json:"mines_around"`
	Mistake     bool `json:"mistake"`
	Highlighted bool `json:"highlighted"`
}

// Grid is a row-major width x height board. It owns its areas; callers
// outside this package only ever see copies.
type Grid struct {
	width, height int
	areas         []Area
}

func NewGrid(width, height int) *Grid {
	areas := make([]Area, width*height)
	for i := range areas {
		areas[i] = Area{
			ID:        i,
			Row:       i / width,
			Col:       i % width,
			IsCovered: true,
		}
	}
	return &Grid{width: width, height: height, areas: areas}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) Len() int    { return len(g.areas) }

func (g *Grid) Contains(id int) bool {
	return 0 <= id && id < len(g.areas)
}

func (g *Grid) Index(row, col int) (int, bool) {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return 0, false
	}
	return row*g.width + col, true
}

// Area returns a copy of the area with the given id.
func (g *Grid) Area(id int) (Area, bool) {
	if !g.Contains(id) {
		return Area{}, false
	}
	return g.areas[id], true
}

func (g *Grid) at(id int) *Area {
	return &g.areas[id]
}

// Neighbors yields the ids of the up to eight cells surrounding id, in
// ascending order.
func (g *Grid) Neighbors(id int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !g.Contains(id) {
			return
		}
		row, col := id/g.width, id%g.width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				j, ok := g.Index(row+dy, col+dx)
				if ok && !yield(j) {
					return
				}
			}
		}
	}
}

// Distance is the Chebyshev distance between two cells.
func (g *Grid) Distance(a, b int) int {
	return max(
		absDiff(a/g.width, b/g.width),
		absDiff(a%g.width, b%g.width),
	)
}

func (g *Grid) countAround(id int, pred func(*Area) bool) int {
	n := 0
	for j := range g.Neighbors(id) {
		if pred(&g.areas[j]) {
			n++
		}
	}
	return n
}

// Areas returns a copy of every area in id order.
func (g *Grid) Areas() []Area {
	out := make([]Area, len(g.areas))
	copy(out, g.areas)
	return out
}
