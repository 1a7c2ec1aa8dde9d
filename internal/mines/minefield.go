package mines

import (
	"fmt"
	"strings"
)

// Minefield describes the board to generate.
type Minefield struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	Mines  int `json:"mines" yaml:"mines"`
}

func (m Minefield) Cells() int {
	return m.Width * m.Height
}

func (m Minefield) Validate() error {
	switch {
	case m.Width <= 0 || m.Height <= 0:
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d",
			ErrInvalidConfiguration, m.Width, m.Height)
	case m.Mines <= 0:
		return fmt.Errorf("%w: need at least one mine, got %d",
			ErrInvalidConfiguration, m.Mines)
	case m.Mines >= m.Cells():
		return fmt.Errorf("%w: %d mines do not fit a %dx%d board",
			ErrInvalidConfiguration, m.Mines, m.Width, m.Height)
	}
	return nil
}

// Density is the share of cells holding a mine.
func (m Minefield) Density() float64 {
	if m.Cells() == 0 {
		return 0
	}
	return float64(m.Mines) / float64(m.Cells())
}

func (m Minefield) String() string {
	return fmt.Sprintf("%d:%d:%d", m.Width, m.Height, m.Mines)
}

// ParseMinefield is the inverse of [Minefield.String].
func ParseMinefield(s string) (Minefield, error) {
	var m Minefield
	n, err := fmt.Sscanf(
		strings.ReplaceAll(s, ":", " "), "%d %d %d", &m.Width, &m.Height, &m.Mines,
	)
	if n != 3 || err != nil {
		return Minefield{}, fmt.Errorf(
			`invalid minefield "%s" (n = %d, err = %v)`, s, n, err,
		)
	}
	return m, m.Validate()
}

type Difficulty string

const (
	Standard     Difficulty = "standard"
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Expert       Difficulty = "expert"
	Custom       Difficulty = "custom"
)

var Difficulties = []Difficulty{Standard, Beginner, Intermediate, Expert, Custom}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// weight grows with how hard a board of this difficulty is. Custom boards
// are weighed by mine density so a crowded custom board is worth more.
func (d Difficulty) weight(field Minefield) int64 {
	switch d {
	case Beginner:
		return 1
	case Standard:
		return 2
	case Intermediate:
		return 3
	case Expert:
		return 6
	default:
		return 1 + int64(field.Density()*10)
	}
}
