package mines

import "math/rand/v2"

// NewRand returns the generator used for mine placement. The same seed always
// yields the same layout.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// celltodo is an intrusive FIFO of cell indices. An index can sit in the
// queue at most once at a time.
type celltodo struct {
	next       []int
	queued     []bool
	head, tail int
}

func newCellTodo(size int) *celltodo {
	return &celltodo{
		next:   make([]int, size),
		queued: make([]bool, size),
		head:   -1,
		tail:   -1,
	}
}

func (std *celltodo) add(i int) {
	if std.queued[i] {
		return
	}
	std.queued[i] = true
	if std.tail >= 0 {
		std.next[std.tail] = i
	} else {
		std.head = i
	}
	std.tail = i
	std.next[i] = -1
}

func (std *celltodo) pop() (int, bool) {
	if std.head == -1 {
		return 0, false
	}
	i := std.head
	std.head = std.next[i]
	if std.head == -1 {
		std.tail = -1
	}
	std.queued[i] = false
	return i, true
}
