package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/mines"
)

type fakeSaves struct {
	mu      sync.Mutex
	current *mines.SaveState
	saved   []mines.SaveState
	nextID  int64
}

func (s *fakeSaves) FetchCurrentSave(context.Context) (*mines.SaveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *fakeSaves) SaveGame(_ context.Context, save mines.SaveState) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if save.SaveID == 0 {
		s.nextID++
		save.SaveID = s.nextID
	}
	s.saved = append(s.saved, save)
	return save.SaveID, nil
}

func (s *fakeSaves) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *fakeSaves) last() mines.SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[len(s.saved)-1]
}

type fakeAnalytics struct {
	noAnalytics
	mu       sync.Mutex
	seeds    []uint64
	presses  []int
	gameOver int
	victory  int
	resumed  int
}

func (a *fakeAnalytics) NewGame(_ mines.Minefield, _ mines.Difficulty, seed uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seeds = append(a.seeds, seed)
}

func (a *fakeAnalytics) ResumePreviousGame() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resumed++
}

func (a *fakeAnalytics) PressArea(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.presses = append(a.presses, id)
}

func (a *fakeAnalytics) GameOver(mines.Difficulty, int64, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gameOver++
}

func (a *fakeAnalytics) Victory(mines.Difficulty, int64, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.victory++
}

type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) listen(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, u := range r.updates {
		if u.Event != EventNone {
			out = append(out, u.Event)
		}
	}
	return out
}

func (r *recorder) lastEvent() Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.updates) - 1; i >= 0; i-- {
		if r.updates[i].Event != EventNone {
			return r.updates[i]
		}
	}
	return Update{}
}

type harness struct {
	*Controller
	saves     *fakeSaves
	analytics *fakeAnalytics
	rec       *recorder
}

func quietClock() *Clock {
	c := NewClock()
	c.interval = time.Hour
	return c
}

func newHarness(t *testing.T, prefs config.Preferences) *harness {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	h := &harness{
		saves:     &fakeSaves{},
		analytics: &fakeAnalytics{},
		rec:       &recorder{},
	}
	h.Controller = New(Options{
		Preferences: prefs,
		Saves:       h.saves,
		Analytics:   h.analytics,
		Listener:    h.rec.listen,
		Logger:      log,
		Clock:       quietClock(),
		NewSeed:     func() uint64 { return 7 },
	})
	t.Cleanup(h.StopClock)
	return h
}

// savedBoard is an untouched planted board with mines at the given ids.
func savedBoard(width, height int, mineIDs ...int) mines.SaveState {
	cells := make([]mines.CellState, width*height)
	for i := range cells {
		cells[i].Covered = true
	}
	return mines.SaveState{
		Seed:          1,
		Difficulty:    mines.Custom,
		Minefield:     mines.Minefield{Width: width, Height: height, Mines: len(mineIDs)},
		Planted:       true,
		MinePositions: mineIDs,
		Cells:         cells,
	}
}

func resumed(t *testing.T, prefs config.Preferences, save mines.SaveState) *harness {
	t.Helper()
	h := newHarness(t, prefs)
	_, err := h.Resume(save)
	require.NoError(t, err)
	return h
}
