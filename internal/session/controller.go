package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/mines"
)

// DefaultExplosionDelay is how long the staged reveal of the remaining mines
// takes on a board of ten mines or fewer.
const DefaultExplosionDelay = 750 * time.Millisecond

var ErrNotStarted = errors.New("no game in progress")

type Options struct {
	Dimensions  Dimensions
	Preferences config.Preferences
	Saves       Saves
	Analytics   Analytics
	Listener    Listener
	Logger      logrus.FieldLogger
	Clock       *Clock

	// ExplosionDelay is split evenly between the mines revealed after a
	// loss. Zero reveals them all at once.
	ExplosionDelay time.Duration

	// NewSeed returns the seed of every new board.
	NewSeed func() uint64
}

// Controller runs one player's games: it feeds input to the engine, keeps
// the clock, reports updates to a listener and hands snapshots to storage.
// All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	dims      Dimensions
	prefs     config.Preferences
	saves     Saves
	analytics Analytics
	listener  Listener
	log       logrus.FieldLogger
	clock     *Clock
	delay     time.Duration
	newSeed   func() uint64

	game        *mines.Game
	difficulty  mines.Difficulty
	initialized bool
	finished    bool
	settled     bool
}

func New(opts Options) *Controller {
	c := &Controller{
		dims:       opts.Dimensions,
		prefs:      opts.Preferences,
		saves:      opts.Saves,
		analytics:  opts.Analytics,
		listener:   opts.Listener,
		log:        opts.Logger,
		clock:      opts.Clock,
		delay:      opts.ExplosionDelay,
		newSeed:    opts.NewSeed,
		difficulty: mines.Standard,
	}
	if c.dims == nil {
		c.dims = config.DefaultPresets().WithCustom(c.prefs.Custom)
	}
	if c.analytics == nil {
		c.analytics = noAnalytics{}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.clock == nil {
		c.clock = NewClock()
	}
	if c.newSeed == nil {
		c.newSeed = rand.Uint64
	}
	return c
}

// OnCreate resumes the player's unfinished game, or starts a new one when
// there is none or when newGame asks for a fresh board.
func (c *Controller) OnCreate(ctx context.Context, newGame *mines.Difficulty) (mines.Minefield, error) {
	var last *mines.SaveState
	if newGame == nil && c.saves != nil {
		var err error
		if last, err = c.saves.FetchCurrentSave(ctx); err != nil {
			return mines.Minefield{}, fmt.Errorf("unable to fetch current save: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if last != nil {
		field, err := c.resumeLocked(*last)
		if err == nil {
			return field, nil
		}
		c.log.WithError(err).WithField("saveID", last.SaveID).Warn("discarding unusable save")
	}

	d := c.difficulty
	if newGame != nil {
		d = *newGame
	}
	return c.startNewGameLocked(d)
}

func (c *Controller) StartNewGame(d mines.Difficulty) (mines.Minefield, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startNewGameLocked(d)
}

func (c *Controller) startNewGameLocked(d mines.Difficulty) (mines.Minefield, error) {
	field, err := c.dims.Minefield(d)
	if err != nil {
		return mines.Minefield{}, err
	}
	seed := c.newSeed()
	game, err := mines.NewGame(field, seed)
	if err != nil {
		return mines.Minefield{}, err
	}
	game.SetQuestionMarks(c.prefs.QuestionMarks)

	c.clock.Reset(0)
	c.game = game
	c.difficulty = d
	c.initialized = true
	c.finished = false
	c.settled = false

	c.log.WithFields(logrus.Fields{
		"difficulty": d,
		"minefield":  field.String(),
		"seed":       seed,
	}).Info("new game")

	c.emit(EventStartNewGame, nil, true)
	c.analytics.NewGame(field, d, seed)
	return field, nil
}

// Resume continues a saved game exactly where it was left.
func (c *Controller) Resume(save mines.SaveState) (mines.Minefield, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumeLocked(save)
}

func (c *Controller) resumeLocked(save mines.SaveState) (mines.Minefield, error) {
	game, err := mines.RestoreGame(save)
	if err != nil {
		return mines.Minefield{}, err
	}
	game.SetQuestionMarks(c.prefs.QuestionMarks)

	c.clock.Reset(save.ElapsedSeconds)
	c.game = game
	c.difficulty = save.Difficulty
	c.initialized = true

	ev := EventResumeGame
	switch {
	case game.HasAnyMineExploded():
		ev = EventResumeGameOver
	case game.CheckVictory():
		ev = EventResumeVictory
	}
	c.finished = ev.Finished()
	c.settled = c.finished

	c.log.WithFields(logrus.Fields{
		"saveID":  save.SaveID,
		"elapsed": save.ElapsedSeconds,
		"event":   ev,
	}).Info("resumed game")

	c.emit(ev, nil, true)
	c.analytics.ResumePreviousGame()
	return save.Minefield, nil
}

// ClickArea handles a tap: a marked cell loses its mark, anything else is
// opened. The very first tap plants the mines around it. The returned event
// tells whether the game goes on, is lost or is won.
func (c *Controller) ClickArea(id int) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(id); err != nil {
		return EventNone, err
	}
	if c.finished {
		return c.stateLocked(), nil
	}

	if c.game.TurnOffAllHighlighted() {
		c.emit(EventNone, nil, true)
	}

	var (
		changed []int
		err     error
	)
	if c.game.HasMarkOn(id) {
		changed, err = c.game.RemoveMark(id)
	} else {
		if err := c.plantLocked(id); err != nil {
			return EventNone, err
		}
		changed, err = c.game.ClickArea(id)
	}
	if err != nil {
		return EventNone, err
	}
	c.emit(EventNone, changed, false)

	if c.prefs.FlagAssistant && !c.game.HasAnyMineExploded() {
		if _, err := c.assistLocked(); err != nil {
			return EventNone, err
		}
	}

	c.analytics.PressArea(id)
	return c.updateGameStateLocked(), nil
}

func (c *Controller) plantLocked(id int) error {
	if c.game.HasMines() {
		return nil
	}
	err := c.game.PlantMinesExcept(id, c.prefs.FirstClickOpening)
	if errors.Is(err, mines.ErrInvalidConfiguration) && c.prefs.FirstClickOpening {
		c.log.WithField("minefield", c.game.Minefield().String()).
			Warn("board too dense for a first click opening")
		err = c.game.PlantMinesExcept(id, false)
	}
	if errors.Is(err, mines.ErrAlreadyPlanted) {
		return nil
	}
	return err
}

// LongClick cycles the mark of a covered cell. On an open number it chords,
// or highlights the neighbours when the flags around do not add up.
func (c *Controller) LongClick(id int) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(id); err != nil {
		return EventNone, err
	}
	if c.finished {
		return c.stateLocked(), nil
	}

	if c.game.TurnOffAllHighlighted() {
		c.emit(EventNone, nil, true)
	}

	var (
		changed []int
		err     error
	)
	if c.game.HasCoverOn(id) {
		changed, err = c.game.SwitchMarkAt(id)
		c.analytics.LongPressArea(id)
	} else {
		changed, err = c.game.OpenNeighbors(id)
		if err == nil && len(changed) == 0 {
			changed, err = c.game.Highlight(id)
		}
		c.analytics.LongPressMultipleArea(id)
	}
	if err != nil {
		return EventNone, err
	}
	c.emit(EventNone, changed, false)
	return c.updateGameStateLocked(), nil
}

// RunAssistant applies the flag assistant once, whatever the preference.
func (c *Controller) RunAssistant() (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.game == nil {
		return EventNone, ErrNotStarted
	}
	if c.finished || !c.game.HasMines() {
		return c.stateLocked(), nil
	}
	if _, err := c.assistLocked(); err != nil {
		return EventNone, err
	}
	return c.updateGameStateLocked(), nil
}

func (c *Controller) assistLocked() ([]int, error) {
	changed, err := c.game.RunFlagAssistant()
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		c.emit(EventNone, changed, false)
	}
	return changed, nil
}

func (c *Controller) checkLocked(id int) error {
	if c.game == nil {
		return ErrNotStarted
	}
	_, err := c.game.Area(id)
	return err
}

func (c *Controller) stateLocked() Event {
	switch {
	case c.game == nil:
		return EventNone
	case c.game.HasAnyMineExploded():
		return EventGameOver
	case c.game.CheckVictory():
		return EventVictory
	case c.game.HasMines():
		return EventRunning
	default:
		return EventStartNewGame
	}
}

func (c *Controller) updateGameStateLocked() Event {
	ev := EventRunning
	switch {
	case c.game.HasAnyMineExploded():
		ev = EventGameOver
	case c.game.CheckVictory():
		ev = EventVictory
	}

	if ev.Finished() {
		c.finished = true
		c.clock.Stop()
	} else if c.game.HasMines() {
		c.runClockLocked()
	}

	c.emit(ev, nil, false)
	return ev
}

// Settle finishes a game that ev reports as lost or won.
func (c *Controller) Settle(ctx context.Context, ev Event) error {
	switch ev {
	case EventGameOver:
		return c.GameOver(ctx)
	case EventVictory:
		return c.Victory(ctx)
	}
	return nil
}

// GameOver reveals the hidden mines one by one, nearest to the blast first,
// then calls out wrong flags and saves. Cancelling ctx stops the sequence
// between two mines and leaves a consistent board.
func (c *Controller) GameOver(ctx context.Context) error {
	c.mu.Lock()
	if c.game == nil || c.settled || !c.game.HasAnyMineExploded() {
		c.mu.Unlock()
		return nil
	}
	c.settled = true
	c.finished = true
	c.clock.Stop()

	game := c.game
	elapsed := c.clock.Time()
	c.analytics.GameOver(c.difficulty, elapsed, game.Score(elapsed, c.difficulty))

	var radius []mines.Area
	if exploded, ok := game.FindExplodedMine(); ok {
		radius = game.TakeExplosionRadius(exploded)
		c.log.WithFields(logrus.Fields{
			"cell":    exploded.ID,
			"elapsed": elapsed,
			"hidden":  len(radius),
		}).Info("game over")
	}
	step := c.delay / time.Duration(max(game.Minefield().Mines, 10))
	c.mu.Unlock()

	for _, a := range radius {
		c.mu.Lock()
		if c.game != game {
			c.mu.Unlock()
			return nil
		}
		changed, _ := game.RevealMine(a.ID)
		c.emit(EventNone, changed, false)
		c.mu.Unlock()

		if err := sleep(ctx, step); err != nil {
			return err
		}
	}

	c.mu.Lock()
	if c.game != game {
		c.mu.Unlock()
		return nil
	}
	game.ShowWrongFlags()
	c.emit(EventGameOver, nil, true)
	c.mu.Unlock()

	return c.SaveGame(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Victory flags every mine and saves the finished game.
func (c *Controller) Victory(ctx context.Context) error {
	c.mu.Lock()
	if c.game == nil || c.settled || !c.game.CheckVictory() {
		c.mu.Unlock()
		return nil
	}
	c.settled = true
	c.finished = true
	c.clock.Stop()

	elapsed := c.clock.Time()
	score := c.game.Score(elapsed, c.difficulty)
	c.analytics.Victory(c.difficulty, elapsed, score)
	c.log.WithFields(logrus.Fields{
		"difficulty": c.difficulty,
		"elapsed":    elapsed,
		"score":      score,
	}).Info("victory")

	changed := c.game.FlagAllMines()
	changed = append(changed, c.game.ShowWrongFlags()...)
	c.emit(EventVictory, changed, false)
	c.mu.Unlock()

	return c.SaveGame(ctx)
}

// Forfeit gives the game up: every cell is disclosed and the game counts as
// lost.
func (c *Controller) Forfeit(ctx context.Context) error {
	c.mu.Lock()
	if c.game == nil {
		c.mu.Unlock()
		return ErrNotStarted
	}
	if c.finished || !c.game.HasMines() {
		c.finished = true
		c.settled = true
		c.clock.Stop()
		c.mu.Unlock()
		return nil
	}
	c.finished = true
	c.settled = true
	c.clock.Stop()

	c.game.RevealAllEmptyAreas()
	for _, id := range c.game.MinePositions() {
		if _, err := c.game.RevealMine(id); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.game.ShowWrongFlags()

	elapsed := c.clock.Time()
	c.analytics.GameOver(c.difficulty, elapsed, 0)
	c.log.WithField("elapsed", elapsed).Info("game forfeited")
	c.emit(EventGameOver, nil, true)
	c.mu.Unlock()

	return c.SaveGame(ctx)
}

// Pause stops the clock, for instance when the player leaves.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	if c.game.HasMines() {
		c.emit(EventPause, nil, false)
	}
	c.clock.Stop()
}

func (c *Controller) ResumeGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || !c.game.HasMines() {
		return
	}
	c.emit(EventResume, nil, false)
	if !c.finished {
		c.runClockLocked()
	}
}

func (c *Controller) RunClock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runClockLocked()
}

func (c *Controller) runClockLocked() {
	if !c.clock.IsStopped() {
		return
	}
	c.clock.Start(func(int64) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.finished {
			c.emit(EventNone, nil, false)
		}
	})
}

func (c *Controller) StopClock() {
	c.clock.Stop()
}

// Snapshot copies the current game. The copy shares nothing with the
// controller and may be written out from another goroutine.
func (c *Controller) Snapshot() (mines.SaveState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return mines.SaveState{}, ErrNotStarted
	}
	return c.game.SaveState(c.clock.Time(), c.difficulty), nil
}

// SaveGame stores the current game once its mines exist. Storage runs
// without holding the controller, so input keeps flowing meanwhile.
func (c *Controller) SaveGame(ctx context.Context) error {
	c.mu.Lock()
	if !c.initialized || c.saves == nil || !c.game.HasMines() {
		c.mu.Unlock()
		return nil
	}
	game := c.game
	snapshot := game.SaveState(c.clock.Time(), c.difficulty)
	c.mu.Unlock()

	id, err := c.saves.SaveGame(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("unable to save game: %w", err)
	}

	c.mu.Lock()
	if c.game == game {
		game.SetCurrentSaveID(id)
	}
	c.mu.Unlock()
	c.log.WithField("saveID", id).Debug("game saved")
	return nil
}

// View returns the whole board as the player may see it.
func (c *Controller) View() (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return Update{}, ErrNotStarted
	}
	return c.updateLocked(c.stateLocked(), nil, true), nil
}

func (c *Controller) Difficulty() mines.Difficulty {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.difficulty
}

func (c *Controller) Elapsed() int64 {
	return c.clock.Time()
}

func (c *Controller) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

func (c *Controller) emit(ev Event, changed []int, full bool) {
	if c.listener == nil || c.game == nil {
		return
	}
	c.listener(c.updateLocked(ev, changed, full))
}

func (c *Controller) updateLocked(ev Event, changed []int, full bool) Update {
	field := c.game.Minefield()
	u := Update{
		Event:          ev,
		Width:          field.Width,
		Height:         field.Height,
		RemainingMines: c.game.RemainingMines(),
		Elapsed:        c.clock.Time(),
	}
	if full {
		u.Field = c.game.Field()
		for i := range u.Field {
			u.Field[i] = conceal(u.Field[i], c.finished)
		}
		return u
	}
	for _, id := range changed {
		if a, err := c.game.Area(id); err == nil {
			u.Changed = append(u.Changed, conceal(a, c.finished))
		}
	}
	return u
}

// conceal hides what lies under a covered cell while the game is on.
func conceal(a mines.Area, finished bool) mines.Area {
	if a.IsCovered && !finished {
		a.HasMine = false
		a.MinesAround = 0
	}
	return a
}
