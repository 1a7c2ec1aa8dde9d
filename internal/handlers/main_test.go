package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/middleware"
	"github.com/vancomm/antimine/internal/mines"
	"github.com/vancomm/antimine/internal/repository"
)

type fakeRepo struct {
	mu         sync.Mutex
	saves      map[int64]*repository.GameSave
	players    map[string]*repository.Player
	highscores []repository.Highscore
	filter     repository.HighscoreFilter
	nextID     int64
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		saves:   map[int64]*repository.GameSave{},
		players: map[string]*repository.Player{},
	}
}

func (f *fakeRepo) put(row *repository.GameSave, save mines.SaveState) (*repository.GameSave, error) {
	state, err := save.Bytes()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row.Difficulty = string(save.Difficulty)
	row.Width = int32(save.Minefield.Width)
	row.Height = int32(save.Minefield.Height)
	row.Mines = int32(save.Minefield.Mines)
	row.Seed = int64(save.Seed)
	row.ElapsedSeconds = save.ElapsedSeconds
	row.Dead = save.Dead()
	row.Won = save.Won()
	row.State = state
	row.UpdatedAt = now
	if row.Won {
		score := mines.Score(save.ElapsedSeconds, save.Difficulty, save.Minefield)
		row.Score = &score
	}
	if row.Finished() && row.EndedAt == nil {
		row.EndedAt = &now
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepo) CreateSave(_ context.Context, playerID *int64, save mines.SaveState) (*repository.GameSave, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	row := &repository.GameSave{
		SaveID:    f.nextID,
		PlayerID:  playerID,
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	f.saves[row.SaveID] = row
	return f.put(row, save)
}

func (f *fakeRepo) UpdateSave(_ context.Context, save mines.SaveState) (*repository.GameSave, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.saves[save.SaveID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.put(row, save)
}

func (f *fakeRepo) GetSave(_ context.Context, saveID int64) (*repository.GameSave, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.saves[saveID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepo) FetchCurrentSave(_ context.Context, playerID int64) (*repository.GameSave, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var current *repository.GameSave
	for _, row := range f.saves {
		if row.PlayerID == nil || *row.PlayerID != playerID || row.Finished() {
			continue
		}
		if current == nil || row.UpdatedAt.After(current.UpdatedAt) {
			current = row
		}
	}
	if current == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *current
	return &copied, nil
}

func (f *fakeRepo) GetHighscores(_ context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	return f.highscores, nil
}

func (f *fakeRepo) CreatePlayer(_ context.Context, params repository.CreatePlayerParams) (*repository.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.players[params.Username]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	player := &repository.Player{
		PlayerID:     int64(len(f.players) + 1),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
	}
	f.players[params.Username] = player
	return player, nil
}

func (f *fakeRepo) GetPlayer(_ context.Context, username string) (*repository.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return player, nil
}

// store saves a board as if a player had already started it.
func (f *fakeRepo) store(t *testing.T, playerID *int64, save mines.SaveState) int64 {
	t.Helper()
	row, err := f.CreateSave(context.Background(), playerID, save)
	require.NoError(t, err)
	return row.SaveID
}

func (f *fakeRepo) saved(t *testing.T, saveID int64) mines.SaveState {
	t.Helper()
	row, err := f.GetSave(context.Background(), saveID)
	require.NoError(t, err)
	save, err := row.SaveState()
	require.NoError(t, err)
	return *save
}

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

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestGameHandler(t *testing.T, repo *fakeRepo) *GameHandler {
	t.Helper()
	t.Setenv("WS_ALLOWED_ORIGINS", "")
	ws, err := config.NewWebSocket()
	require.NoError(t, err)

	h := NewGameHandler(quietLogger(), repo, config.DefaultPresets(), config.DefaultPreferences(), nil, ws)
	h.newSeed = func() uint64 { return 7 }
	return h
}

type request struct {
	method string
	target string
	id     string
	form   url.Values
	claims *config.PlayerClaims
}

func (rq request) build() *http.Request {
	var body io.Reader
	if rq.form != nil {
		body = strings.NewReader(rq.form.Encode())
	}
	r := httptest.NewRequest(rq.method, rq.target, body)
	if rq.form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if rq.id != "" {
		r.SetPathValue("id", rq.id)
	}
	if rq.claims != nil {
		r = r.WithContext(context.WithValue(r.Context(), middleware.CtxPlayerClaims, rq.claims))
	}
	return r
}

func serve(h http.HandlerFunc, rq request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, rq.build())
	return rec
}
