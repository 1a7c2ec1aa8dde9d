package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/mines"
	"github.com/vancomm/antimine/internal/session"
)

type gameResponse struct {
	SaveID         string       `json:"save_id"`
	Difficulty     string       `json:"difficulty"`
	State          string       `json:"state"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	Mines          int          `json:"mines"`
	RemainingMines int          `json:"remaining_mines"`
	Dead           bool         `json:"dead"`
	Won            bool         `json:"won"`
	Score          *int64       `json:"score"`
	Cells          []mines.Area `json:"cells"`
	StartedAt      *int64       `json:"started_at"`
	EndedAt        *int64       `json:"ended_at"`
}

func decodeGame(t *testing.T, rec *httptest.ResponseRecorder) gameResponse {
	t.Helper()
	var res gameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func TestNewGame(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)

	rec := serve(h.NewGame, request{method: http.MethodPost, target: "/game?difficulty=beginner&cell=40"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decodeGame(t, rec)
	assert.Equal(t, "1", res.SaveID)
	assert.Equal(t, "beginner", res.Difficulty)
	assert.Equal(t, 9, res.Width)
	assert.Equal(t, 10, res.Mines)
	require.Len(t, res.Cells, 81)
	assert.False(t, res.Cells[40].IsCovered)
	assert.Zero(t, res.Cells[40].MinesAround)
	assert.NotNil(t, res.StartedAt)

	row, err := repo.GetSave(t.Context(), 1)
	require.NoError(t, err)
	assert.Nil(t, row.PlayerID)
	assert.Equal(t, int64(7), row.Seed)
}

func TestNewGameForPlayer(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)

	rec := serve(h.NewGame, request{
		method: http.MethodPost,
		target: "/game?width=5&height=4&mines=3&cell=0",
		claims: config.NewPlayerClaims(3, "alice"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeGame(t, rec)
	assert.Equal(t, "custom", res.Difficulty)
	assert.Equal(t, 5, res.Width)
	assert.Equal(t, 4, res.Height)

	row, err := repo.GetSave(t.Context(), 1)
	require.NoError(t, err)
	require.NotNil(t, row.PlayerID)
	assert.Equal(t, int64(3), *row.PlayerID)
}

func TestNewGameRejectsBadInput(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)

	for name, target := range map[string]string{
		"missing cell":       "/game?difficulty=expert",
		"unknown difficulty": "/game?difficulty=nightmare&cell=0",
		"cell off board":     "/game?difficulty=beginner&cell=81",
		"overfull board":     "/game?difficulty=custom&width=2&height=2&mines=4&cell=0",
		"custom sizes":       "/game?difficulty=custom&cell=0",
		"not a number":       "/game?cell=first",
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(h.NewGame, request{method: http.MethodPost, target: target})
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
	assert.Empty(t, repo.saves)
}

func TestFetch(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	id := repo.store(t, nil, savedBoard(3, 3, 0))

	rec := serve(h.Fetch, request{method: http.MethodGet, target: "/game/1", id: "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeGame(t, rec)
	assert.Equal(t, "1", res.SaveID)
	assert.Equal(t, "running", res.State)
	assert.Equal(t, 1, res.RemainingMines)
	for _, a := range res.Cells {
		assert.False(t, a.HasMine, "covered mines stay hidden")
	}
	assert.Equal(t, int64(1), id)
}

func TestFetchErrors(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	owner := int64(5)
	repo.store(t, &owner, savedBoard(3, 3, 0))

	tests := []struct {
		name   string
		rq     request
		status int
	}{
		{"bad id", request{id: "abc"}, http.StatusBadRequest},
		{"negative id", request{id: "-1"}, http.StatusBadRequest},
		{"missing", request{id: "42"}, http.StatusNotFound},
		{"anonymous", request{id: "1"}, http.StatusUnauthorized},
		{"someone else", request{id: "1", claims: config.NewPlayerClaims(6, "mallory")}, http.StatusUnauthorized},
		{"owner", request{id: "1", claims: config.NewPlayerClaims(5, "alice")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rq.method = http.MethodGet
			tt.rq.target = "/game/" + tt.rq.id
			rec := serve(h.Fetch, tt.rq)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestClickWins(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	repo.store(t, nil, savedBoard(3, 3, 0))

	rec := serve(h.Click(), request{method: http.MethodPost, target: "/game/1/click?cell=8", id: "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeGame(t, rec)
	assert.Equal(t, "victory", res.State)
	assert.True(t, res.Won)
	assert.NotNil(t, res.Score)
	assert.NotNil(t, res.EndedAt)
	assert.True(t, res.Cells[0].HasMine)
	assert.Equal(t, mines.MarkFlag, res.Cells[0].Mark)

	assert.True(t, repo.saved(t, 1).Won())
}

func TestClickLoses(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	repo.store(t, nil, savedBoard(3, 3, 0, 8))

	rec := serve(h.Click(), request{method: http.MethodPost, target: "/game/1/click?cell=0", id: "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeGame(t, rec)
	assert.Equal(t, "game_over", res.State)
	assert.True(t, res.Dead)
	assert.Nil(t, res.Score)
	assert.False(t, res.Cells[8].IsCovered, "the other mine is revealed")

	rec = serve(h.Click(), request{method: http.MethodPost, target: "/game/1/click?cell=4", id: "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeGame(t, rec).Cells[4].IsCovered, "a lost board stays frozen")
}

func TestLongClickFlags(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	repo.store(t, nil, savedBoard(3, 3, 0))

	rec := serve(h.LongClick(), request{method: http.MethodPost, target: "/game/1/long-click?cell=0", id: "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeGame(t, rec)
	assert.Equal(t, mines.MarkFlag, res.Cells[0].Mark)
	assert.Zero(t, res.RemainingMines)
	assert.Equal(t, mines.MarkFlag, repo.saved(t, 1).Cells[0].Mark)

	rec = serve(h.LongClick(), request{method: http.MethodPost, target: "/game/1/long-click", id: "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistant(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	save := savedBoard(3, 3, 0)
	for _, id := range []int{1, 2, 3, 4, 5} {
		save.Cells[id].Covered = false
	}
	repo.store(t, nil, save)

	rec := serve(h.Assistant(), request{method: http.MethodPost, target: "/game/1/assistant", id: "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "victory", decodeGame(t, rec).State)
}

func TestForfeit(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	repo.store(t, nil, savedBoard(3, 3, 0, 8))

	rec := serve(h.Forfeit(), request{method: http.MethodPost, target: "/game/1/forfeit", id: "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeGame(t, rec)
	assert.True(t, res.Dead)
	for _, a := range res.Cells {
		assert.False(t, a.IsCovered, "cell %d", a.ID)
	}
	assert.True(t, repo.saved(t, 1).Dead())
}

func TestCurrent(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	player := int64(9)
	claims := config.NewPlayerClaims(player, "bob")

	rec := serve(h.Current, request{method: http.MethodGet, target: "/game/current"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h.Current, request{method: http.MethodGet, target: "/game/current", claims: claims})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeGame(t, rec)
	assert.Empty(t, res.SaveID, "a fresh board is stored on its first click")
	assert.Equal(t, "start_new_game", res.State)
	assert.Equal(t, 12, res.Width)

	repo.store(t, &player, savedBoard(3, 3, 0))
	rec = serve(h.Current, request{method: http.MethodGet, target: "/game/current", claims: claims})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decodeGame(t, rec)
	assert.Equal(t, "1", res.SaveID)
	assert.Equal(t, "running", res.State)
}

func TestGameDTOOutcome(t *testing.T) {
	field := mines.Minefield{Width: 3, Height: 3, Mines: 1}
	tests := []struct {
		event     session.Event
		dead, won bool
	}{
		{session.EventRunning, false, false},
		{session.EventStartNewGame, false, false},
		{session.EventGameOver, true, false},
		{session.EventResumeGameOver, true, false},
		{session.EventVictory, false, true},
		{session.EventResumeVictory, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			dto := newGameDTO(mines.Custom, field, session.Update{Event: tt.event, Width: 3, Height: 3}, nil)
			assert.Equal(t, tt.dead, dto.Dead)
			assert.Equal(t, tt.won, dto.Won)
			assert.Equal(t, tt.event, dto.State)
			assert.Empty(t, dto.SaveID)
		})
	}
}

type wsUpdate struct {
	Event   string       `json:"event"`
	Changed []mines.Area `json:"changed"`
	Field   []mines.Area `json:"field"`
	Error   string       `json:"error"`
}

func TestConnect(t *testing.T) {
	repo := newFakeRepo()
	h := newTestGameHandler(t, repo)
	repo.store(t, nil, savedBoard(3, 3, 0))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /game/{id}/connect", h.Connect)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/1/connect"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() wsUpdate {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var u wsUpdate
		require.NoError(t, conn.ReadJSON(&u))
		return u
	}
	until := func(match func(wsUpdate) bool) wsUpdate {
		t.Helper()
		for {
			if u := read(); match(u) {
				return u
			}
		}
	}

	first := read()
	assert.Equal(t, "running", first.Event)
	assert.Len(t, first.Field, 9)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("x 1")))
	u := until(func(u wsUpdate) bool { return u.Error != "" })
	assert.Contains(t, u.Error, "unknown command")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("c 8")))
	until(func(u wsUpdate) bool { return u.Event == "victory" })

	assert.Eventually(t, func() bool {
		row, err := repo.GetSave(t.Context(), 1)
		return err == nil && row.Won
	}, 5*time.Second, 10*time.Millisecond)
}

func TestConnectMissingGame(t *testing.T) {
	h := newTestGameHandler(t, newFakeRepo())
	rec := serve(h.Connect, request{method: http.MethodGet, target: "/game/3/connect", id: "3"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
