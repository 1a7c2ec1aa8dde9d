package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/antimine/internal/repository"
)

func TestHighscores(t *testing.T) {
	repo := newFakeRepo()
	alice := "alice"
	repo.highscores = []repository.Highscore{
		{SaveID: 3, Username: &alice, Difficulty: "expert", Width: 24, Height: 24, Mines: 99, ElapsedSeconds: 300, Score: 1200},
	}
	h := NewHighscores(quietLogger(), repo)

	rec := serve(h.List, request{method: http.MethodGet, target: "/highscores?difficulty=expert&limit=10"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var scores []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scores))
	require.Len(t, scores, 1)
	assert.Equal(t, "3", scores[0]["save_id"])
	assert.Equal(t, "alice", scores[0]["username"])

	require.NotNil(t, repo.filter.Difficulty)
	assert.Equal(t, "expert", *repo.filter.Difficulty)
	assert.Nil(t, repo.filter.Username)
	assert.Equal(t, 10, repo.filter.Limit)
}

func TestHighscoresEmpty(t *testing.T) {
	h := NewHighscores(quietLogger(), newFakeRepo())
	rec := serve(h.List, request{method: http.MethodGet, target: "/highscores"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHighscoresRejectsBadFilter(t *testing.T) {
	h := NewHighscores(quietLogger(), newFakeRepo())
	for _, target := range []string{"/highscores?limit=0x", "/highscores?limit=1000", "/highscores?difficulty=hard"} {
		rec := serve(h.List, request{method: http.MethodGet, target: target})
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}
