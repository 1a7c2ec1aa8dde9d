package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/antimine/internal/mines"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)

	tick := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func playingSave(t *testing.T, seed uint64) mines.SaveState {
	t.Helper()
	g, err := mines.NewGame(mines.Minefield{Width: 9, Height: 9, Mines: 10}, seed)
	require.NoError(t, err)
	require.NoError(t, g.PlantMinesExcept(40, true))
	_, err = g.ClickArea(40)
	require.NoError(t, err)
	return g.SaveState(5, mines.Beginner)
}

func TestStoreReadEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	current, err := s.FetchCurrentSave(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, 1), ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreWriteAndRead(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	save := playingSave(t, 11)
	id, err := s.SaveGame(ctx, save)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	save.SaveID = id
	assert.Equal(t, save, *got)

	current, err := s.FetchCurrentSave(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, id, current.SaveID)
}

func TestStoreUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	save := playingSave(t, 11)
	id, err := s.SaveGame(ctx, save)
	require.NoError(t, err)

	save.SaveID = id
	save.ElapsedSeconds = 30
	again, err := s.SaveGame(ctx, save)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(30), list[0].ElapsedSeconds)
	assert.Equal(t, uint64(11), list[0].Seed)
	assert.Equal(t, "9:9:10", list[0].Minefield)
	assert.Equal(t, OutcomePlaying, list[0].Outcome)
}

func TestStoreFinishedGameIsNotCurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	save := playingSave(t, 11)
	g, err := mines.RestoreGame(save)
	require.NoError(t, err)
	_, err = g.ClickArea(g.MinePositions()[0])
	require.NoError(t, err)

	_, err = s.SaveGame(ctx, g.SaveState(9, mines.Beginner))
	require.NoError(t, err)

	current, err := s.FetchCurrentSave(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, OutcomeLost, list[0].Outcome)
}

func TestStoreCurrentIsNewest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.SaveGame(ctx, playingSave(t, 1))
	require.NoError(t, err)
	second, err := s.SaveGame(ctx, playingSave(t, 2))
	require.NoError(t, err)

	current, err := s.FetchCurrentSave(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, current.SaveID)

	save, err := s.Get(ctx, first)
	require.NoError(t, err)
	_, err = s.SaveGame(ctx, *save)
	require.NoError(t, err)

	current, err = s.FetchCurrentSave(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, current.SaveID)
}

func TestStoreDeleteExisting(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.SaveGame(ctx, playingSave(t, 1))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	const writers = 8
	saves := make([]mines.SaveState, writers)
	for i := range saves {
		saves[i] = playingSave(t, uint64(i+1))
	}

	var g errgroup.Group
	for i := range writers {
		g.Go(func() error {
			_, err := s.SaveGame(ctx, saves[i])
			return err
		})
	}
	require.NoError(t, g.Wait())

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, writers)
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "saves.db"))
	assert.Error(t, err)
}
