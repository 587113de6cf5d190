package game_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/game/tictactoe"
	"github.com/andy327/game-service/internal/models"
)

func awaitSaved(t *testing.T, ch <-chan game.SnapshotSaved) game.SnapshotSaved {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save reply")
		return game.SnapshotSaved{}
	}
}

func awaitLoaded(t *testing.T, ch <-chan game.SnapshotLoaded) game.SnapshotLoaded {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for load reply")
		return game.SnapshotLoaded{}
	}
}

func TestPersistenceWorkerSaveThenLoad(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	worker := game.NewPersistenceWorker(repo)
	defer worker.Stop()

	alice, bob := testPlayers(t)
	id := uuid.New()

	saved := make(chan game.SnapshotSaved, 1)
	require.True(t, worker.Send(game.SaveSnapshot{
		GameID:   id,
		GameType: models.GameTypeTicTacToe,
		State:    tictactoe.NewState(alice, bob),
		ReplyTo:  saved,
	}))
	res := awaitSaved(t, saved)
	require.NoError(t, res.Err)
	assert.Equal(t, id, res.GameID)

	loaded := make(chan game.SnapshotLoaded, 1)
	require.True(t, worker.Send(game.LoadSnapshot{
		GameID:   id,
		GameType: models.GameTypeTicTacToe,
		ReplyTo:  loaded,
	}))
	lres := awaitLoaded(t, loaded)
	require.NoError(t, lres.Err)
	require.True(t, lres.Found)
	assert.Equal(t, alice, lres.State.(*tictactoe.State).PlayerX)
}

func TestPersistenceWorkerLoadMissing(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	worker := game.NewPersistenceWorker(repo)
	defer worker.Stop()

	loaded := make(chan game.SnapshotLoaded, 1)
	require.True(t, worker.Send(game.LoadSnapshot{
		GameID:   uuid.New(),
		GameType: models.GameTypeTicTacToe,
		ReplyTo:  loaded,
	}))
	res := awaitLoaded(t, loaded)
	require.NoError(t, res.Err)
	assert.False(t, res.Found)
}

func TestPersistenceWorkerSaveFailureIsReplied(t *testing.T) {
	repo, db, _ := newTestRepo(t)
	worker := game.NewPersistenceWorker(repo)
	defer worker.Stop()

	// Closing the handle forces the save to fail; the worker must reply with
	// the error instead of dying.
	require.NoError(t, db.Close())

	alice, bob := testPlayers(t)
	saved := make(chan game.SnapshotSaved, 1)
	require.True(t, worker.Send(game.SaveSnapshot{
		GameID:   uuid.New(),
		GameType: models.GameTypeTicTacToe,
		State:    tictactoe.NewState(alice, bob),
		ReplyTo:  saved,
	}))
	res := awaitSaved(t, saved)
	assert.Error(t, res.Err)

	// The worker is still serving requests after the failure.
	loaded := make(chan game.SnapshotLoaded, 1)
	require.True(t, worker.Send(game.LoadSnapshot{
		GameID:   uuid.New(),
		GameType: models.GameTypeTicTacToe,
		ReplyTo:  loaded,
	}))
	lres := awaitLoaded(t, loaded)
	assert.Error(t, lres.Err)
}

func TestPersistenceWorkerSendAfterStop(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	worker := game.NewPersistenceWorker(repo)
	worker.Stop()

	sent := worker.Send(game.LoadSnapshot{GameID: uuid.New(), GameType: models.GameTypeTicTacToe})
	assert.False(t, sent)
}
