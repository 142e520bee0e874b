package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/model"
)

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore(10)

	session := store.Create(sampleTxns(), 0.9)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
}

func TestSessionStore_EvictsOldest(t *testing.T) {
	store := NewSessionStore(2)

	first := store.Create(nil, 1.0)
	second := store.Create(nil, 1.0)
	third := store.Create(nil, 1.0)

	assert.Equal(t, 2, store.Len())
	_, err := store.Get(first.ID)
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	_, err = store.Get(second.ID)
	assert.NoError(t, err)
	_, err = store.Get(third.ID)
	assert.NoError(t, err)
}

func TestSession_RunFlag(t *testing.T) {
	store := NewSessionStore(10)
	session := store.Create(nil, 1.0)

	require.NoError(t, session.StartRun())
	assert.ErrorIs(t, session.StartRun(), common.ErrRunInProgress)

	session.FinishRun()
	assert.NoError(t, session.StartRun())
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	store := NewSessionStore(10)
	session := store.Create(sampleTxns(), 1.0)

	snap := session.Snapshot()
	require.NotEmpty(t, snap)
	snap[0].Category = model.CategoryDining

	fresh := session.Snapshot()
	assert.NotEqual(t, model.CategoryDining, fresh[0].Category)
}
