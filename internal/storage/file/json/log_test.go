package json

import (
	"testing"

	"github.com/drakos74/representer/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Event struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Index int    `json:"index"`
}

func newEvent(i int) Event {
	return Event{
		Name:  "test",
		ID:    uuid.New().String(),
		Index: i,
	}
}

func TestEvents_Add(t *testing.T) {

	registry := NewEventRegistry(t.TempDir(), "tracker").WithHash(1)

	k := storage.K{
		Name:  "ensemble",
		Label: "transitions",
	}

	events := make([]Event, 0)
	for i := 0; i < 10; i++ {
		ev := newEvent(i)
		events = append(events, ev)
		err := registry.Add(k, ev)
		assert.NoError(t, err)
	}

	var loadedEvents []Event
	err := registry.GetAll(k, &loadedEvents)
	require.NoError(t, err)

	assert.Equal(t, events, loadedEvents)

	err = registry.GetAll(k, loadedEvents)
	assert.Error(t, err)
}

func TestEvents_MultipleHashes(t *testing.T) {
	root := t.TempDir()
	k := storage.K{
		Name:  "ensemble",
		Label: "transitions",
	}

	require.NoError(t, NewEventRegistry(root, "tracker").WithHash(1).Add(k, newEvent(0)))
	require.NoError(t, NewEventRegistry(root, "tracker").WithHash(2).Add(k, newEvent(1)))

	var loadedEvents []Event
	err := NewEventRegistry(root, "tracker").GetAll(k, &loadedEvents)
	require.NoError(t, err)
	require.Len(t, loadedEvents, 2)
	assert.Equal(t, 0, loadedEvents[0].Index)
	assert.Equal(t, 1, loadedEvents[1].Index)
}

func TestBlobStorage(t *testing.T) {
	blob := NewJsonBlob(t.TempDir(), storage.ExperimentsDir, "ensemble", false)
	k := storage.Key{
		Name:  "experiment",
		Label: "last",
	}

	var ev Event
	err := blob.Load(k, &ev)
	assert.ErrorIs(t, err, storage.NotFoundErr)

	stored := newEvent(3)
	require.NoError(t, blob.Store(k, stored))
	require.NoError(t, blob.Load(k, &ev))
	assert.Equal(t, stored, ev)
}

func TestLocalStorage(t *testing.T) {
	local := NewLocalStorage()
	k := storage.Key{
		Name:  "experiment",
		Label: "last",
	}

	var ev Event
	assert.ErrorIs(t, local.Load(k, &ev), storage.NotFoundErr)

	stored := newEvent(3)
	require.NoError(t, local.Store(k, stored))
	require.NoError(t, local.Load(k, &ev))
	assert.Equal(t, stored, ev)
}
