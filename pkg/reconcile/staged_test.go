package reconcile

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
)

func TestStorePutTake(t *testing.T) {
	store := NewStore[string]()
	handle := store.Put("staged")

	got, err := store.Take(handle)
	assert.NoError(t, err)
	assert.Equal(t, "staged", got)

	// a handle is good for one apply only
	_, err = store.Take(handle)
	assert.ErrorIs(t, err, ErrNoStagedDiff)
}

func TestStoreUnknownHandle(t *testing.T) {
	store := NewStore[string]()
	_, err := store.Take(uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, ErrNoStagedDiff)
}

func TestStoreExpiry(t *testing.T) {
	now := time.Now()
	store := NewStore(
		WithKeep[string](time.Minute),
		WithNow[string](func() time.Time { return now }))

	handle := store.Put("staged")
	now = now.Add(2 * time.Minute)

	_, err := store.Take(handle)
	assert.ErrorIs(t, err, ErrNoStagedDiff)
}
