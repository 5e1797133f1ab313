package reconcile

import (
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

// ErrNoStagedDiff signals an unknown or expired staging handle. The
// client must run a fresh preview.
var ErrNoStagedDiff = errors.New("no staged diff for handle")

type (
	StoreOption[T any] func(*Store[T])

	stagedItem[T any] struct {
		data    T
		expires time.Time
	}

	// Store keeps previewed diffs server-side between the preview and
	// the apply call. Entries are referenced by an opaque handle and
	// expire after the configured keep duration; expired entries are
	// swept inline on access. This is transient staging state, not a
	// result cache.
	Store[T any] struct {
		mutex sync.Mutex
		items map[uuid.UUID]stagedItem[T]
		keep  time.Duration
		now   func() time.Time
	}
)

func WithKeep[T any](keep time.Duration) StoreOption[T] {
	return func(s *Store[T]) {
		s.keep = keep
	}
}

// WithNow replaces the time source. Used by tests to force expiry.
func WithNow[T any](now func() time.Time) StoreOption[T] {
	return func(s *Store[T]) {
		s.now = now
	}
}

func NewStore[T any](opts ...StoreOption[T]) *Store[T] {
	ret := &Store[T]{
		items: make(map[uuid.UUID]stagedItem[T]),
		keep:  5 * time.Minute,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Put stages a diff and returns its handle.
func (s *Store[T]) Put(data T) uuid.UUID {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sweep()
	handle := uuid.Must(uuid.NewV4())
	s.items[handle] = stagedItem[T]{
		data:    data,
		expires: s.now().Add(s.keep),
	}
	return handle
}

// Take removes and returns the staged diff. A handle is good for one
// apply only.
func (s *Store[T]) Take(handle uuid.UUID) (T, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sweep()
	item, ok := s.items[handle]
	if !ok {
		var zero T
		return zero, ErrNoStagedDiff
	}
	delete(s.items, handle)
	return item.data, nil
}

func (s *Store[T]) sweep() {
	now := s.now()
	for k, v := range s.items {
		if v.expires.Before(now) {
			delete(s.items, k)
		}
	}
}
