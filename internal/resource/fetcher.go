// Package resource generalizes the loading/error/data triad every remote
// resource shares. A Fetcher wraps one idempotent read against the CalMate
// API and exposes a tagged snapshot, so "data and error both set" is never an
// ambiguous state.
package resource

import (
	"context"
	"sync"

	"calmate-web/internal/model"
)

type Status string

const (
	StatusIdle    Status = "idle"    // never fetched
	StatusLoading Status = "loading" // first fetch in flight, nothing to show yet
	StatusReady   Status = "ready"   // data present (possibly stale during a refetch)
	StatusFailed  Status = "failed"  // fetch failed and no prior data exists
)

// Snapshot is the render-facing view of a Fetcher. Err is set on a failed
// refetch even when stale Data is retained; Refreshing marks an in-flight
// refetch that keeps stale data visible instead of blanking the page.
type Snapshot[T any] struct {
	Status     Status
	Data       T
	Err        error
	Refreshing bool
}

func (s Snapshot[T]) Ready() bool {
	return s.Status == StatusReady
}

// FetchFunc loads the resource from the upstream API.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetcher serializes fetches for one resource. At most one fetch is in
// flight; a Fetch that arrives during another waits its turn and then runs
// its own call, so results are always applied in completion order and a slow
// earlier response can never overwrite a later one.
type Fetcher[T any] struct {
	fetch FetchFunc[T]

	mu       sync.Mutex
	turn     sync.Mutex // serializes the actual fetch calls
	status   Status
	data     T
	err      error
	inFlight int
	closed   bool
}

func NewFetcher[T any](fetch FetchFunc[T]) *Fetcher[T] {
	return &Fetcher[T]{fetch: fetch, status: StatusIdle}
}

// Fetch runs one load and returns the resulting snapshot. On failure it
// never clears previously loaded data: the snapshot stays Ready with the
// stale value and Err set, and only a fetcher that has never succeeded
// becomes Failed.
func (f *Fetcher[T]) Fetch(ctx context.Context) Snapshot[T] {
	f.mu.Lock()
	if f.closed {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap
	}
	if f.status == StatusIdle {
		f.status = StatusLoading
	}
	// Entering a fetch clears the previous error for the duration of the
	// in-flight call.
	f.err = nil
	f.inFlight++
	f.mu.Unlock()

	// Queued-after policy: later callers run their own fetch once the
	// current one completes, rather than coalescing into it.
	f.turn.Lock()
	data, err := f.fetch(ctx)
	f.turn.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight--
	if f.closed {
		// The session ended while this fetch was in flight; the late
		// result must not mutate state.
		return f.snapshotLocked()
	}

	if err != nil {
		f.err = err
		if f.status != StatusReady {
			f.status = StatusFailed
		}
		return f.snapshotLocked()
	}

	f.data = data
	f.status = StatusReady
	f.err = nil
	return f.snapshotLocked()
}

// Peek returns the current state without fetching.
func (f *Fetcher[T]) Peek() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Apply mutates the cached data in place, used for optimistic updates whose
// mutation response already carries the new value (e.g. prepending an
// analyzed food log). It is a no-op until the first successful fetch and
// after Close.
func (f *Fetcher[T]) Apply(mutate func(T) T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.status != StatusReady {
		return
	}

	f.data = mutate(f.data)
}

// Seed installs data directly, marking the fetcher Ready. Used when a
// mutation response replaces the whole resource.
func (f *Fetcher[T]) Seed(data T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.data = data
	f.status = StatusReady
	f.err = nil
}

// Close discards the fetcher when its session ends. In-flight results are
// dropped and no later call mutates state, so no protected data survives
// logout.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	f.closed = true
	f.data = zero
	f.err = model.ErrSessionNotFound
	f.status = StatusIdle
}

func (f *Fetcher[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Status:     f.status,
		Data:       f.data,
		Err:        f.err,
		Refreshing: f.inFlight > 0 && f.status == StatusReady,
	}
}
