package resource

import (
	"sync"

	"calmate-web/internal/api"
	"calmate-web/internal/event"
)

// Registry maps session ids to their resource Sets. It subscribes to session
// lifecycle events and closes a session's Set the moment the session ends,
// which is what makes "no protected data visible after logout" hold.
type Registry struct {
	client *api.Client

	mu   sync.Mutex
	sets map[string]*Set

	unsubscribe func()
}

func NewRegistry(client *api.Client, bus event.Bus) *Registry {
	r := &Registry{
		client: client,
		sets:   map[string]*Set{},
	}

	if bus != nil {
		ch, unsubscribe := bus.Subscribe()
		r.unsubscribe = unsubscribe
		go r.watch(ch)
	}

	return r
}

// ForSession returns the Set for the given session, creating it on first use.
// The token is bound at creation; a re-login produces a new session id and
// therefore a fresh Set.
func (r *Registry) ForSession(sessionID string, token string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, exists := r.sets[sessionID]; exists {
		return set
	}

	set := NewSet(r.client, token)
	r.sets[sessionID] = set
	return set
}

func (r *Registry) watch(ch <-chan event.Event) {
	for e := range ch {
		if e.Type == event.TypeSessionEnded {
			r.Drop(e.SessionID)
		}
	}
}

// Drop closes and forgets the session's Set. Idempotent.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	set, exists := r.sets[sessionID]
	delete(r.sets, sessionID)
	r.mu.Unlock()

	if exists {
		set.Close()
	}
}

func (r *Registry) Shutdown() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}

	r.mu.Lock()
	sets := r.sets
	r.sets = map[string]*Set{}
	r.mu.Unlock()

	for _, set := range sets {
		set.Close()
	}
}
