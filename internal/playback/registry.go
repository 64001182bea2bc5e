package playback

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/eleven-am/playback-gateway/internal/shared"
)

// Controllable is the playback-control surface of a connected device.
type Controllable interface {
	DeviceID() string
	Play(ctx context.Context, src Source) (string, error)
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Status(ctx context.Context) (Status, error)
	Send(ctx context.Context, msg any) error
}

// Registry maps device ids to their live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Controllable
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Controllable)}
}

// Register maps id to c and returns the session it replaced, if any. The
// replaced session is left running.
func (r *Registry) Register(id string, c Controllable) Controllable {
	id = shared.NormalizeDeviceID(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.sessions[id]
	r.sessions[id] = c
	return prev
}

func (r *Registry) Unregister(id string) {
	id = shared.NormalizeDeviceID(id)
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Remove deletes id only while it still maps to c, so a closing connection
// cannot evict the session that replaced it.
func (r *Registry) Remove(id string, c Controllable) bool {
	id = shared.NormalizeDeviceID(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[id]; ok && cur == c {
		delete(r.sessions, id)
		return true
	}
	return false
}

// Lookup tries an exact match first and falls back to a case-insensitive
// scan.
func (r *Registry) Lookup(id string) (Controllable, error) {
	id = shared.NormalizeDeviceID(id)
	if id == "" {
		return nil, newError(KindDeviceNotFound, "device id is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.sessions[id]; ok {
		return c, nil
	}
	for key, c := range r.sessions {
		if strings.EqualFold(key, id) {
			return c, nil
		}
	}
	return nil, newError(KindDeviceNotFound, "device %s is not connected", id)
}

func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (r *Registry) List() []Controllable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Controllable, 0, len(r.sessions))
	for _, c := range r.sessions {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
