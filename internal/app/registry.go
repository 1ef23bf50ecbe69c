package app

import (
	"sync"

	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	conn    domain.Connection
	retired bool
}

// Registry is the connection registry. It never emits events.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnID]*connEntry),
	}
}

func (r *Registry) Register(id domain.ConnID, displayName string) (domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		return domain.Connection{}, domain.ErrDuplicateConnection
	}
	c := domain.Connection{ID: id, DisplayName: displayName, State: domain.Unbound}
	r.conns[id] = &connEntry{conn: c}
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("name", displayName).Msg("registered connection")
	return c, nil
}

// Unregister removes the record and returns it. Calling it twice is harmless.
func (r *Registry) Unregister(id domain.ConnID) (domain.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.Connection{}, false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("unregistered connection")
	return e.conn, true
}

func (r *Registry) Lookup(id domain.ConnID) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.Connection{}, false
	}
	return e.conn, true
}

// SetRoom binds the connection to room. Binding while already bound to a
// different room fails with ErrAlreadyJoined. Only the room registry calls
// it, while holding the room lock.
func (r *Registry) SetRoom(id domain.ConnID, room domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.ErrUnknownPeer
	}
	if e.conn.RoomID != "" && e.conn.RoomID != room {
		return domain.ErrAlreadyJoined
	}
	e.conn.RoomID = room
	e.conn.State = domain.Joined
	return nil
}

// ClearRoom unbinds the connection if it is still bound to room.
func (r *Registry) ClearRoom(id domain.ConnID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.conn.RoomID != room {
		return false
	}
	e.conn.RoomID = ""
	e.conn.State = domain.Unbound
	return true
}

func (r *Registry) Rename(id domain.ConnID, displayName string) (domain.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.Connection{}, false
	}
	e.conn.DisplayName = displayName
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("name", displayName).Msg("updated display name")
	return e.conn, true
}

// Retire marks a connection as going away. Retired connections stay
// resolvable for cleanup but are no longer addressed by outbound events.
func (r *Registry) Retire(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.retired = true
	}
}

// Active reports whether id is registered and not retired.
func (r *Registry) Active(id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	return ok && !e.retired
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
