package app

import (
	"slices"
	"sync"

	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/rs/zerolog/log"
)

// room owns its member list. dead is set under mu when the room empties and
// is dropped from the manager; a joiner holding a dead room starts over.
type room struct {
	id      domain.RoomID
	mu      sync.Mutex
	members []domain.ConnID
	dead    bool
}

// JoinResult describes the room right after a join.
type JoinResult struct {
	RoomID  domain.RoomID
	Members []domain.ConnID
	// Joined is false when the connection already was a member.
	Joined bool
}

// RoomManager is the room registry. Join and leave are atomic per room;
// different rooms never contend on the same lock.
type RoomManager struct {
	conns      *Registry
	maxMembers int

	mu    sync.RWMutex
	rooms map[domain.RoomID]*room
}

// NewRoomManager creates an empty registry. maxMembers <= 0 means unlimited.
func NewRoomManager(conns *Registry, maxMembers int) *RoomManager {
	return &RoomManager{
		conns:      conns,
		maxMembers: maxMembers,
		rooms:      make(map[domain.RoomID]*room),
	}
}

func (m *RoomManager) get(id domain.RoomID) *room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[id]
}

func (m *RoomManager) getOrCreate(id domain.RoomID) *room {
	m.mu.RLock()
	rm, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return rm
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rm, ok = m.rooms[id]; ok {
		return rm
	}
	rm = &room{id: id}
	m.rooms[id] = rm
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return rm
}

// dropLocked removes an empty room. Caller holds rm.mu.
func (m *RoomManager) dropLocked(rm *room) {
	rm.dead = true
	m.mu.Lock()
	if m.rooms[rm.id] == rm {
		delete(m.rooms, rm.id)
	}
	m.mu.Unlock()
	log.Info().Str("module", "app.rooms").Str("room", string(rm.id)).Msg("room deleted")
}

func (m *RoomManager) Join(roomID domain.RoomID, id domain.ConnID) (JoinResult, error) {
	for {
		rm := m.getOrCreate(roomID)
		rm.mu.Lock()
		if rm.dead {
			rm.mu.Unlock()
			continue
		}
		res, err := m.joinLocked(rm, id)
		if err != nil && len(rm.members) == 0 {
			m.dropLocked(rm)
		}
		rm.mu.Unlock()
		return res, err
	}
}

func (m *RoomManager) joinLocked(rm *room, id domain.ConnID) (JoinResult, error) {
	if slices.Contains(rm.members, id) {
		if c, ok := m.conns.Lookup(id); ok && c.RoomID == rm.id {
			return JoinResult{RoomID: rm.id, Members: slices.Clone(rm.members)}, nil
		}
		// Stale entry: the record no longer points here.
		rm.members = slices.DeleteFunc(rm.members, func(x domain.ConnID) bool { return x == id })
		log.Warn().Str("module", "app.rooms").Str("room", string(rm.id)).Str("sid", string(id)).Msg("evicted stale member on join")
	}
	if m.maxMembers > 0 && len(rm.members) >= m.maxMembers {
		return JoinResult{}, domain.ErrRoomFull
	}
	if err := m.conns.SetRoom(id, rm.id); err != nil {
		return JoinResult{}, err
	}
	rm.members = append(rm.members, id)
	log.Info().Str("module", "app.rooms").Str("room", string(rm.id)).Str("sid", string(id)).Int("count", len(rm.members)).Msg("member added")
	return JoinResult{RoomID: rm.id, Members: slices.Clone(rm.members), Joined: true}, nil
}

// Leave removes the connection from its room and reports the room it left.
// Leaving twice is harmless.
func (m *RoomManager) Leave(id domain.ConnID) (domain.RoomID, bool) {
	c, ok := m.conns.Lookup(id)
	if !ok || c.RoomID == "" {
		return "", false
	}
	rm := m.get(c.RoomID)
	if rm == nil {
		m.conns.ClearRoom(id, c.RoomID)
		return c.RoomID, true
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	m.conns.ClearRoom(id, c.RoomID)
	m.removeLocked(rm, id)
	return c.RoomID, true
}

// Evict drops a stale member entry as if it had already left. An entry whose
// record still points at the room is live and stays.
func (m *RoomManager) Evict(roomID domain.RoomID, id domain.ConnID) bool {
	rm := m.get(roomID)
	if rm == nil {
		return false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	// Bindings to this room only change under rm.mu, so this check holds
	// until the entry is gone.
	if c, ok := m.conns.Lookup(id); ok && c.RoomID == roomID {
		return false
	}
	if !m.removeLocked(rm, id) {
		return false
	}
	log.Warn().Str("module", "app.rooms").Str("room", string(roomID)).Str("sid", string(id)).Msg("evicted stale member")
	return true
}

// removeLocked deletes id from the member list and drops the room once it
// is empty. Caller holds rm.mu.
func (m *RoomManager) removeLocked(rm *room, id domain.ConnID) bool {
	n := len(rm.members)
	rm.members = slices.DeleteFunc(rm.members, func(x domain.ConnID) bool { return x == id })
	removed := len(rm.members) < n
	if removed {
		log.Info().Str("module", "app.rooms").Str("room", string(rm.id)).Str("sid", string(id)).Int("count", len(rm.members)).Msg("member removed")
	}
	if len(rm.members) == 0 && !rm.dead {
		m.dropLocked(rm)
	}
	return removed
}

// MembersOf returns a snapshot in join order.
func (m *RoomManager) MembersOf(roomID domain.RoomID) []domain.ConnID {
	rm := m.get(roomID)
	if rm == nil {
		return nil
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.dead {
		return nil
	}
	return slices.Clone(rm.members)
}

func (m *RoomManager) List() []domain.RoomInfo {
	m.mu.RLock()
	rooms := make([]*room, 0, len(m.rooms))
	for _, rm := range m.rooms {
		rooms = append(rooms, rm)
	}
	m.mu.RUnlock()

	out := make([]domain.RoomInfo, 0, len(rooms))
	for _, rm := range rooms {
		rm.mu.Lock()
		if !rm.dead {
			out = append(out, domain.RoomInfo{ID: rm.id, MemberCount: len(rm.members)})
		}
		rm.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b domain.RoomInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Resolve returns the member records of a room in join order. Entries whose
// connection is gone or bound elsewhere are evicted as already left.
func (m *RoomManager) Resolve(roomID domain.RoomID) []domain.Connection {
	ids := m.MembersOf(roomID)
	out := make([]domain.Connection, 0, len(ids))
	for _, id := range ids {
		c, ok := m.conns.Lookup(id)
		if !ok || c.RoomID != roomID {
			m.Evict(roomID, id)
			continue
		}
		out = append(out, c)
	}
	return out
}
