package app

import (
	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
)

// Presence turns room registry state into join/leave/list notifications.
// Nothing is sent from here; the caller emits what it returns.
type Presence struct {
	conns *Registry
	rooms *RoomManager
}

func NewPresence(conns *Registry, rooms *RoomManager) *Presence {
	return &Presence{conns: conns, rooms: rooms}
}

func members(conns []domain.Connection, skip domain.ConnID) ([]domain.Member, []domain.ConnID) {
	ms := make([]domain.Member, 0, len(conns))
	ids := make([]domain.ConnID, 0, len(conns))
	for _, c := range conns {
		if c.ID == skip {
			continue
		}
		ms = append(ms, c.Member())
		ids = append(ids, c.ID)
	}
	return ms, ids
}

// Joined answers a successful join. A repeated join of the same room
// refreshes the joiner only.
func (p *Presence) Joined(self domain.Connection, res JoinResult) []core.Outbound {
	all := p.rooms.Resolve(res.RoomID)
	everyone, _ := members(all, "")
	others, otherIDs := members(all, self.ID)

	out := []core.Outbound{
		core.To(self.ID, core.EvJoinSuccess, core.JoinSuccess{
			RoomID:  res.RoomID,
			Self:    self.Member(),
			Members: others,
		}),
	}
	if res.Joined {
		out = append(out, core.Fanout(otherIDs, core.EvUserJoined, self.Member())...)
	}
	out = append(out, core.To(self.ID, core.EvUserList, core.UserList{RoomID: res.RoomID, Members: everyone}))
	return out
}

// Left notifies the remaining members. An emptied room has nobody to tell.
func (p *Presence) Left(who domain.Connection, roomID domain.RoomID) []core.Outbound {
	_, ids := members(p.rooms.Resolve(roomID), who.ID)
	return core.Fanout(ids, core.EvUserLeft, who.Member())
}

// List is the full refresh sent on request.
func (p *Presence) List(id domain.ConnID) ([]core.Outbound, error) {
	c, ok := p.conns.Lookup(id)
	if !ok || c.State != domain.Joined {
		return nil, domain.ErrNotJoined
	}
	everyone, _ := members(p.rooms.Resolve(c.RoomID), "")
	return []core.Outbound{
		core.To(id, core.EvUserList, core.UserList{RoomID: c.RoomID, Members: everyone}),
	}, nil
}

// Renamed tells the other members about a new display name.
func (p *Presence) Renamed(c domain.Connection) []core.Outbound {
	if c.RoomID == "" {
		return nil
	}
	_, ids := members(p.rooms.Resolve(c.RoomID), c.ID)
	return core.Fanout(ids, core.EvUserUpdated, c.Member())
}
