package orch

import (
	"encoding/json"
	"strings"

	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) join(id domain.ConnID, raw json.RawMessage) ([]core.Outbound, error) {
	req, err := decode[core.JoinRequest](raw)
	if err != nil {
		return nil, err
	}
	roomID, err := domain.NormalizeRoomID(req.RoomID)
	if err != nil {
		return nil, err
	}

	var name string
	if strings.TrimSpace(req.DisplayName) != "" {
		if name, err = o.normalizeName(id, req.DisplayName); err != nil {
			return nil, err
		}
	}

	res, err := o.Rooms.Join(roomID, id)
	if err != nil {
		return nil, err
	}
	self, ok := o.Registry.Lookup(id)
	if !ok {
		return nil, domain.ErrNotJoined
	}
	var out []core.Outbound
	if name != "" && self.DisplayName != name {
		if self, ok = o.Registry.Rename(id, name); !ok {
			return nil, domain.ErrNotJoined
		}
		// A fresh joiner is announced with the new name anyway.
		if !res.Joined {
			out = o.Presence.Renamed(self)
		}
	}
	log.Info().Str("module", "orch").Str("sid", string(id)).Str("room", string(roomID)).Bool("new", res.Joined).Msg("joined room")
	return append(out, o.Presence.Joined(self, res)...), nil
}

func (o *Orchestrator) leave(id domain.ConnID) ([]core.Outbound, error) {
	who, ok := o.Registry.Lookup(id)
	if !ok || who.State != domain.Joined {
		return nil, domain.ErrNotJoined
	}
	roomID, ok := o.Rooms.Leave(id)
	if !ok {
		return nil, domain.ErrNotJoined
	}
	out := []core.Outbound{core.To(id, core.EvLeft, core.Left{RoomID: roomID})}
	// Calls do not survive leaving the room they were negotiated in.
	out = append(out, o.Calls.EndAllFor(id)...)
	out = append(out, o.Presence.Left(who, roomID)...)
	log.Info().Str("module", "orch").Str("sid", string(id)).Str("room", string(roomID)).Msg("left room")
	return out, nil
}

func (o *Orchestrator) rename(id domain.ConnID, raw json.RawMessage) ([]core.Outbound, error) {
	req, err := decode[core.RenameRequest](raw)
	if err != nil {
		return nil, err
	}
	name, err := o.normalizeName(id, req.DisplayName)
	if err != nil {
		return nil, err
	}
	c, ok := o.Registry.Rename(id, name)
	if !ok {
		return nil, domain.ErrUnknownPeer
	}
	out := []core.Outbound{core.To(id, core.EvUserUpdated, c.Member())}
	return append(out, o.Presence.Renamed(c)...), nil
}
