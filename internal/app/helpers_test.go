package app

import (
	"testing"

	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
)

func register(t *testing.T, reg *Registry, ids ...domain.ConnID) {
	t.Helper()
	for _, id := range ids {
		if _, err := reg.Register(id, "user-"+string(id)); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
}

func mustJoin(t *testing.T, rooms *RoomManager, room domain.RoomID, ids ...domain.ConnID) {
	t.Helper()
	for _, id := range ids {
		if _, err := rooms.Join(room, id); err != nil {
			t.Fatalf("join %s to %s: %v", id, room, err)
		}
	}
}

// addressed returns the events sent to id, in order.
func addressed(out []core.Outbound, id domain.ConnID) []string {
	var evs []string
	for _, o := range out {
		if o.To == id {
			evs = append(evs, o.Event)
		}
	}
	return evs
}

func recipients(out []core.Outbound, event string) []domain.ConnID {
	var ids []domain.ConnID
	for _, o := range out {
		if o.Event == event {
			ids = append(ids, o.To)
		}
	}
	return ids
}
