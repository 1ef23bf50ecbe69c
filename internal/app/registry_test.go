package app

import (
	"errors"
	"testing"

	"github.com/dkeye/VoipWeb/internal/domain"
)

func TestRegistry_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if _, err := reg.Register("a", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := reg.Register("a", "Other"); !errors.Is(err, domain.ErrDuplicateConnection) {
		t.Fatalf("expected ErrDuplicateConnection, got %v", err)
	}
	if c, _ := reg.Lookup("a"); c.DisplayName != "Alice" {
		t.Fatalf("duplicate register must not overwrite, got %q", c.DisplayName)
	}
}

func TestRegistry_SetRoomRules(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	register(t, reg, "a")

	if err := reg.SetRoom("ghost", "lobby"); !errors.Is(err, domain.ErrUnknownPeer) {
		t.Fatalf("expected ErrUnknownPeer, got %v", err)
	}
	if err := reg.SetRoom("a", "lobby"); err != nil {
		t.Fatalf("set room: %v", err)
	}
	if err := reg.SetRoom("a", "lobby"); err != nil {
		t.Fatalf("same room again: %v", err)
	}
	if err := reg.SetRoom("a", "other"); !errors.Is(err, domain.ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	if reg.ClearRoom("a", "other") {
		t.Fatalf("ClearRoom for a different room must be a no-op")
	}
	if !reg.ClearRoom("a", "lobby") {
		t.Fatalf("expected ClearRoom to succeed")
	}
	c, _ := reg.Lookup("a")
	if c.RoomID != "" || c.State != domain.Unbound {
		t.Fatalf("expected unbound connection, got %+v", c)
	}
}

func TestRegistry_RetireAndUnregister(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	register(t, reg, "a")
	if !reg.Active("a") {
		t.Fatalf("fresh connection should be active")
	}
	reg.Retire("a")
	if reg.Active("a") {
		t.Fatalf("retired connection should not be active")
	}
	if _, ok := reg.Lookup("a"); !ok {
		t.Fatalf("retired connection should still resolve")
	}
	if _, ok := reg.Unregister("a"); !ok {
		t.Fatalf("expected unregister to find the record")
	}
	if _, ok := reg.Unregister("a"); ok {
		t.Fatalf("second unregister should report nothing")
	}
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Count())
	}
}
