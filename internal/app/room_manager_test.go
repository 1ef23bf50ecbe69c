package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/sourcegraph/conc"
)

// checkConsistent asserts that every listed member points back at the room.
func checkConsistent(t *testing.T, reg *Registry, rooms *RoomManager) {
	t.Helper()
	for _, info := range rooms.List() {
		for _, id := range rooms.MembersOf(info.ID) {
			c, ok := reg.Lookup(id)
			if !ok || c.RoomID != info.ID {
				t.Fatalf("room %s lists %s whose record is %+v (found=%v)", info.ID, id, c, ok)
			}
		}
	}
}

func TestRoomManager_JoinIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rooms := NewRoomManager(reg, 0)
	register(t, reg, "a")

	res, err := rooms.Join("lobby", "a")
	if err != nil || !res.Joined {
		t.Fatalf("first join: %+v, %v", res, err)
	}
	res, err = rooms.Join("lobby", "a")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if res.Joined {
		t.Fatalf("rejoin must not report a new membership")
	}
	if got := rooms.MembersOf("lobby"); len(got) != 1 {
		t.Fatalf("expected one member, got %v", got)
	}
}

func TestRoomManager_AlreadyJoinedElsewhere(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rooms := NewRoomManager(reg, 0)
	register(t, reg, "a")
	mustJoin(t, rooms, "lobby", "a")

	if _, err := rooms.Join("other", "a"); !errors.Is(err, domain.ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	// The failed join must not leave an empty room behind.
	for _, info := range rooms.List() {
		if info.ID == "other" {
			t.Fatalf("room %q should not exist", info.ID)
		}
	}
	checkConsistent(t, reg, rooms)
}

func TestRoomManager_RoomFull(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rooms := NewRoomManager(reg, 2)
	register(t, reg, "a", "b", "c")
	mustJoin(t, rooms, "lobby", "a", "b")

	if _, err := rooms.Join("lobby", "c"); !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if c, _ := reg.Lookup("c"); c.State != domain.Unbound {
		t.Fatalf("rejected joiner must stay unbound, got %+v", c)
	}
}

func TestRoomManager_LeaveDeletesEmptyRoom(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rooms := NewRoomManager(reg, 0)
	register(t, reg, "a", "b")
	mustJoin(t, rooms, "team", "a", "b")

	if room, ok := rooms.Leave("a"); !ok || room != "team" {
		t.Fatalf("leave: %q, %v", room, ok)
	}
	if _, ok := rooms.Leave("a"); ok {
		t.Fatalf("second leave should be a no-op")
	}
	rooms.Leave("b")
	if got := rooms.List(); len(got) != 0 {
		t.Fatalf("expected no rooms, got %+v", got)
	}
}

func TestRoomManager_ResolveEvictsStaleMembers(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rooms := NewRoomManager(reg, 0)
	register(t, reg, "a", "b")
	mustJoin(t, rooms, "lobby", "a", "b")

	// Simulate a record that vanished without leaving.
	reg.Unregister("b")

	got := rooms.Resolve("lobby")
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only a, got %+v", got)
	}
	if ids := rooms.MembersOf("lobby"); len(ids) != 1 {
		t.Fatalf("stale entry should be evicted, got %v", ids)
	}
}

func TestRoomManager_EvictKeepsLiveMember(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rooms := NewRoomManager(reg, 0)
	register(t, reg, "a", "b")
	mustJoin(t, rooms, "lobby", "a", "b")

	if rooms.Evict("lobby", "a") {
		t.Fatalf("a live member must not be evicted")
	}
	if ids := rooms.MembersOf("lobby"); len(ids) != 2 {
		t.Fatalf("expected both members, got %v", ids)
	}
	if c, _ := reg.Lookup("a"); c.RoomID != "lobby" || c.State != domain.Joined {
		t.Fatalf("record of a changed: %+v", c)
	}

	// A record bound elsewhere is stale for this room.
	reg.ClearRoom("b", "lobby")
	if !rooms.Evict("lobby", "b") {
		t.Fatalf("expected stale b to be evicted")
	}
	checkConsistent(t, reg, rooms)
}

func TestRoomManager_ResolveDuringLeaveAndRejoin(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		reg := NewRegistry()
		rooms := NewRoomManager(reg, 0)
		register(t, reg, "a", "b")
		mustJoin(t, rooms, "lobby", "a", "b")

		var wg conc.WaitGroup
		wg.Go(func() {
			for j := 0; j < 20; j++ {
				rooms.Leave("a")
				if _, err := rooms.Join("lobby", "a"); err != nil {
					t.Errorf("rejoin: %v", err)
				}
			}
		})
		wg.Go(func() {
			for j := 0; j < 20; j++ {
				rooms.Resolve("lobby")
			}
		})
		wg.Wait()

		if ids := rooms.MembersOf("lobby"); len(ids) != 2 {
			t.Fatalf("iteration %d: member lost, got %v", i, ids)
		}
		if c, _ := reg.Lookup("a"); c.RoomID != "lobby" || c.State != domain.Joined {
			t.Fatalf("iteration %d: a unbound: %+v", i, c)
		}
		checkConsistent(t, reg, rooms)
	}
}

func TestRoomManager_ConcurrentJoinsLoseNoMember(t *testing.T) {
	t.Parallel()

	const n = 64
	reg := NewRegistry()
	rooms := NewRoomManager(reg, 0)
	for i := 0; i < n; i++ {
		register(t, reg, domain.ConnID(fmt.Sprintf("c%d", i)))
	}

	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		id := domain.ConnID(fmt.Sprintf("c%d", i))
		wg.Go(func() {
			if _, err := rooms.Join("lobby", id); err != nil {
				t.Errorf("join %s: %v", id, err)
			}
		})
	}
	wg.Wait()

	if got := len(rooms.MembersOf("lobby")); got != n {
		t.Fatalf("expected %d members, got %d", n, got)
	}
	checkConsistent(t, reg, rooms)
}

func TestRoomManager_ConcurrentLeaveAndJoinOnLastMember(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		reg := NewRegistry()
		rooms := NewRoomManager(reg, 0)
		register(t, reg, "a", "b")
		mustJoin(t, rooms, "lobby", "a")

		var wg conc.WaitGroup
		wg.Go(func() { rooms.Leave("a") })
		wg.Go(func() {
			if _, err := rooms.Join("lobby", "b"); err != nil {
				t.Errorf("join: %v", err)
			}
		})
		wg.Wait()

		// b must be in a room that is actually registered.
		found := false
		for _, info := range rooms.List() {
			if info.ID == "lobby" && info.MemberCount == 1 {
				found = true
			}
		}
		if !found {
			t.Fatalf("iteration %d: b joined an orphaned room: %+v", i, rooms.List())
		}
		checkConsistent(t, reg, rooms)
	}
}
