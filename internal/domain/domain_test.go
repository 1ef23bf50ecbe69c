package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNormalizeRoomID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    RoomID
		wantErr bool
	}{
		{in: "", want: DefaultRoom},
		{in: "   ", want: DefaultRoom},
		{in: "Lobby", want: "lobby"},
		{in: "  Team-Room ", want: "team-room"},
		{in: strings.Repeat("x", MaxRoomIDLen), want: RoomID(strings.Repeat("x", MaxRoomIDLen))},
		{in: strings.Repeat("x", MaxRoomIDLen+1), wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeRoomID(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("NormalizeRoomID(%q): expected ErrMalformedEvent, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeRoomID(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeRoomID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	t.Parallel()

	id := ConnID("0f1e2d3c-aaaa-bbbb-cccc-000000000000")

	got, err := NormalizeDisplayName(id, "  Alice  ", 2, 30)
	if err != nil || got != "Alice" {
		t.Fatalf("expected trimmed name, got %q, %v", got, err)
	}

	got, err = NormalizeDisplayName(id, "   ", 2, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "guest-0f1e2d" {
		t.Fatalf("expected guest name, got %q", got)
	}

	// Length is counted in runes.
	if _, err := NormalizeDisplayName(id, strings.Repeat("я", 30), 2, 30); err != nil {
		t.Fatalf("30 runes should fit: %v", err)
	}
	if _, err := NormalizeDisplayName(id, strings.Repeat("я", 31), 2, 30); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
	if _, err := NormalizeDisplayName(id, " я ", 2, 30); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for a short name, got %v", err)
	}
	if got, err := NormalizeDisplayName(id, "Al", 0, 0); err != nil || got != "Al" {
		t.Fatalf("two runes should pass the default minimum, got %q, %v", got, err)
	}
}

func TestParseMediaKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]MediaKind{"": Audio, "audio": Audio, "VIDEO": Video, " video ": Video} {
		got, err := ParseMediaKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseMediaKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMediaKind("screen"); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestCode(t *testing.T) {
	t.Parallel()

	if got := Code(fmt.Errorf("join: %w", ErrRoomFull)); got != "RoomFull" {
		t.Fatalf("wrapped error code = %q", got)
	}
	if got := Code(ErrPeerBusy); got != "PeerBusy" {
		t.Fatalf("code = %q", got)
	}
	if got := Code(errors.New("boom")); got != "Internal" {
		t.Fatalf("unknown error code = %q", got)
	}
}

func TestCallPeer(t *testing.T) {
	t.Parallel()

	c := Call{CallerID: "a", CalleeID: "b"}
	if c.Peer("a") != "b" || c.Peer("b") != "a" {
		t.Fatalf("unexpected peers")
	}
	if !c.Involves("a") || c.Involves("c") {
		t.Fatalf("unexpected Involves result")
	}
}
