package app

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
)

func newRelayEnv(t *testing.T) (*Registry, *RoomManager, *SignalRouter) {
	t.Helper()
	reg := NewRegistry()
	rooms := NewRoomManager(reg, 0)
	register(t, reg, "a", "b", "c", "d", "idle")
	mustJoin(t, rooms, "lobby", "a", "b", "c")
	mustJoin(t, rooms, "other", "d")
	r := NewSignalRouter(reg, rooms, 10)
	r.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return reg, rooms, r
}

func TestRelay_TextFansOutToOthers(t *testing.T) {
	t.Parallel()

	_, _, r := newRelayEnv(t)
	out, err := r.Relay("a", "", TextMessage, []byte("  hi all  "))
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if got := recipients(out, core.EvTextMessage); !slices.Equal(got, []domain.ConnID{"b", "c"}) {
		t.Fatalf("recipients = %v", got)
	}
	msg := out[0].Payload.(core.TextMessage)
	if msg.Body != "hi all" || msg.FromID != "a" || msg.FromName != "user-a" || msg.SentAt.Year() != 2025 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestRelay_TextValidation(t *testing.T) {
	t.Parallel()

	_, _, r := newRelayEnv(t)
	if _, err := r.Relay("idle", "", TextMessage, []byte("hello")); !errors.Is(err, domain.ErrNotJoined) {
		t.Fatalf("expected ErrNotJoined, got %v", err)
	}
	if _, err := r.Relay("a", "", TextMessage, []byte("   ")); !errors.Is(err, domain.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for empty body, got %v", err)
	}
	if _, err := r.Relay("a", "", TextMessage, []byte(strings.Repeat("x", 11))); !errors.Is(err, domain.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for long body, got %v", err)
	}
}

func TestRelay_SignalIsForwardedVerbatim(t *testing.T) {
	t.Parallel()

	_, _, r := newRelayEnv(t)
	payload := []byte(`{"type":"offer","sdp":"v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\n"}`)

	out, err := r.Relay("a", "b", WebRTCSignal, payload)
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if len(out) != 1 || out[0].To != "b" || out[0].Event != core.EvWebRTCSignal {
		t.Fatalf("unexpected output: %+v", out)
	}
	sig := out[0].Payload.(core.WebRTCSignal)
	if sig.FromID != "a" || string(sig.Payload) != string(payload) {
		t.Fatalf("payload changed: %s", sig.Payload)
	}

	// The forwarded bytes are a copy.
	payload[0] = 'X'
	if sig.Payload[0] != '{' {
		t.Fatalf("forwarded payload aliases the input buffer")
	}
}

func TestRelay_SignalErrors(t *testing.T) {
	t.Parallel()

	_, _, r := newRelayEnv(t)
	cases := []struct {
		name    string
		to      domain.ConnID
		payload string
		want    error
	}{
		{"unknown peer", "ghost", `{}`, domain.ErrUnknownPeer},
		{"other room", "d", `{}`, domain.ErrNotInSameRoom},
		{"unbound peer", "idle", `{}`, domain.ErrNotInSameRoom},
		{"missing target", "", `{}`, domain.ErrMalformedEvent},
		{"null payload", "b", `null`, domain.ErrMalformedEvent},
		{"empty payload", "b", ``, domain.ErrMalformedEvent},
	}
	for _, tc := range cases {
		if _, err := r.Relay("a", tc.to, WebRTCSignal, []byte(tc.payload)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
