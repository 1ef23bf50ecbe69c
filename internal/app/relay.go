package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultMaxMessageLen = 1000

type RelayKind int

const (
	TextMessage RelayKind = iota
	WebRTCSignal
)

func (k RelayKind) String() string {
	if k == WebRTCSignal {
		return "webrtc_signal"
	}
	return "text_message"
}

// SignalRouter forwards chat to a whole room and WebRTC negotiation to a
// single peer. Signal payloads are opaque and pass through untouched.
type SignalRouter struct {
	conns         *Registry
	rooms         *RoomManager
	maxMessageLen int
	now           func() time.Time
}

func NewSignalRouter(conns *Registry, rooms *RoomManager, maxMessageLen int) *SignalRouter {
	if maxMessageLen <= 0 {
		maxMessageLen = DefaultMaxMessageLen
	}
	return &SignalRouter{
		conns:         conns,
		rooms:         rooms,
		maxMessageLen: maxMessageLen,
		now:           time.Now,
	}
}

// Relay routes one payload from a joined connection. For TextMessage the
// target is ignored and every other room member receives the body.
func (r *SignalRouter) Relay(from, to domain.ConnID, kind RelayKind, payload []byte) ([]core.Outbound, error) {
	sender, ok := r.conns.Lookup(from)
	if !ok || sender.State != domain.Joined {
		return nil, domain.ErrNotJoined
	}
	switch kind {
	case TextMessage:
		return r.text(sender, payload)
	case WebRTCSignal:
		return r.signal(sender, to, payload)
	default:
		return nil, fmt.Errorf("unknown relay kind %d: %w", kind, domain.ErrMalformedEvent)
	}
}

func (r *SignalRouter) text(sender domain.Connection, payload []byte) ([]core.Outbound, error) {
	body := strings.TrimSpace(string(payload))
	if body == "" {
		return nil, fmt.Errorf("empty message: %w", domain.ErrMalformedEvent)
	}
	if utf8.RuneCountInString(body) > r.maxMessageLen {
		return nil, fmt.Errorf("message longer than %d characters: %w", r.maxMessageLen, domain.ErrMalformedEvent)
	}

	var to []domain.ConnID
	for _, m := range r.rooms.Resolve(sender.RoomID) {
		if m.ID != sender.ID {
			to = append(to, m.ID)
		}
	}
	log.Debug().Str("module", "app.relay").Str("sid", string(sender.ID)).
		Str("room", string(sender.RoomID)).Int("recipients", len(to)).Msg("text message")

	return core.Fanout(to, core.EvTextMessage, core.TextMessage{
		FromID:   sender.ID,
		FromName: sender.DisplayName,
		Body:     body,
		SentAt:   r.now().UTC(),
	}), nil
}

func (r *SignalRouter) signal(sender domain.Connection, to domain.ConnID, payload []byte) ([]core.Outbound, error) {
	if to == "" {
		return nil, fmt.Errorf("missing target: %w", domain.ErrMalformedEvent)
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("missing signal payload: %w", domain.ErrMalformedEvent)
	}
	target, ok := r.conns.Lookup(to)
	if !ok || !r.conns.Active(to) {
		return nil, domain.ErrUnknownPeer
	}
	if target.State != domain.Joined || target.RoomID != sender.RoomID {
		return nil, domain.ErrNotInSameRoom
	}
	log.Debug().Str("module", "app.relay").Str("sid", string(sender.ID)).
		Str("to", string(to)).Int("bytes", len(payload)).Msg("webrtc signal")

	raw := make(json.RawMessage, len(payload))
	copy(raw, payload)
	return []core.Outbound{
		core.To(to, core.EvWebRTCSignal, core.WebRTCSignal{FromID: sender.ID, Payload: raw}),
	}, nil
}
