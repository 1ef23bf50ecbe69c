package orch

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/VoipWeb/internal/app"
	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/rs/zerolog/log"
)

type Features struct {
	AudioCalls bool
	VideoCalls bool
	TextChat   bool
}

// Options configures the components wired by New.
type Options struct {
	MaxMembersPerRoom int
	MaxMessageLen     int
	MinUsernameLen    int
	MaxUsernameLen    int
	RingTimeout       time.Duration
	Features          Features
	Policy            app.Policy
}

// Orchestrator decodes inbound events, dispatches them to the owning
// component and emits whatever that component produced.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Presence *app.Presence
	Calls    *app.CallCoordinator
	Signals  *app.SignalRouter
	Policy   app.Policy
	Sender   core.Sender

	minUsernameLen int
	maxUsernameLen int
	features       Features
}

func New(opts Options, sender core.Sender) *Orchestrator {
	reg := app.NewRegistry()
	rooms := app.NewRoomManager(reg, opts.MaxMembersPerRoom)
	policy := opts.Policy
	if policy == nil {
		policy = app.SimplePolicy{Action: app.DropFrame}
	}
	o := &Orchestrator{
		Registry:       reg,
		Rooms:          rooms,
		Presence:       app.NewPresence(reg, rooms),
		Calls:          app.NewCallCoordinator(reg, opts.RingTimeout),
		Signals:        app.NewSignalRouter(reg, rooms, opts.MaxMessageLen),
		Policy:         policy,
		Sender:         sender,
		minUsernameLen: opts.MinUsernameLen,
		maxUsernameLen: opts.MaxUsernameLen,
		features:       opts.Features,
	}
	o.Calls.OnExpire(o.emit)
	return o
}

// Connect registers a freshly accepted channel and greets it.
func (o *Orchestrator) Connect(id domain.ConnID, displayName string) (domain.Connection, error) {
	name, err := o.normalizeName(id, displayName)
	if err != nil {
		name = domain.GuestName(id)
	}
	c, err := o.Registry.Register(id, name)
	if err != nil {
		return domain.Connection{}, err
	}
	o.emit([]core.Outbound{core.To(id, core.EvWelcome, core.Welcome{ConnectionID: id, DisplayName: name})})
	return c, nil
}

func (o *Orchestrator) normalizeName(id domain.ConnID, name string) (string, error) {
	return domain.NormalizeDisplayName(id, name, o.minUsernameLen, o.maxUsernameLen)
}

// Handle processes one inbound frame. Failures are reported to the sender
// only and never affect other connections.
func (o *Orchestrator) Handle(id domain.ConnID, data core.Frame) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		o.fail(id, "", fmt.Errorf("bad envelope: %w", domain.ErrMalformedEvent))
		return
	}

	var (
		out []core.Outbound
		err error
	)
	switch env.Type {
	case core.EvJoin:
		out, err = o.join(id, env.Payload)
	case core.EvLeave:
		out, err = o.leave(id)
	case core.EvListUsers:
		out, err = o.Presence.List(id)
	case core.EvRename:
		out, err = o.rename(id, env.Payload)
	case core.EvTextMessage:
		out, err = o.textMessage(id, env.Payload)
	case core.EvWebRTCSignal:
		out, err = o.webrtcSignal(id, env.Payload)
	case core.EvCallUser:
		out, err = o.callUser(id, env.Payload)
	case core.EvCallAnswer:
		out, err = o.callAnswer(id, env.Payload)
	case core.EvHangup:
		out, err = o.hangup(id, env.Payload)
	case core.EvPing:
		out = []core.Outbound{core.To(id, core.EvPong, struct{}{})}
	default:
		err = fmt.Errorf("unknown event %q: %w", env.Type, domain.ErrMalformedEvent)
	}
	if err != nil {
		o.fail(id, env.Type, err)
		return
	}
	o.emit(out)
}

// Reject reports a condition detected by the transport, such as rate limiting.
func (o *Orchestrator) Reject(id domain.ConnID, event string, err error) {
	o.fail(id, event, err)
}

// Disconnect tears a connection down: it stops being addressable, leaves
// its room, ends its calls and is forgotten. Safe to call twice.
func (o *Orchestrator) Disconnect(id domain.ConnID) {
	if _, ok := o.Registry.Lookup(id); !ok {
		return
	}
	o.Registry.Retire(id)

	var out []core.Outbound
	if who, ok := o.Registry.Lookup(id); ok {
		if roomID, left := o.Rooms.Leave(id); left {
			out = append(out, o.Presence.Left(who, roomID)...)
		}
	}
	out = append(out, o.Calls.EndAllFor(id)...)
	o.Registry.Unregister(id)
	o.emit(out)
	log.Info().Str("module", "orch").Str("sid", string(id)).Msg("disconnected")
}

func (o *Orchestrator) emit(out []core.Outbound) {
	for _, m := range out {
		if !o.Registry.Active(m.To) {
			continue
		}
		err := o.Sender.Send(m.To, m.Event, m.Payload)
		if err == nil {
			continue
		}
		if !errors.Is(err, core.ErrBackpressure) {
			log.Debug().Str("module", "orch").Str("sid", string(m.To)).Str("event", m.Event).Err(err).Msg("send failed")
			continue
		}
		switch o.Policy.OnBackPressure(m.To, m.Event) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(m.To)).Str("event", m.Event).Msg("slow consumer kicked")
			o.Sender.Close(m.To)
		case app.DropFrame:
			log.Warn().Str("module", "orch").Str("sid", string(m.To)).Str("event", m.Event).Msg("frame dropped")
		}
	}
}

func (o *Orchestrator) fail(id domain.ConnID, event string, err error) {
	code := domain.Code(err)
	log.Debug().Str("module", "orch").Str("sid", string(id)).Str("event", event).Str("code", code).Err(err).Msg("event rejected")
	o.emit([]core.Outbound{core.To(id, core.EvError, core.ErrorEvent{Code: code, Message: err.Error(), Event: event})})
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%v: %w", err, domain.ErrMalformedEvent)
	}
	return v, nil
}
