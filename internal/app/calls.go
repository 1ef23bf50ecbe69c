package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultRingTimeout = 30 * time.Second

type call struct {
	domain.Call
	state atomic.Int32

	mu    sync.Mutex
	timer *time.Timer
}

func (c *call) current() domain.CallState { return domain.CallState(c.state.Load()) }

func (c *call) snapshot() domain.Call {
	v := c.Call
	v.State = c.current()
	return v
}

// end moves a Ringing or Active call to Ended. Only one caller wins.
func (c *call) end() bool {
	for {
		s := c.state.Load()
		if domain.CallState(s) == domain.Ended {
			return false
		}
		if c.state.CompareAndSwap(s, int32(domain.Ended)) {
			return true
		}
	}
}

func (c *call) stopTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

type pairKey struct{ a, b domain.ConnID }

func keyOf(x, y domain.ConnID) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// CallCoordinator owns the call table. Every state change is a CAS on the
// call itself, so accept, reject, hangup, timeout and disconnect racing on
// the same call produce exactly one terminal notification.
type CallCoordinator struct {
	conns       *Registry
	ringTimeout time.Duration

	calls sync.Map // domain.CallID -> *call
	pairs sync.Map // pairKey -> *call

	onExpire atomic.Pointer[func([]core.Outbound)]
}

func NewCallCoordinator(conns *Registry, ringTimeout time.Duration) *CallCoordinator {
	if ringTimeout <= 0 {
		ringTimeout = DefaultRingTimeout
	}
	return &CallCoordinator{conns: conns, ringTimeout: ringTimeout}
}

// OnExpire sets the sink for notifications produced by ring timeouts.
func (cc *CallCoordinator) OnExpire(fn func([]core.Outbound)) {
	cc.onExpire.Store(&fn)
}

func (cc *CallCoordinator) CallUser(callerID, calleeID domain.ConnID, kind domain.MediaKind) ([]core.Outbound, error) {
	caller, ok := cc.conns.Lookup(callerID)
	if !ok || caller.State != domain.Joined {
		return nil, domain.ErrNotJoined
	}
	if calleeID == callerID {
		return nil, domain.ErrPeerUnavailable
	}
	callee, ok := cc.conns.Lookup(calleeID)
	if !ok || !cc.conns.Active(calleeID) || callee.State != domain.Joined || callee.RoomID != caller.RoomID {
		return nil, domain.ErrPeerUnavailable
	}

	c := &call{Call: domain.Call{
		ID:        domain.NewCallID(),
		CallerID:  callerID,
		CalleeID:  calleeID,
		MediaKind: kind,
	}}
	c.state.Store(int32(domain.Ringing))

	key := keyOf(callerID, calleeID)
	for {
		prev, loaded := cc.pairs.LoadOrStore(key, c)
		if !loaded {
			break
		}
		old := prev.(*call)
		if old.current() != domain.Ended {
			return nil, domain.ErrPeerBusy
		}
		// Ended but not yet released.
		cc.pairs.CompareAndDelete(key, old)
	}
	cc.calls.Store(c.ID, c)

	// A disconnect that slipped in after the checks above must not leave
	// the call behind.
	if !cc.conns.Active(callerID) || !cc.conns.Active(calleeID) {
		if c.end() {
			cc.release(c)
		}
		return nil, domain.ErrPeerUnavailable
	}

	id := c.ID
	c.mu.Lock()
	if c.current() == domain.Ringing {
		c.timer = time.AfterFunc(cc.ringTimeout, func() { cc.expired(id) })
	}
	c.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("call_id", string(c.ID)).
		Str("from", string(callerID)).Str("to", string(calleeID)).
		Str("media", string(kind)).Msg("call ringing")

	return []core.Outbound{
		core.To(calleeID, core.EvIncomingCall, core.IncomingCall{
			CallID:    c.ID,
			FromID:    callerID,
			FromName:  caller.DisplayName,
			MediaKind: kind,
		}),
		core.To(callerID, core.EvCallRinging, core.CallRinging{
			CallID:    c.ID,
			ToID:      calleeID,
			MediaKind: kind,
		}),
	}, nil
}

func (cc *CallCoordinator) load(id domain.CallID) (*call, bool) {
	v, ok := cc.calls.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*call), true
}

// Answer lets the callee accept or decline a ringing call.
func (cc *CallCoordinator) Answer(id domain.CallID, from domain.ConnID, accept bool) ([]core.Outbound, error) {
	c, ok := cc.load(id)
	if !ok || c.CalleeID != from {
		return nil, domain.ErrInvalidCallState
	}
	if accept {
		if !c.state.CompareAndSwap(int32(domain.Ringing), int32(domain.Active)) {
			return nil, domain.ErrInvalidCallState
		}
		c.stopTimer()
		log.Info().Str("module", "app.calls").Str("call_id", string(id)).Msg("call accepted")
		return []core.Outbound{
			core.To(c.CallerID, core.EvCallAccepted, core.CallUpdate{CallID: id}),
		}, nil
	}

	if !c.state.CompareAndSwap(int32(domain.Ringing), int32(domain.Ended)) {
		return nil, domain.ErrInvalidCallState
	}
	cc.release(c)
	log.Info().Str("module", "app.calls").Str("call_id", string(id)).Msg("call declined")
	return []core.Outbound{
		core.To(c.CallerID, core.EvCallRejected, core.CallUpdate{CallID: id, Reason: core.ReasonDeclined}),
	}, nil
}

// Hangup ends a ringing or active call from either side.
func (cc *CallCoordinator) Hangup(id domain.CallID, from domain.ConnID) ([]core.Outbound, error) {
	c, ok := cc.load(id)
	if !ok || !c.Involves(from) {
		return nil, domain.ErrInvalidCallState
	}
	if !c.end() {
		return nil, domain.ErrInvalidCallState
	}
	cc.release(c)
	log.Info().Str("module", "app.calls").Str("call_id", string(id)).Str("by", string(from)).Msg("call hung up")
	return []core.Outbound{
		core.To(c.Peer(from), core.EvCallEnded, core.CallUpdate{CallID: id, Reason: core.ReasonHangup}),
	}, nil
}

// Expire ends a call that is still ringing. The caller hears a timeout
// rejection; the callee is not notified.
func (cc *CallCoordinator) Expire(id domain.CallID) ([]core.Outbound, error) {
	c, ok := cc.load(id)
	if !ok {
		return nil, domain.ErrInvalidCallState
	}
	if !c.state.CompareAndSwap(int32(domain.Ringing), int32(domain.Ended)) {
		return nil, domain.ErrInvalidCallState
	}
	cc.release(c)
	log.Info().Str("module", "app.calls").Str("call_id", string(id)).Msg("call timed out")
	return []core.Outbound{
		core.To(c.CallerID, core.EvCallRejected, core.CallUpdate{CallID: id, Reason: core.ReasonTimeout}),
	}, nil
}

func (cc *CallCoordinator) expired(id domain.CallID) {
	out, err := cc.Expire(id)
	if err != nil {
		return
	}
	if fn := cc.onExpire.Load(); fn != nil {
		(*fn)(out)
	}
}

// EndAllFor terminates every call the connection takes part in and tells
// the other party.
func (cc *CallCoordinator) EndAllFor(id domain.ConnID) []core.Outbound {
	var out []core.Outbound
	cc.calls.Range(func(_, v any) bool {
		c := v.(*call)
		if !c.Involves(id) || !c.end() {
			return true
		}
		cc.release(c)
		log.Info().Str("module", "app.calls").Str("call_id", string(c.ID)).Str("sid", string(id)).Msg("call ended by disconnect")
		out = append(out, core.To(c.Peer(id), core.EvCallEnded, core.CallUpdate{CallID: c.ID, Reason: core.ReasonDisconnect}))
		return true
	})
	return out
}

func (cc *CallCoordinator) release(c *call) {
	c.stopTimer()
	cc.calls.CompareAndDelete(c.ID, c)
	cc.pairs.CompareAndDelete(keyOf(c.CallerID, c.CalleeID), c)
}

// Lookup returns a snapshot of a live call.
func (cc *CallCoordinator) Lookup(id domain.CallID) (domain.Call, bool) {
	c, ok := cc.load(id)
	if !ok {
		return domain.Call{}, false
	}
	return c.snapshot(), true
}

// Count reports live calls, ringing or active.
func (cc *CallCoordinator) Count() int {
	n := 0
	cc.calls.Range(func(_, v any) bool {
		if v.(*call).current() != domain.Ended {
			n++
		}
		return true
	})
	return n
}
