package core

import "github.com/dkeye/VoipWeb/internal/domain"

//go:generate mockgen -destination=mocks/sender_mock.go -package=mocks . Sender

// Sender is the transport seen from the core. Send must not block on the
// network; implementations queue and report backpressure as an error.
type Sender interface {
	Send(id domain.ConnID, event string, payload any) error
	// Close tears down the channel of id; the transport reports the
	// disconnect back through the normal path.
	Close(id domain.ConnID)
}

// Outbound is one event addressed to one connection.
type Outbound struct {
	To      domain.ConnID
	Event   string
	Payload any
}

// To builds an Outbound.
func To(id domain.ConnID, event string, payload any) Outbound {
	return Outbound{To: id, Event: event, Payload: payload}
}

// Fanout addresses the same event to every id.
func Fanout(ids []domain.ConnID, event string, payload any) []Outbound {
	out := make([]Outbound, 0, len(ids))
	for _, id := range ids {
		out = append(out, To(id, event, payload))
	}
	return out
}
