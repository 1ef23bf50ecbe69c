package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type CallID string

func NewCallID() CallID {
	return CallID(uuid.NewString())
}

type MediaKind string

const (
	Audio MediaKind = "audio"
	Video MediaKind = "video"
)

// ParseMediaKind accepts "audio" or "video"; empty means audio.
func ParseMediaKind(raw string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Audio:
		return Audio, nil
	case Video:
		return Video, nil
	default:
		return "", fmt.Errorf("unknown media kind %q: %w", raw, ErrMalformedEvent)
	}
}

type CallState int32

const (
	Ringing CallState = iota
	Active
	Ended
)

func (s CallState) String() string {
	switch s {
	case Ringing:
		return "ringing"
	case Active:
		return "active"
	default:
		return "ended"
	}
}

// Call is a snapshot of one signaling negotiation between two connections.
type Call struct {
	ID        CallID
	CallerID  ConnID
	CalleeID  ConnID
	MediaKind MediaKind
	State     CallState
}

// Peer returns the other party of the call.
func (c Call) Peer(id ConnID) ConnID {
	if id == c.CallerID {
		return c.CalleeID
	}
	return c.CallerID
}

func (c Call) Involves(id ConnID) bool {
	return id == c.CallerID || id == c.CalleeID
}
