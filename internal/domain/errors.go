package domain

import "errors"

var (
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrAlreadyJoined       = errors.New("already joined another room")
	ErrPeerUnavailable     = errors.New("peer unavailable")
	ErrPeerBusy            = errors.New("peer busy")
	ErrInvalidCallState    = errors.New("invalid call state")
	ErrUnknownPeer         = errors.New("unknown peer")
	ErrNotInSameRoom       = errors.New("not in the same room")
	ErrMalformedEvent      = errors.New("malformed event")
	ErrNotJoined           = errors.New("not joined to a room")
	ErrRoomFull            = errors.New("room is full")
	ErrRateLimited         = errors.New("rate limited")
	ErrFeatureDisabled     = errors.New("feature disabled")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrDuplicateConnection, "DuplicateConnection"},
	{ErrAlreadyJoined, "AlreadyJoined"},
	{ErrPeerUnavailable, "PeerUnavailable"},
	{ErrPeerBusy, "PeerBusy"},
	{ErrInvalidCallState, "InvalidCallState"},
	{ErrUnknownPeer, "UnknownPeer"},
	{ErrNotInSameRoom, "NotInSameRoom"},
	{ErrMalformedEvent, "MalformedEvent"},
	{ErrNotJoined, "NotJoined"},
	{ErrRoomFull, "RoomFull"},
	{ErrRateLimited, "RateLimited"},
	{ErrFeatureDisabled, "FeatureDisabled"},
}

// Code maps an error to the code reported to clients.
// Anything outside the taxonomy is reported as "Internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}
