package core

import "errors"

// Frame is an encoded outbound message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ErrBackpressure is returned by a transport whose outbound queue is full.
var ErrBackpressure = errors.New("backpressure")
