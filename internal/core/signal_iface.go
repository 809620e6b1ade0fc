package core

import "errors"

// Frame is one encoded event, ready for the wire.
type Frame []byte

// ConnID identifies a single transport connection, unlike domain.UserID
// which may outlive it.
type ConnID string

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts the event transport of one client.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking. It fails with ErrBackpressure when
	// the queue is full and ErrConnClosed after Close.
	TrySend(Frame) error
	Close()
}
