// Package internal implements the segment pool and arbiter that back
// the public narcissus package. Nothing here is exported outside the
// module; the root package wraps it in Sender/Receiver handles.
package internal

import "errors"

// MaxSegments bounds how many buffers the pool will ever grow to. Each
// Clone past this limit fails rather than growing the pool further.
const MaxSegments = 16

const (
	flagConflation uint8 = 1 << iota
	flagNoSender
)

var (
	// ErrNoReceivers is returned by Publish when the pool has no
	// attached receivers; the publish is skipped, nothing is copied.
	ErrNoReceivers = errors.New("narcissus: no receivers")

	// ErrSenderClosed is returned by Borrow once the sender has closed
	// and no further frames will ever arrive.
	ErrSenderClosed = errors.New("narcissus: sender closed")

	// ErrMaxReceivers is returned by Clone once the pool has grown to
	// MaxSegments and cannot add another receiver.
	ErrMaxReceivers = errors.New("narcissus: max receivers reached")

	// ErrNoFrameYet is returned by Borrow before the first successful
	// Publish has committed a segment. There is no "prev_written"
	// frame to hand out yet.
	ErrNoFrameYet = errors.New("narcissus: no frame published yet")
)
