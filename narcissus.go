package narcissus

import (
	"errors"

	"github.com/JamesWelchman/narcissus/internal"
)

// MaxSegments bounds how large the pool can grow via Receiver.Clone.
const MaxSegments = internal.MaxSegments

// Sentinel errors mirror the original's integer error codes
// (NO_RECEIVERS, SENDER_CLOSED, MAX_RECEIVERS). ErrNoFrameYet has no
// equivalent in the original: this port chooses to reject a Borrow
// before the first Publish rather than hand out an uninitialized
// segment.
var (
	ErrNoReceivers  = internal.ErrNoReceivers
	ErrSenderClosed = internal.ErrSenderClosed
	ErrMaxReceivers = internal.ErrMaxReceivers
	ErrNoFrameYet   = internal.ErrNoFrameYet
)

// New builds a ring exchange with a fixed segment size and one
// receiver already attached. bufsize must match the size of every
// slice later passed to Sender.Publish.
func New(bufsize int) (*Sender, *Receiver, error) {
	if bufsize <= 0 {
		return nil, nil, errors.New("narcissus: bufsize must be positive")
	}
	e := internal.NewEngine(bufsize)
	return &Sender{engine: e, bufsize: bufsize}, &Receiver{engine: e, bufsize: bufsize}, nil
}
