package narcissus

import "github.com/JamesWelchman/narcissus/internal"

// View is a zero-copy, read-only borrow of whichever segment the
// arbiter handed out at the time Borrow was called. Data aliases the
// pool's own buffer directly; it is only valid until Release, and
// using it afterward is a contract violation the way dereferencing a
// dropped Frame would be in the original.
type View struct {
	Data []byte
	Ts   uint64

	engine   *internal.Engine
	index    int
	released bool
}

// Release returns the segment to the pool so the writer may reuse it.
// Releasing twice is a no-op rather than a panic, but relying on that
// is still a contract violation — don't keep using Data after the
// first Release.
func (v *View) Release() {
	if v.released {
		return
	}
	v.released = true
	v.engine.Release(v.index)
}

// Receiver is a read handle on a ring exchange. Borrow pins exactly
// one segment until Release; Clone grows the pool by one segment and
// hands back an independent Receiver over the same exchange.
type Receiver struct {
	engine  *internal.Engine
	bufsize int
	closed  bool
}

// Borrow pins the most recently visible segment and returns a View
// over it. It returns ErrNoFrameYet before the first Publish, and
// ErrSenderClosed once the sender has detached.
func (r *Receiver) Borrow() (View, error) {
	idx, data, ts, err := r.engine.Borrow()
	if err != nil {
		return View{}, err
	}
	return View{Data: data, Ts: ts, engine: r.engine, index: idx}, nil
}

// Clone grows the pool by one segment and attaches a new, independent
// Receiver over the same exchange. It fails with ErrMaxReceivers once
// the pool has grown to MaxSegments.
func (r *Receiver) Clone() (*Receiver, error) {
	if err := r.engine.Clone(); err != nil {
		return nil, err
	}
	return &Receiver{engine: r.engine, bufsize: r.bufsize}, nil
}

// Stats returns a snapshot of the exchange's pool bookkeeping.
func (r *Receiver) Stats() Stats {
	return statsFromEngine(r.engine.Stats())
}

// Close detaches this receiver. If it is the last receiver and the
// sender has already closed, the pool is freed.
func (r *Receiver) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.engine.CloseReceiver()
}
