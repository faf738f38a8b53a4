package narcissus

import (
	"fmt"

	"github.com/JamesWelchman/narcissus/internal"
)

// Sender is the single write handle for a ring exchange. There is no
// Sender.Clone — only Receiver has one — so the single-producer
// contract is enforced by the type, not by a runtime check.
type Sender struct {
	engine  *internal.Engine
	bufsize int
	closed  bool
}

// Publish copies data into a free segment and stamps it with ts. It
// never blocks on slow receivers: with no receivers attached it
// returns ErrNoReceivers, and with every other segment pinned it
// conflates onto the most recently published one instead of queueing.
func (s *Sender) Publish(data []byte, ts uint64) error {
	if len(data) != s.bufsize {
		return fmt.Errorf("narcissus: publish: want %d bytes, got %d", s.bufsize, len(data))
	}
	return s.engine.Publish(data, ts)
}

// Stats returns a snapshot of the exchange's pool bookkeeping.
func (s *Sender) Stats() Stats {
	return statsFromEngine(s.engine.Stats())
}

// Close detaches the sender. Go has no move semantics to stop a
// Publish call after Close at compile time, so callers must simply
// not call Publish again once Close returns.
func (s *Sender) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.engine.CloseSender()
}
