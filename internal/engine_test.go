package internal

import (
	"bytes"
	"testing"
)

func payload(bufsize int, b byte) []byte {
	buf := make([]byte, bufsize)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

// Scenario: a single publish followed by a single borrow sees exactly
// that frame's bytes and timestamp.
func TestPublishThenBorrowRoundTrip(t *testing.T) {
	e := NewEngine(4)

	if err := e.Publish(payload(4, 0xAB), 42); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	idx, data, ts, err := e.Borrow()
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if ts != 42 {
		t.Fatalf("got ts %d, want 42", ts)
	}
	if !bytes.Equal(data, payload(4, 0xAB)) {
		t.Fatalf("got %v, want all 0xAB", data)
	}
	e.Release(idx)
}

// Scenario: Borrow before any Publish must not hand out an
// uninitialized segment.
func TestBorrowBeforeFirstPublish(t *testing.T) {
	e := NewEngine(4)

	_, _, _, err := e.Borrow()
	if err != ErrNoFrameYet {
		t.Fatalf("got %v, want ErrNoFrameYet", err)
	}
}

// Scenario: Publish with zero receivers is a no-op error, not a panic
// or a buffered write.
func TestPublishNoReceivers(t *testing.T) {
	e := NewEngine(4)
	e.numReceivers = 0

	if err := e.Publish(payload(4, 1), 1); err != ErrNoReceivers {
		t.Fatalf("got %v, want ErrNoReceivers", err)
	}
	if e.publishes != 0 {
		t.Fatalf("publishes = %d, want 0", e.publishes)
	}
}

// Scenario: with the current frame borrowed and every other segment
// also pinned, a publish conflates onto lastWritten rather than
// growing the pool or blocking.
func TestPublishConflatesWhenAllSegmentsPinned(t *testing.T) {
	e := NewEngine(4)

	if err := e.Publish(payload(4, 1), 1); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Pin every segment in the pool so pickWriter has nowhere to go
	// but lastWritten.
	for i := 0; i < e.pool.numSegments; i++ {
		e.pool.borrows[i]++
	}

	before := e.conflations
	target := e.lastWritten
	if err := e.Publish(payload(4, 2), 2); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if e.conflations != before+1 {
		t.Fatalf("conflations = %d, want %d", e.conflations, before+1)
	}
	if e.lastWritten != target {
		t.Fatalf("lastWritten = %d, want %d (conflated in place)", e.lastWritten, target)
	}
	if !bytes.Equal(e.pool.segments[target], payload(4, 2)) {
		t.Fatalf("segment %d = %v, want all 0x02", target, e.pool.segments[target])
	}
}

// Scenario: a borrow taken while the writer is conflating sees
// lastWritten, since there is no untouched prevWritten to hand out.
func TestBorrowDuringConflationSeesLastWritten(t *testing.T) {
	e := NewEngine(4)
	e.Publish(payload(4, 1), 1)

	e.flags |= flagConflation
	idx, _, _, err := e.Borrow()
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if idx != e.lastWritten {
		t.Fatalf("idx = %d, want lastWritten %d", idx, e.lastWritten)
	}
	e.Release(idx)
}

// Scenario: Clone grows the pool by exactly one segment per call, and
// refuses once MaxSegments is reached.
func TestCloneGrowsPoolUntilMax(t *testing.T) {
	e := NewEngine(4)

	startSegments := e.pool.numSegments
	for i := 0; i < MaxSegments-startSegments; i++ {
		if err := e.Clone(); err != nil {
			t.Fatalf("Clone() #%d: %v", i, err)
		}
	}
	if e.pool.numSegments != MaxSegments {
		t.Fatalf("numSegments = %d, want %d", e.pool.numSegments, MaxSegments)
	}

	if err := e.Clone(); err != ErrMaxReceivers {
		t.Fatalf("got %v, want ErrMaxReceivers", err)
	}
}

// Scenario: once the sender closes, Borrow refuses outright with
// ErrSenderClosed, even though a frame was published before the close:
// the sender-closed flag is checked unconditionally, matching the
// original, since no new information will ever arrive.
func TestBorrowAfterSenderClosed(t *testing.T) {
	e := NewEngine(4)
	e.Publish(payload(4, 1), 1)
	e.CloseSender()

	_, _, _, err := e.Borrow()
	if err != ErrSenderClosed {
		t.Fatalf("got %v, want ErrSenderClosed", err)
	}
}

// Scenario: closing the sender while receivers remain does not free
// the pool; closing the last receiver afterward does.
func TestLifecycleFreesOnlyWhenBothSidesGone(t *testing.T) {
	e := NewEngine(4)

	e.CloseSender()
	if e.freed {
		t.Fatalf("pool freed with a receiver still attached")
	}

	e.CloseReceiver()
	if !e.freed {
		t.Fatalf("pool not freed after last receiver closed post sender-close")
	}
}

// Scenario: closing the last receiver before the sender closes must
// not free the pool — the sender is still attached, and the pool is
// freed only once both sides have closed.
func TestReceiverCloseBeforeSenderCloseDoesNotFree(t *testing.T) {
	e := NewEngine(4)

	e.CloseReceiver()
	if e.freed {
		t.Fatalf("pool freed while sender still attached")
	}
}

func TestPickWriterSkipsLastWrittenAndPinnedSegments(t *testing.T) {
	p := newPool(4)
	p.borrows[1] = 1

	got := pickWriter(p, 0)
	if got == 0 || got == 1 {
		t.Fatalf("pickWriter(lastWritten=0) = %d, want a segment other than 0 or pinned 1", got)
	}
}

func TestPickWriterFallsBackToLastWrittenWhenAllPinned(t *testing.T) {
	p := newPool(4)
	for i := 0; i < p.numSegments; i++ {
		p.borrows[i] = 1
	}

	if got := pickWriter(p, 0); got != 0 {
		t.Fatalf("pickWriter = %d, want 0 (conflation fallback)", got)
	}
}

func TestPickReader(t *testing.T) {
	if got := pickReader(2, 1, false); got != 1 {
		t.Fatalf("pickReader(normal) = %d, want prevWritten 1", got)
	}
	if got := pickReader(2, 1, true); got != 2 {
		t.Fatalf("pickReader(conflating) = %d, want lastWritten 2", got)
	}
}

func TestStatsReflectsBookkeeping(t *testing.T) {
	e := NewEngine(4)
	e.Publish(payload(4, 1), 1)
	idx, _, _, _ := e.Borrow()

	s := e.Stats()
	if s.Publishes != 1 {
		t.Fatalf("Publishes = %d, want 1", s.Publishes)
	}
	if s.Borrows != 1 {
		t.Fatalf("Borrows = %d, want 1", s.Borrows)
	}
	if s.PinnedSegments != 1 {
		t.Fatalf("PinnedSegments = %d, want 1", s.PinnedSegments)
	}

	e.Release(idx)
	if e.Stats().PinnedSegments != 0 {
		t.Fatalf("PinnedSegments after Release = %d, want 0", e.Stats().PinnedSegments)
	}
}
