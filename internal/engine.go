package internal

import "sync"

// Engine combines the segment pool and the arbiter rules behind a
// single mutex. It is the only thing in this package that locks
// anything; Pool and the pick* functions are pure bookkeeping over
// state the Engine hands them while holding the lock.
//
// The payload copy in Publish and the unsynchronized read in Borrow
// both happen outside the lock — the borrow count taken (or checked)
// under the lock is what makes that safe, not the mutex itself.
type Engine struct {
	mu sync.Mutex

	pool *Pool

	lastWritten  int
	prevWritten  int
	numReceivers int
	flags        uint8

	conflations  uint64
	publishes    uint64
	borrowsTotal uint64

	freed bool
}

// NewEngine starts a pool with 3 segments and one attached receiver,
// mirroring init_ringq: lastWritten at 0, prevWritten at 1, no frame
// published yet.
func NewEngine(bufsize int) *Engine {
	return &Engine{
		pool:         newPool(bufsize),
		lastWritten:  0,
		prevWritten:  1,
		numReceivers: 1,
	}
}

// Bufsize is immutable after construction and needs no locking.
func (e *Engine) Bufsize() int { return e.pool.bufsize }

// Publish copies data into a free segment and stamps it with ts. It
// never blocks: with no receivers attached it returns ErrNoReceivers
// without touching the pool, and with every other segment pinned it
// conflates by overwriting lastWritten in place.
func (e *Engine) Publish(data []byte, ts uint64) error {
	e.mu.Lock()
	if e.numReceivers == 0 {
		e.mu.Unlock()
		return ErrNoReceivers
	}

	target := pickWriter(e.pool, e.lastWritten)
	conflating := target == e.lastWritten
	if conflating {
		e.flags |= flagConflation
		e.conflations++
	} else if e.publishes == 0 {
		// lastWritten is still pointing at init_ringq's never-written
		// segment 0 — there is no real previous frame to fall back to
		// yet, so a borrow taken right after this commit must also see
		// target, not the unwritten segment lastWritten used to name.
		e.prevWritten = target
	} else {
		e.prevWritten = e.lastWritten
	}
	e.mu.Unlock()

	copy(e.pool.segments[target], data)
	e.pool.timestamps[target] = ts

	e.mu.Lock()
	e.lastWritten = target
	e.flags &^= flagConflation
	e.publishes++
	e.mu.Unlock()
	return nil
}

// Borrow pins a segment for the caller and returns its index, data and
// timestamp. The data slice aliases the pool's buffer directly — no
// copy — and stays valid until the matching Release.
func (e *Engine) Borrow() (index int, data []byte, ts uint64, err error) {
	e.mu.Lock()
	if e.flags&flagNoSender != 0 {
		e.mu.Unlock()
		return 0, nil, 0, ErrSenderClosed
	}
	if e.publishes == 0 {
		e.mu.Unlock()
		return 0, nil, 0, ErrNoFrameYet
	}

	conflating := e.flags&flagConflation != 0
	idx := pickReader(e.lastWritten, e.prevWritten, conflating)
	e.pool.borrows[idx]++
	e.borrowsTotal++
	e.mu.Unlock()

	return idx, e.pool.segments[idx], e.pool.timestamps[idx], nil
}

// Release returns a borrowed segment to the pool.
func (e *Engine) Release(index int) {
	e.mu.Lock()
	e.pool.borrows[index]--
	e.mu.Unlock()
}

// Clone grows the pool by one segment and attaches a new receiver.
// It succeeds even after the sender has closed — receivers may keep
// cloning among themselves over whatever was last published.
func (e *Engine) Clone() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.pool.grow(); err != nil {
		return err
	}
	e.numReceivers++
	return nil
}

// CloseSender detaches the sender. If no receivers remain, the pool is
// freed immediately; otherwise every later Borrow fails with
// ErrSenderClosed, while Clone and CloseReceiver keep working.
func (e *Engine) CloseSender() {
	e.mu.Lock()
	e.flags |= flagNoSender
	if e.numReceivers == 0 {
		e.freeAll()
		return
	}
	e.mu.Unlock()
}

// CloseReceiver detaches one receiver. If it is the last receiver and
// the sender has already closed, the pool is freed.
func (e *Engine) CloseReceiver() {
	e.mu.Lock()
	e.numReceivers--
	if e.numReceivers == 0 && e.flags&flagNoSender != 0 {
		e.freeAll()
		return
	}
	e.mu.Unlock()
}

// freeAll drops the pool's buffers. It is called with the lock held
// and deliberately never unlocks: once both sides of the exchange have
// gone, nothing should ever acquire this mutex again. Go has no
// pthread_mutex_destroy to mirror, but leaving it locked forever costs
// nothing once the Engine is unreachable.
func (e *Engine) freeAll() {
	for i := 0; i < e.pool.numSegments; i++ {
		e.pool.segments[i] = nil
	}
	e.freed = true
}

// Stats is a point-in-time snapshot of the pool's bookkeeping.
type Stats struct {
	NumSegments    int
	NumReceivers   int
	Conflations    uint64
	Publishes      uint64
	Borrows        uint64
	PinnedSegments int
	LastWritten    int
	PrevWritten    int
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	pinned := 0
	for i := 0; i < e.pool.numSegments; i++ {
		if e.pool.borrows[i] > 0 {
			pinned++
		}
	}

	return Stats{
		NumSegments:    e.pool.numSegments,
		NumReceivers:   e.numReceivers,
		Conflations:    e.conflations,
		Publishes:      e.publishes,
		Borrows:        e.borrowsTotal,
		PinnedSegments: pinned,
		LastWritten:    e.lastWritten,
		PrevWritten:    e.prevWritten,
	}
}
