// Package narcissus implements a single-producer, multi-consumer ring
// exchange for fixed-size frames.
//
// # Philosophy
//
// A video frame is a latest-value, not a queued event: a receiver that
// falls behind should see the newest frame available, never an old one
// replayed from a backlog. narcissus trades the completeness a channel
// or queue would give you for that guarantee — Sender.Publish never
// blocks and never returns a "try again" backpressure signal, even
// when every receiver is behind.
//
// # Basic usage
//
//	sender, receiver, err := narcissus.New(bufsize)
//	if err != nil {
//		// ...
//	}
//
//	go func() {
//		for {
//			sender.Publish(frame, timestamp)
//		}
//	}()
//
//	view, err := receiver.Borrow()
//	if err != nil {
//		// ...
//	}
//	process(view.Data)
//	view.Release()
//
// # Zero-copy contract
//
// View.Data aliases the pool's own buffer. It is valid from Borrow
// until Release and must not be retained past that call — Release
// signals the pool that the segment is free for the writer to reuse,
// and nothing stops that reuse from racing a caller that kept the
// slice around.
//
// # Multiple receivers
//
// Receiver.Clone grows the pool by one segment and returns an
// independent Receiver over the same exchange; each Receiver borrows
// and releases on its own schedule. There is no Sender.Clone — only
// one goroutine may ever publish into a given exchange.
//
// # Conflation
//
// When every segment besides the one most recently published is
// pinned by a borrow, Publish overwrites that most-recent segment in
// place rather than growing the pool or blocking. A borrow taken
// during that window sees the segment being written concurrently;
// Stats().Conflations counts how often this has happened, and
// StartStatsLogger warns when it happens often enough to suggest a
// receiver is chronically behind.
//
// # Lifecycle
//
// The pool's buffers are freed once both the sender and every
// receiver have closed, whichever happens last. Closing the sender
// with receivers still attached does not free anything; outstanding
// receivers may keep borrowing (and failing with ErrSenderClosed) and
// cloning among themselves until they too close.
package narcissus
