package narcissus

import "github.com/JamesWelchman/narcissus/internal"

// Stats is an operational snapshot of a ring exchange's pool, useful
// for logging and metrics. It is a plain value, safe to copy and hold
// onto after the exchange has moved on.
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

func statsFromEngine(s internal.Stats) Stats {
	return Stats{
		NumSegments:    s.NumSegments,
		NumReceivers:   s.NumReceivers,
		Conflations:    s.Conflations,
		Publishes:      s.Publishes,
		Borrows:        s.Borrows,
		PinnedSegments: s.PinnedSegments,
		LastWritten:    s.LastWritten,
		PrevWritten:    s.PrevWritten,
	}
}
