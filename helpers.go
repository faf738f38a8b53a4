package narcissus

import (
	"context"
	"log/slog"
	"time"
)

// statsSource is satisfied by both *Sender and *Receiver.
type statsSource interface {
	Stats() Stats
}

// ConflationRate returns the fraction of all publishes so far that
// conflated instead of landing in a free segment, as a value in
// [0,1]. Returns 0 if there have been no publishes yet.
func ConflationRate(s Stats) float64 {
	if s.Publishes == 0 {
		return 0
	}
	return float64(s.Conflations) / float64(s.Publishes)
}

// StartStatsLogger periodically logs exchange stats via logger until
// ctx is cancelled, warning when the conflation rate since the last
// tick crosses 80% — a sign receivers aren't keeping up with the
// sender. Adapted from framebus's StartStatsLogger.
func StartStatsLogger(ctx context.Context, source statsSource, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := source.Stats()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := source.Stats()

			deltaPublishes := cur.Publishes - prev.Publishes
			deltaConflations := cur.Conflations - prev.Conflations
			if deltaPublishes > 0 {
				rate := float64(deltaConflations) / float64(deltaPublishes)
				if rate > 0.80 {
					logger.Warn("high conflation rate",
						"conflation_rate_pct", int(rate*100),
						"conflations_last_interval", deltaConflations,
						"publishes_last_interval", deltaPublishes,
					)
				}
			}

			logger.Debug("exchange stats",
				"num_segments", cur.NumSegments,
				"num_receivers", cur.NumReceivers,
				"pinned_segments", cur.PinnedSegments,
				"publishes", cur.Publishes,
				"conflations", cur.Conflations,
				"borrows", cur.Borrows,
			)

			prev = cur
		}
	}
}
