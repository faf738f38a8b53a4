package internal

// pickWriter chooses the segment a publish may safely overwrite: the
// first segment other than lastWritten with a zero borrow count. If
// every other segment is pinned by a reader, it falls back to
// lastWritten itself, which is how conflation happens — the caller is
// responsible for noticing target == lastWritten and flagging it.
func pickWriter(pool *Pool, lastWritten int) int {
	for i := 0; i < pool.numSegments; i++ {
		if i == lastWritten {
			continue
		}
		if pool.borrows[i] == 0 {
			return i
		}
	}
	return lastWritten
}

// pickReader chooses the segment a new borrow should see. Under normal
// operation a reader gets prevWritten, the last segment the writer
// fully committed before its most recent publish, so the writer is
// always free to pick a different segment next time. During
// conflation there is no prevWritten to hand out that isn't also
// pinned, so the reader gets lastWritten instead, racing the writer's
// in-progress in-place overwrite of that same segment.
//
// prevWritten is only meaningful once the engine has committed it to a
// segment that was actually written — pickReader trusts its caller for
// that; see Engine.Publish's handling of the very first commit.
func pickReader(lastWritten, prevWritten int, conflating bool) int {
	if conflating {
		return lastWritten
	}
	return prevWritten
}
