package scroll

// applyResponse reconciles a feed's answer to a prior request into
// its reserve, discarding it if the pivot it answered no longer
// matches what the engine last asked for (the feed is answering a
// request the engine has since superseded - e.g. a Jump happened in
// between). Matches spec.md §4.5's staleness rule.
func (e *Engine[Id]) applyResponse(r feedResponse[Id]) {
	fs, ok := e.feeds[r.feed]
	if !ok {
		e.log.Warn("response from unknown feed", "feed", string(r.feed))
		return
	}
	switch r.dir {
	case around:
		if fs.earlyState != sideFilling || fs.lateState != sideFilling || !e.anchorSt.hasId || e.anchorSt.id != r.pivot {
			e.log.Debug("discarding stale around response", "feed", string(r.feed))
			return
		}
		var early, late []Entry[Id]
		for _, ent := range r.entries {
			if e.less(ent.EntryId(), r.pivot) {
				early = append(early, ent)
			} else {
				late = append(late, ent)
			}
		}
		fs.earlyReserve = early
		fs.lateReserve = late
		if r.earlyStop {
			fs.earlyState = sideStopped
		} else {
			fs.earlyState = sideSatisfied
		}
		if r.lateStop {
			fs.lateState = sideStopped
		} else {
			fs.lateState = sideSatisfied
		}
	case Before:
		if fs.earlyState != sideFilling || fs.pendingEarlyPivot != r.pivot {
			e.log.Debug("discarding stale before response", "feed", string(r.feed))
			return
		}
		fs.pushEarlyFront(r.entries, e.less)
		if r.stop {
			fs.earlyState = sideStopped
		} else {
			fs.earlyState = sideSatisfied
		}
		fs.truncateEarly(e.cfg.MaxReserve)
	case After:
		if fs.lateState != sideFilling || fs.pendingLatePivot != r.pivot {
			e.log.Debug("discarding stale after response", "feed", string(r.feed))
			return
		}
		lastAnswered := r.pivot
		if n := len(r.entries); n > 0 {
			lastAnswered = r.entries[n-1].EntryId()
		}
		e.applyAfterEntries(fs, r.entries)
		stop := r.stop
		if stop {
			if n := len(fs.lateReserve); n > 0 && fs.lateReserve[n-1].EntryId() != lastAnswered {
				// A realtime notify raced ahead of this response (or
				// answered with zero new entries while one had already
				// landed) and added something past what the feed says is
				// the end: the feed was not actually caught up, so don't
				// trust its stop flag.
				stop = false
			}
		}
		if stop {
			fs.lateState = sideStopped
		} else {
			fs.lateState = sideSatisfied
		}
		fs.truncateLate(e.cfg.MaxReserve)
	}
}

// applyNotify inserts a realtime-delivered entry. If `after` is the
// last known entry of the feed (realized or reserved), the new entry
// extends the late reserve/window directly; otherwise it is ignored,
// since the engine has no ordering information connecting it to
// anything currently tracked (the feed is expected to resend it via a
// normal response once that gap is requested).
func (e *Engine[Id]) applyNotify(n feedNotify[Id]) {
	fs, ok := e.feeds[n.feed]
	if !ok {
		e.log.Warn("notify from unknown feed", "feed", string(n.feed))
		return
	}
	if !n.hasAfter {
		// Feed claims to be empty so far; only trust this before any
		// request has ever been made to it.
		if fs.earlyState == sideInitial && fs.lateState == sideInitial && len(fs.lateReserve) == 0 {
			fs.lateReserve = append(fs.lateReserve, n.entry)
			fs.lateState = sideSatisfied
		}
		return
	}
	if latest, ok := e.latestPivot(n.feed); ok && latest == n.after {
		fs.lateReserve = append(fs.lateReserve, n.entry)
		return
	}
	if len(fs.lateReserve) > 0 && fs.lateReserve[len(fs.lateReserve)-1].EntryId() == n.after {
		fs.lateReserve = append(fs.lateReserve, n.entry)
		return
	}
	e.log.Trace("dropping notify with unknown predecessor", "feed", string(n.feed))
}
