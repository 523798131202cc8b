package scroll

import "sort"

// shakeNow runs the full reconciliation pass: measure the current
// window against the viewport + buffer, unrealize anything that has
// scrolled out past the buffer, realize fresh entries to refill it,
// request more from any feed whose reserve has run low, complete any
// in-flight alignment transition, and publish the result for layout.
// Mirrors the Rust source's shake_immediate() phase structure.
func (e *Engine[Id]) shakeNow() {
	if len(e.real) == 0 && e.anchorSt.hasId {
		// Anchor set but nothing realized yet (e.g. just after Jump):
		// try to realize around it before anything else.
		e.realizeAroundAnchor()
	}

	// Phase 1: measure, then reanchor - walk the anchor to whichever
	// realized entry now sits nearest the position scrolling has moved
	// it to, re-deriving a clamped offset. Without this, offsetPx would
	// accumulate unbounded as the user scrolls past the anchor entry's
	// own span (spec.md §4.4).
	tops := e.measureTops()
	anchorIdx, anchorRef := e.findAnchor(tops)
	if len(e.real) > 0 {
		target := anchorRef + e.anchorSt.offsetPx
		reanchor(&e.anchorSt, e.real, tops, target)
		anchorIdx, anchorRef = e.findAnchor(tops)
		e.anchorSt.offsetPx = target - anchorRef
	}
	_ = anchorIdx

	viewTop := anchorRef - e.viewport*float64(e.anchorSt.align) + e.anchorSt.offsetPx
	viewBot := viewTop + e.viewport

	bufTop := viewTop - e.cfg.BufferPx
	bufBot := viewBot + e.cfg.BufferPx

	// Phase 2: unrealize overflow outside [bufTop, bufBot].
	e.unrealizeOverflow(tops, bufTop, bufBot)

	// Recompute after unrealize, since indices shifted.
	tops = e.measureTops()
	anchorIdx, anchorRef = e.findAnchor(tops)
	_ = anchorIdx

	// Phase 3+4: realize to fill, splicing into e.real as we go.
	e.realizeToFill(bufTop, bufBot, anchorRef)

	// Phase 5: request refills for any feed under MinReserve.
	e.requestRefills()

	// Phase 6: complete any in-flight alignment transition.
	if e.anchorSt.transitioning {
		tops = e.measureTops()
		_, oldRef := e.findAnchor(tops)
		newAlignRef := e.refAtAlignment(tops, e.anchorSt.targetAlign)
		e.anchorSt.transitionAlignment(oldRef, newAlignRef)
	}

	// Phase 7: publish for layout.
	e.publish()
}

// measureTops computes the top-edge pixel position of every realized
// entry, laid out back-to-back by last-measured height, anchored so
// that position 0 corresponds to the anchor entry's top edge. Entries
// with no measured height yet (just realized, not yet laid out by the
// host) are treated as height 0 until ReportHeight arrives.
func (e *Engine[Id]) measureTops() []float64 {
	tops := make([]float64, len(e.real))
	if len(e.real) == 0 {
		return tops
	}
	idx, _ := e.findAnchorIndex()
	if idx < 0 {
		idx = 0
	}
	y := 0.0
	tops[idx] = 0
	for i := idx - 1; i >= 0; i-- {
		y -= e.real[i+1].Height
		tops[i] = y
	}
	y = 0
	for i := idx + 1; i < len(e.real); i++ {
		y += e.real[i-1].Height
		tops[i] = y
	}
	return tops
}

func (e *Engine[Id]) findAnchorIndex() (int, bool) {
	if !e.anchorSt.hasId {
		return -1, false
	}
	for i := range e.real {
		if e.real[i].Entry.EntryId() == e.anchorSt.id {
			return i, true
		}
	}
	return -1, false
}

// findAnchor returns the anchor's index and its reference-edge
// absolute pixel position (top + height*align), given tops computed
// relative to the anchor's own top at 0.
func (e *Engine[Id]) findAnchor(tops []float64) (int, float64) {
	idx, ok := e.findAnchorIndex()
	if !ok {
		return -1, 0
	}
	h := e.real[idx].Height
	return idx, tops[idx] + h*float64(e.anchorSt.align)
}

// refAtAlignment returns what the anchor's reference pixel position
// would be if align were applied instead of the current alignment.
func (e *Engine[Id]) refAtAlignment(tops []float64, align Alignment) float64 {
	idx, ok := e.findAnchorIndex()
	if !ok {
		return 0
	}
	return tops[idx] + e.real[idx].Height*float64(align)
}

// unrealizeOverflow removes realized entries whose full span lies
// outside [bufTop, bufBot], stashing them back into their feed's
// reserve (or the sticky holding area) so they are not re-fetched if
// scrolled back into view.
func (e *Engine[Id]) unrealizeOverflow(tops []float64, bufTop, bufBot float64) {
	// Trim from the front (earliest entries) while they end before bufTop.
	for len(e.real) > 0 {
		bot := tops[0] + e.real[0].Height
		if bot >= bufTop || e.real[0].Sticky {
			break
		}
		re := e.real[0]
		e.real = e.real[1:]
		tops = tops[1:]
		e.sticky.stashEarly(re.Entry)
		if fs, ok := e.feeds[re.Entry.Feed()]; ok {
			fs.pushEarlyBack(re.Entry)
		}
	}
	// Trim from the back (latest entries) while they start after bufBot.
	for len(e.real) > 0 {
		last := len(e.real) - 1
		top := tops[last]
		if top <= bufBot || e.real[last].Sticky {
			break
		}
		re := e.real[last]
		e.real = e.real[:last]
		tops = tops[:last]
		e.sticky.stashLate(re.Entry)
		if fs, ok := e.feeds[re.Entry.Feed()]; ok {
			fs.pushLateFront(re.Entry)
		}
	}
}

// realizeToFill pulls entries from feed reserves (nearest-the-window
// first, merged across feeds by Less order) until the window's span
// covers [bufTop, bufBot] on both sides or every feed's reserve on
// that side is exhausted.
func (e *Engine[Id]) realizeToFill(bufTop, bufBot, anchorRef float64) {
	// Extend forward (After / late side).
	for {
		tops := e.measureTops()
		span := bufBot
		if len(e.real) > 0 {
			last := len(e.real) - 1
			if tops[last]+e.real[last].Height >= bufBot {
				span = -1
			}
		}
		if span < 0 {
			break
		}
		next, key, ok := e.pickNextLate()
		if !ok {
			break
		}
		fs := e.feeds[key]
		fs.popLateFront()
		e.sticky.unstash(next.EntryId())
		e.real = append(e.real, RealizedEntry[Id]{Entry: next, Sticky: e.sticky.isSticky(next.EntryId())})
	}
	// Extend backward (Before / early side).
	for {
		tops := e.measureTops()
		if len(e.real) > 0 && tops[0] <= bufTop {
			break
		}
		prev, key, ok := e.pickNextEarly()
		if !ok {
			break
		}
		fs := e.feeds[key]
		fs.popEarlyBack()
		e.sticky.unstash(prev.EntryId())
		e.real = append([]RealizedEntry[Id]{{Entry: prev, Sticky: e.sticky.isSticky(prev.EntryId())}}, e.real...)
	}
}

// pickNextLate returns the smallest (by Less) front-of-lateReserve
// entry across all feeds, i.e. the next entry to realize when
// extending forward.
func (e *Engine[Id]) pickNextLate() (Entry[Id], FeedKey, bool) {
	var best Entry[Id]
	var bestKey FeedKey
	found := false
	for key, fs := range e.feeds {
		if len(fs.lateReserve) == 0 {
			if fs.lateState != sideStopped {
				// This feed hasn't confirmed there's nothing further on
				// this side; picking around it could realize entries out
				// of order once it catches up, so the whole side halts
				// here rather than silently excluding it.
				var zero Entry[Id]
				return zero, "", false
			}
			continue
		}
		cand := fs.lateReserve[0]
		if !found || e.less(cand.EntryId(), best.EntryId()) {
			best = cand
			bestKey = key
			found = true
		}
	}
	return best, bestKey, found
}

// pickNextEarly returns the largest (by Less) back-of-earlyReserve
// entry across all feeds, i.e. the next entry to realize when
// extending backward.
func (e *Engine[Id]) pickNextEarly() (Entry[Id], FeedKey, bool) {
	var best Entry[Id]
	var bestKey FeedKey
	found := false
	for key, fs := range e.feeds {
		n := len(fs.earlyReserve)
		if n == 0 {
			if fs.earlyState != sideStopped {
				var zero Entry[Id]
				return zero, "", false
			}
			continue
		}
		cand := fs.earlyReserve[n-1]
		if !found || e.less(best.EntryId(), cand.EntryId()) {
			best = cand
			bestKey = key
			found = true
		}
	}
	return best, bestKey, found
}

// requestRefills asks every feed whose reserve has fallen under
// MinReserve on a side (and is not already filling or stopped) for
// RequestCount more entries, pivoting off the far edge of that feed's
// reserve on that side, or off its outermost realized entry if that
// reserve is empty.
func (e *Engine[Id]) requestRefills() {
	for key, fs := range e.feeds {
		if fs.needsEarlyRequest(e.cfg.MinReserve) {
			if pivot, ok := e.earliestPivot(key); ok {
				fs.earlyState = sideFilling
				fs.pendingEarlyPivot = pivot
				fs.feed.RequestBefore(e.reqCtx(), pivot, e.cfg.RequestCount)
			}
		}
		if fs.needsLateRequest(e.cfg.MinReserve) {
			if pivot, ok := e.latestPivot(key); ok {
				fs.lateState = sideFilling
				fs.pendingLatePivot = pivot
				fs.feed.RequestAfter(e.reqCtx(), pivot, e.cfg.RequestCount)
			}
		}
	}
}

// earliestPivot returns the id to pivot a RequestBefore on for feed
// key: the earliest entry of that feed across its reserve+realized
// window, or false if the feed has nothing at all yet (needs an
// initial RequestAround instead, handled by realizeAroundAnchor/Jump).
func (e *Engine[Id]) earliestPivot(key FeedKey) (Id, bool) {
	fs := e.feeds[key]
	if len(fs.earlyReserve) > 0 {
		return fs.earlyReserve[0].EntryId(), true
	}
	for _, re := range e.real {
		if re.Entry.Feed() == key {
			return re.Entry.EntryId(), true
		}
	}
	var zero Id
	return zero, false
}

// latestPivot returns the id to pivot a RequestAfter on for feed key.
func (e *Engine[Id]) latestPivot(key FeedKey) (Id, bool) {
	fs := e.feeds[key]
	if len(fs.lateReserve) > 0 {
		return fs.lateReserve[len(fs.lateReserve)-1].EntryId(), true
	}
	for i := len(e.real) - 1; i >= 0; i-- {
		if e.real[i].Entry.Feed() == key {
			return e.real[i].Entry.EntryId(), true
		}
	}
	var zero Id
	return zero, false
}

// realizeAroundAnchor issues an initial RequestAround to every feed
// that has never been asked before, used right after New or a Jump.
func (e *Engine[Id]) realizeAroundAnchor() {
	for _, fs := range e.feeds {
		if fs.earlyState == sideInitial && fs.lateState == sideInitial {
			fs.earlyState = sideFilling
			fs.lateState = sideFilling
			fs.feed.RequestAround(e.reqCtx(), e.anchorSt.id, e.cfg.RequestCount)
		}
	}
}

func (e *Engine[Id]) applyJump(v jumpEvent[Id]) {
	e.real = nil
	e.sticky.clearHolding()
	e.anchorSt.set(v.id, v.align)
	for _, fs := range e.feeds {
		fs.earlyReserve = nil
		fs.lateReserve = nil
		fs.earlyState = sideInitial
		fs.lateState = sideInitial
	}
}

// applySetSticky pins (v.feed, v.id) so it stays visible once
// scrolled out of the realized window. If the entry is currently
// realized, it is marked in place (realizeToFill/unrealizeOverflow
// pick the Sticky flag up from e.sticky on every later pass); if it is
// only reserved, it is stashed into the matching holding area right
// away, mirroring what unrealizeOverflow would do once it scrolls out.
func (e *Engine[Id]) applySetSticky(v setStickyEvent[Id]) {
	for i := range e.real {
		if e.real[i].Entry.Feed() == v.feed && e.real[i].Entry.EntryId() == v.id {
			e.sticky.set(e.real[i].Entry)
			e.real[i].Sticky = true
			return
		}
	}
	fs, ok := e.feeds[v.feed]
	if !ok {
		return
	}
	for _, ent := range fs.earlyReserve {
		if ent.EntryId() == v.id {
			e.sticky.set(ent)
			e.sticky.stashEarly(ent)
			return
		}
	}
	for _, ent := range fs.lateReserve {
		if ent.EntryId() == v.id {
			e.sticky.set(ent)
			e.sticky.stashLate(ent)
			return
		}
	}
}

// applyClearSticky unpins id, dropping it from the holding areas and
// from the realized Sticky flag if it happens to be on screen.
func (e *Engine[Id]) applyClearSticky(id Id) {
	e.sticky.clear(id)
	for i := range e.real {
		if e.real[i].Entry.EntryId() == id {
			e.real[i].Sticky = false
		}
	}
}

// applyAfterEntries reconciles a feed's freshly answered respondAfter
// entries against the realized list, splicing anything that now sorts
// at or before the realized tail directly into place (or into the
// early reserve, if it precedes the realized list's front entirely)
// instead of blindly queuing it behind already-realized entries that
// another feed's extension admitted first. Entries genuinely past the
// tail still queue into the late reserve, except when every other feed
// is already late-stopped with an empty late reserve: ordering is then
// provably final, so they are appended straight into the realized
// list. See spec.md §4.5.
func (e *Engine[Id]) applyAfterEntries(fs *feedState[Id], entries []Entry[Id]) {
	if len(entries) == 0 {
		return
	}
	if len(e.real) == 0 {
		fs.pushLateBack(entries, e.less)
		return
	}
	frontId := e.real[0].Entry.EntryId()
	tailId := e.real[len(e.real)-1].Entry.EntryId()

	var early, splice, late []Entry[Id]
	for _, ent := range entries {
		id := ent.EntryId()
		switch {
		case e.less(id, frontId):
			early = append(early, ent)
		case !e.less(tailId, id):
			splice = append(splice, ent)
		default:
			late = append(late, ent)
		}
	}
	if len(early) > 0 {
		fs.pushEarlyFront(early, e.less)
	}
	for _, ent := range splice {
		e.spliceRealized(ent)
	}
	if len(late) > 0 {
		if e.allOtherFeedsLateStoppedEmpty(fs) {
			for _, ent := range late {
				e.sticky.unstash(ent.EntryId())
				e.real = append(e.real, RealizedEntry[Id]{Entry: ent, Sticky: e.sticky.isSticky(ent.EntryId())})
			}
		} else {
			fs.pushLateBack(late, e.less)
		}
	}
}

// spliceRealized inserts ent into e.real at its sorted position,
// unless an entry with the same id is already realized there.
func (e *Engine[Id]) spliceRealized(ent Entry[Id]) {
	id := ent.EntryId()
	i := sort.Search(len(e.real), func(i int) bool {
		return !e.less(e.real[i].Entry.EntryId(), id)
	})
	if i < len(e.real) && e.real[i].Entry.EntryId() == id {
		return
	}
	e.sticky.unstash(id)
	re := RealizedEntry[Id]{Entry: ent, Sticky: e.sticky.isSticky(id)}
	e.real = SliceInsert(e.real, i, re)
}

// allOtherFeedsLateStoppedEmpty reports whether every feed other than
// except has confirmed its late side is exhausted and holds nothing
// queued - meaning except's own late entries are provably the new
// tail, with no other feed able to interleave ahead of them.
func (e *Engine[Id]) allOtherFeedsLateStoppedEmpty(except *feedState[Id]) bool {
	for _, fs := range e.feeds {
		if fs == except {
			continue
		}
		if fs.lateState != sideStopped || len(fs.lateReserve) != 0 {
			return false
		}
	}
	return true
}
