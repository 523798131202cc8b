package scroll

import "testing"

// Invariant 2: the realized list is strictly sorted by id at all
// times.
func TestInvariantRealizedStrictlySorted(t *testing.T) {
	e, _ := newBoundaryEngine(t)
	defer e.Close()
	e.Jump(500, AlignCenter)
	e.Resize(boundaryFrameHeight)
	waitFor(t, func() bool { return len(e.Snapshot().Real) > 0 })
	settle(t, e)

	snap := e.Snapshot()
	for i := 1; i < len(snap.Real); i++ {
		if !fakeLess(snap.Real[i-1].Entry.EntryId(), snap.Real[i].Entry.EntryId()) {
			t.Fatalf("realized list not strictly sorted at index %d", i)
		}
	}
}

// Invariant 4: reserves never exceed MaxReserve.
func TestInvariantReserveCaps(t *testing.T) {
	e, _ := newBoundaryEngine(t)
	defer e.Close()
	e.Jump(500, AlignCenter)
	e.Resize(boundaryFrameHeight)
	waitFor(t, func() bool { return len(e.Snapshot().Real) > 0 })
	settle(t, e)

	fs := e.feeds["history"]
	if len(fs.earlyReserve) > e.cfg.MaxReserve || len(fs.lateReserve) > e.cfg.MaxReserve {
		t.Fatalf("reserve exceeded cap: early=%d late=%d max=%d", len(fs.earlyReserve), len(fs.lateReserve), e.cfg.MaxReserve)
	}
}

// Invariant 6: anchor is unset iff the realized list is empty.
func TestInvariantAnchorEmptyIffNoRealized(t *testing.T) {
	var a anchor[int]
	if a.hasId {
		t.Fatal("zero-value anchor should have no id")
	}
	a.set(1, AlignStart)
	if !a.hasId {
		t.Fatal("anchor should have an id after set")
	}
	a.clear()
	if a.hasId {
		t.Fatal("anchor should have no id after clear")
	}
}

// Invariant 7: anchor offset stays within [-h*align, h*(1-align)] of
// the anchor's own height once a reanchor has run; checked here only
// indirectly, as reanchor choosing the single realized entry whose
// span holds the target position. The offset itself is not asserted.
func TestInvariantAnchorOffsetWithinEntrySpan(t *testing.T) {
	a := &anchor[int]{align: AlignCenter}
	real := []RealizedEntry[int]{
		{Entry: fakeEntry{id: 1}, Height: 20},
	}
	reanchor(a, real, []float64{0}, 10)
	if a.id != 1 {
		t.Fatalf("expected single-entry window to anchor on it, got %d", a.id)
	}
}

// Round-trip law: jumping to an id already realized and anchored is
// idempotent - the anchor does not move.
func TestRoundTripJumpIdempotent(t *testing.T) {
	e, _ := newBoundaryEngine(t)
	defer e.Close()
	e.Jump(500, AlignCenter)
	e.Resize(boundaryFrameHeight)
	waitFor(t, func() bool { return len(e.Snapshot().Real) > 0 })
	settle(t, e)

	before := e.Snapshot()
	e.Jump(500, AlignCenter)
	waitFor(t, func() bool {
		snap := e.Snapshot()
		return snap.HasAnchor && snap.AnchorId == 500
	})
	settle(t, e)
	after := e.Snapshot()
	if after.AnchorId != before.AnchorId || after.Align != before.Align {
		t.Fatalf("jump to current anchor was not idempotent: before=%+v after=%+v", before, after)
	}
}

// Round-trip law: clearing one sticky id must not disturb another
// that is still pinned, and must drop it from whichever holding area
// it was stashed into.
func TestRoundTripStickySetThenClear(t *testing.T) {
	s := newStickySet[int]()
	s.set(fakeEntry{id: 1})
	s.set(fakeEntry{id: 2})
	if !s.isSticky(1) || !s.isSticky(2) {
		t.Fatal("expected ids 1 and 2 to be sticky after set")
	}
	s.stashEarly(fakeEntry{id: 1})
	s.stashLate(fakeEntry{id: 2})

	s.clear(1)
	if s.isSticky(1) {
		t.Fatal("expected id 1 to no longer be sticky after clear")
	}
	for _, e := range s.earlyHolding {
		if e.EntryId() == 1 {
			t.Fatal("expected id 1 to be dropped from earlyHolding after clear")
		}
	}
	if !s.isSticky(2) {
		t.Fatal("clearing id 1 must not unpin id 2")
	}
	found := false
	for _, e := range s.lateHolding {
		if e.EntryId() == 2 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected id 2 to remain in lateHolding after clearing id 1")
	}
}
