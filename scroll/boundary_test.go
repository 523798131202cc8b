package scroll

import (
	"testing"
	"time"
)

const (
	boundaryEntryHeight = 20.0
	boundaryFrameHeight = 400.0
)

func newBoundaryEngine(t *testing.T) (*Engine[int], *fakeFeed) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ScrollDebounce = 0
	e := New[int](cfg, fakeLess)
	feed := newFakeFeed("history", e.Handle(), rangeInts(0, 1000))
	e.AddFeed(feed)
	return e, feed
}

func settle(t *testing.T, e *Engine[int]) {
	t.Helper()
	for i := 0; i < 10; i++ {
		reportAll[int](e, boundaryEntryHeight)
		time.Sleep(15 * time.Millisecond)
	}
}

// Cold start, single feed, 1000 entries, reset at id 500: the window
// settles with 500 as anchor and at least two realized entries around
// it, in strictly ascending id order.
func TestBoundaryColdStartSingleFeed(t *testing.T) {
	e, _ := newBoundaryEngine(t)
	defer e.Close()
	e.Jump(500, AlignCenter)
	e.Resize(boundaryFrameHeight)
	waitFor(t, func() bool { return len(e.Snapshot().Real) > 0 })
	settle(t, e)

	snap := e.Snapshot()
	if !snap.HasAnchor || snap.AnchorId != 500 {
		t.Fatalf("anchor = %+v, want id 500", snap)
	}
	if len(snap.Real) < 2 {
		t.Fatalf("expected a realized window around the anchor, got %d entries", len(snap.Real))
	}
	for i, re := range snap.Real {
		if i == 0 {
			continue
		}
		if re.Entry.EntryId() <= snap.Real[i-1].Entry.EntryId() {
			t.Fatalf("realized list not strictly ascending at %d", i)
		}
	}
}

// Two interleaved feeds (evens and odds) reset at id 500: the merged
// realized list must strictly alternate by id regardless of which
// feed each entry came from.
func TestBoundaryInterleave(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScrollDebounce = 0
	e := New[int](cfg, fakeLess)
	var evens, odds []int
	for i := 0; i < 1000; i += 2 {
		evens = append(evens, i)
	}
	for i := 1; i < 1000; i += 2 {
		odds = append(odds, i)
	}
	feedA := newFakeFeed("A", e.Handle(), evens)
	feedB := newFakeFeed("B", e.Handle(), odds)
	e.AddFeed(feedA)
	e.AddFeed(feedB)
	defer e.Close()

	e.Jump(500, AlignCenter)
	e.Resize(boundaryFrameHeight)
	waitFor(t, func() bool { return len(e.Snapshot().Real) > 1 })
	settle(t, e)

	snap := e.Snapshot()
	for i := 1; i < len(snap.Real); i++ {
		prev, cur := snap.Real[i-1].Entry.EntryId(), snap.Real[i].Entry.EntryId()
		if cur != prev+1 {
			t.Fatalf("realized list not strictly sequential at %d: %d -> %d", i, prev, cur)
		}
	}
}

// Pushing more than MaxReserve entries into a late reserve must
// truncate it back down to MaxReserve.
func TestBoundaryCapOverflow(t *testing.T) {
	cfg := DefaultConfig()
	fs := newFeedState[int](noopFeed{key: "k"})
	fs.lateState = sideFilling
	var entries []Entry[int]
	for i := 0; i < 200; i++ {
		entries = append(entries, fakeEntry{id: i, key: "k"})
	}
	fs.pushLateBack(entries, fakeLess)
	fs.truncateLate(cfg.MaxReserve)
	if len(fs.lateReserve) != cfg.MaxReserve {
		t.Fatalf("lateReserve len = %d, want %d", len(fs.lateReserve), cfg.MaxReserve)
	}
}

// A respondAfter that answers stop=true with zero new entries must
// still have its stop flag downgraded if a realtime notify raced ahead
// and appended something past the pivot into the late reserve while
// the response was in flight - otherwise the feed would be marked
// stopped despite the notified entry proving more exists.
func TestBoundaryNotifyRace(t *testing.T) {
	cfg := DefaultConfig()
	e := New[int](cfg, fakeLess)
	defer e.Close()
	fs := newFeedState[int](noopFeed{key: "A"})
	fs.lateState = sideFilling
	fs.pendingLatePivot = 1000
	e.feeds["A"] = fs
	e.real = []RealizedEntry[int]{{Entry: fakeEntry{id: 1000, key: "A"}, Height: boundaryEntryHeight}}

	e.applyNotify(feedNotify[int]{feed: "A", after: 1000, hasAfter: true, entry: fakeEntry{id: 1001, key: "A"}})
	e.applyResponse(feedResponse[int]{feed: "A", dir: After, pivot: 1000, entries: nil, stop: true})

	if fs.lateState == sideStopped {
		t.Fatal("lateState must be downgraded when a notify raced ahead of a stop=true, zero-entry response")
	}
	if len(fs.lateReserve) != 1 || fs.lateReserve[0].EntryId() != 1001 {
		t.Fatalf("expected notified entry 1001 preserved in lateReserve, got %+v", fs.lateReserve)
	}
}

// An entry marked sticky while it is only reserved (not yet realized)
// must be stashed into the matching holding area right away, reused
// (not duplicated) once ordinary scrolling realizes it, and dropped
// from holding at that point; clearing it afterward must fully unpin
// it.
func TestBoundaryStickyReserveCrossesIntoHolding(t *testing.T) {
	e, _ := newBoundaryEngine(t)
	defer e.Close()
	e.Jump(500, AlignCenter)
	e.Resize(boundaryFrameHeight)
	waitFor(t, func() bool { return len(e.Snapshot().Real) > 0 })
	settle(t, e)

	fs := e.feeds["history"]
	if len(fs.earlyReserve) == 0 {
		t.Fatal("expected a non-empty earlyReserve to pick a sticky candidate from")
	}
	id := fs.earlyReserve[len(fs.earlyReserve)-1].EntryId()

	e.SetSticky("history", id)
	waitFor(t, func() bool { return e.sticky.isSticky(id) })

	held := false
	for _, he := range e.sticky.earlyHolding {
		if he.EntryId() == id {
			held = true
		}
	}
	if !held {
		t.Fatalf("expected reserved entry %d to be stashed into earlyHolding immediately on SetSticky", id)
	}

	// Scroll backward (toward Before) until id re-enters the realized
	// window through ordinary extension.
	for i := 0; i < 20; i++ {
		e.Scroll(-2000)
		reportAll[int](e, boundaryEntryHeight)
		time.Sleep(15 * time.Millisecond)
		snap := e.Snapshot()
		found := false
		for _, re := range snap.Real {
			if re.Entry.EntryId() == id {
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	settle(t, e)

	snap := e.Snapshot()
	var realized *RealizedEntry[int]
	for i := range snap.Real {
		if snap.Real[i].Entry.EntryId() == id {
			realized = &snap.Real[i]
			break
		}
	}
	if realized == nil {
		t.Fatalf("entry %d never re-entered the realized window; test didn't scroll far enough", id)
	}
	if !realized.Sticky {
		t.Fatalf("entry %d realized but not marked Sticky", id)
	}
	for _, he := range e.sticky.earlyHolding {
		if he.EntryId() == id {
			t.Fatalf("entry %d still present in earlyHolding after being realized", id)
		}
	}

	e.ClearSticky(id)
	waitFor(t, func() bool { return !e.sticky.isSticky(id) })
}

// Jumping to an id not currently realized must reset every feed's
// reserve state to Initial, so a stale in-flight response for the
// previous anchor is recognized as stale when it eventually arrives.
func TestBoundaryJumpDiscardsStaleState(t *testing.T) {
	e, _ := newBoundaryEngine(t)
	defer e.Close()
	e.Jump(500, AlignCenter)
	waitFor(t, func() bool { return len(e.Snapshot().Real) > 0 })
	settle(t, e)

	e.Jump(42, AlignCenter)
	waitFor(t, func() bool {
		snap := e.Snapshot()
		return snap.HasAnchor && snap.AnchorId == 42
	})
	settle(t, e)
	snap := e.Snapshot()
	for _, re := range snap.Real {
		if re.Entry.EntryId() < 0 || re.Entry.EntryId() > 999 {
			t.Fatalf("unexpected entry in realized window after jump: %d", re.Entry.EntryId())
		}
	}
}
