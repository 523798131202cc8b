package scroll

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func reportAll[Id comparable](e *Engine[Id], height float64) {
	snap := e.Snapshot()
	for _, re := range snap.Real {
		e.ReportHeight(re.Entry.EntryId(), height)
	}
}

func TestEngineInitialRealize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScrollDebounce = 0
	e := New[int](cfg, fakeLess)
	feed := newFakeFeed("history", e.Handle(), rangeInts(0, 1000))
	e.AddFeed(feed)

	e.Jump(500, AlignCenter)
	e.Resize(400)

	waitFor(t, func() bool {
		snap := e.Snapshot()
		return len(snap.Real) > 0
	})
	for i := 0; i < 5; i++ {
		reportAll[int](e, 20)
		e.Resize(400)
		time.Sleep(20 * time.Millisecond)
	}
	snap := e.Snapshot()
	if !snap.HasAnchor || snap.AnchorId != 500 {
		t.Fatalf("expected anchor 500, got %+v", snap)
	}
	e.Close()
}

func rangeInts(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}
