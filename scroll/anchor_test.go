package scroll

import "testing"

func TestAnchorSetClear(t *testing.T) {
	var a anchor[int]
	a.set(42, AlignCenter)
	if !a.hasId || a.id != 42 || a.align != AlignCenter || a.offsetPx != 0 {
		t.Fatalf("unexpected anchor after set: %+v", a)
	}
	a.addOffset(12.5)
	if a.offsetPx != 12.5 {
		t.Fatalf("offsetPx = %v, want 12.5", a.offsetPx)
	}
	a.clear()
	if a.hasId {
		t.Fatal("expected hasId false after clear")
	}
}

func TestAnchorTransition(t *testing.T) {
	var a anchor[int]
	a.set(1, AlignStart)
	a.beginTransition(AlignEnd)
	if !a.transitioning {
		t.Fatal("expected transitioning true")
	}
	// Old ref (top-aligned) at pixel 0, new ref (bottom-aligned, entry
	// height 20) would sit at pixel 20: switching alignment must not
	// move content, so offset absorbs the 20px difference.
	a.transitionAlignment(0, 20)
	if a.transitioning {
		t.Fatal("expected transitioning false after completion")
	}
	if a.align != AlignEnd {
		t.Fatalf("align = %v, want AlignEnd", a.align)
	}
	if a.offsetPx != -20 {
		t.Fatalf("offsetPx = %v, want -20", a.offsetPx)
	}
}

func TestReanchorPicksNearestEntry(t *testing.T) {
	a := &anchor[int]{align: AlignStart}
	real := []RealizedEntry[int]{
		{Entry: fakeEntry{id: 1}, Height: 20},
		{Entry: fakeEntry{id: 2}, Height: 20},
		{Entry: fakeEntry{id: 3}, Height: 20},
	}
	tops := []float64{0, 20, 40}
	reanchor(a, real, tops, 25)
	if a.id != 2 {
		t.Fatalf("reanchor picked id %d, want 2", a.id)
	}
}
