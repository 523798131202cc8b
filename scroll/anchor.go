package scroll

// anchor is the engine's logical scroll position: which realized entry
// is pinned, at what alignment along the viewport, and how far (in
// pixels) the pin is offset from that alignment point. Scrolling
// changes offset; everything else (realize/unrealize, resize) is
// reconciled by re-deriving index/offset so the same logical position
// stays visually stable (the "reanchor" step).
type anchor[Id comparable] struct {
	// id is the entry currently anchored, if any. The zero Id with
	// hasId false means the realized window is empty (no anchor yet).
	id    Id
	hasId bool
	// align is where along the viewport the anchor entry's reference
	// edge sits: 0 = top, 1 = bottom, 0.5 = center.
	align Alignment
	// offsetPx is the pixel distance from the aligned position to the
	// anchor entry's actual reference edge; driven by scroll deltas and
	// re-derived relative to the newly chosen anchor entry after each
	// reanchor in shakeNow.
	offsetPx float64

	// targetAlign, when transitioning is true, is the alignment the
	// engine is moving toward (see transitionAlignment below). A jump
	// does not start a transition: applyJump sets the new alignment
	// directly through set.
	transitioning bool
	targetAlign   Alignment
}

// set pins the anchor to id at the given alignment with zero offset,
// discarding any in-flight transition.
func (a *anchor[Id]) set(id Id, align Alignment) {
	a.id = id
	a.hasId = true
	a.align = align
	a.offsetPx = 0
	a.transitioning = false
}

// clear removes the anchor entirely (empty realized window).
func (a *anchor[Id]) clear() {
	var zero Id
	a.id = zero
	a.hasId = false
	a.offsetPx = 0
	a.transitioning = false
}

// addOffset applies a scroll delta (positive = content moves up, i.e.
// scrolling toward After) to the anchor's pixel offset.
func (a *anchor[Id]) addOffset(deltaPx float64) {
	a.offsetPx += deltaPx
}

// beginTransition starts an alignment change toward target, to be
// completed by transitionAlignment once a new reference edge position
// has been measured at the target alignment.
func (a *anchor[Id]) beginTransition(target Alignment) {
	if a.align == target {
		return
	}
	a.transitioning = true
	a.targetAlign = target
}

// transitionAlignment completes an in-flight alignment change: refPx
// is the anchor entry's reference-edge position measured at the OLD
// alignment, targetRefPx the same edge's position that the NEW
// alignment implies. The difference becomes the new offset, so the
// switch introduces no visual jump; see spec.md §4.4.
func (a *anchor[Id]) transitionAlignment(refPx, targetRefPx float64) {
	if !a.transitioning {
		return
	}
	a.align = a.targetAlign
	a.offsetPx += refPx - targetRefPx
	a.transitioning = false
}

// reanchor recomputes the anchor to point at whichever realized entry
// now sits nearest the old reference-edge pixel position, after the
// realized window has been spliced (entries added/removed at either
// end). real is the up-to-date realized list (ascending order), tops
// is the top-edge pixel position of each entry in real (same
// indexing), oldRefPx was the reference pixel position before the
// splice. This mirrors the Rust source's reanchor(): identity is
// derived from position, not carried through the splice, because
// realize/unrealize can change which entries exist at all.
func reanchor[Id comparable](a *anchor[Id], real []RealizedEntry[Id], tops []float64, oldRefPx float64) {
	if len(real) == 0 {
		a.clear()
		return
	}
	best := 0
	bestDist := -1.0
	for i, top := range tops {
		h := real[i].Height
		ref := top + h*float64(a.align)
		dist := ref - oldRefPx
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	a.id = real[best].Entry.EntryId()
	a.hasId = true
}

// RealizedEntry is one entry the engine currently has laid out, with
// its last-measured height. Heights are always observed (from the
// host's layout pass), never predicted, per spec.md §9.
type RealizedEntry[Id comparable] struct {
	Entry  Entry[Id]
	Height float64
	// Sticky is true if this realized entry is presented because it is
	// pinned by the sticky set rather than because it is in the normal
	// scroll order window.
	Sticky bool
}
