package scroll

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// feedResponse is an event carrying a Feed's answer to a prior
// request, submitted via ParentHandle.
type feedResponse[Id comparable] struct {
	feed    FeedKey
	dir     Direction // around, Before, or After
	pivot   Id
	entries []Entry[Id]
	stop    bool // meaningful for dir == Before or After
	// earlyStop/lateStop are meaningful for dir == around only.
	earlyStop, lateStop bool
}

// feedNotify is an event carrying a realtime new-entry notification.
type feedNotify[Id comparable] struct {
	feed     FeedKey
	after    Id
	hasAfter bool
	entry    Entry[Id]
}

// scrollDelta is an event carrying a user-driven scroll of deltaPx
// pixels (positive toward After).
type scrollDelta struct {
	deltaPx   float64
	userDrive bool
}

// resizeEvent is an event carrying a new viewport height in pixels.
type resizeEvent struct {
	heightPx float64
}

// reportHeightEvent carries a newly measured height for a realized
// entry, from the host's layout pass.
type reportHeightEvent[Id comparable] struct {
	id     Id
	height float64
}

// jumpEvent asks the engine to discard its current realized window and
// reanchor on a specific entry.
type jumpEvent[Id comparable] struct {
	id    Id
	align Alignment
}

// setStickyEvent pins a single entry, identified by its owning feed
// and id, to stay visible when scrolled out of the realized window.
type setStickyEvent[Id comparable] struct {
	feed FeedKey
	id   Id
}

// clearStickyEvent unpins a single entry previously marked sticky.
type clearStickyEvent[Id comparable] struct {
	id Id
}

type closeEvent struct{}

// addFeedEvent registers a new feed with the engine loop. Feeds are
// added this way, rather than only via New's variadic argument,
// because constructing a feed typically requires a ParentHandle to
// the engine, which in turn requires the engine to already exist.
type addFeedEvent[Id comparable] struct {
	feed Feed[Id]
}

// Engine is the multi-feed scroll engine. All mutable state is owned
// by a single internal goroutine (the engine loop); every public
// method submits an event and returns, matching the teacher's
// list/async.go pattern of one owning goroutine draining a channel of
// heterogeneous values rather than guarding state with a mutex.
type Engine[Id comparable] struct {
	cfg  EngineConfig
	log  hclog.Logger
	less func(a, b Id) bool

	events chan any

	closeOnce sync.Once
	done      chan struct{}

	// snapshot is the latest published view of the realized window,
	// read by hosts via Snapshot. Swapped atomically by the
	// engine loop under snapMu so Layout doesn't block on the loop.
	snapMu sync.RWMutex
	snap   Snapshot[Id]

	// --- state owned exclusively by the engine loop goroutine below ---
	feeds     map[FeedKey]*feedState[Id]
	real      []RealizedEntry[Id]
	anchorSt  anchor[Id]
	sticky    *stickySet[Id]
	viewport  float64
	paddingPre, paddingPost float64

	shakeTimer   *time.Timer
	shakePending bool
	scrolling    bool
}

// Snapshot is the read-only view of the engine's realized window a
// host uses to lay out the visible elements.
type Snapshot[Id comparable] struct {
	Real     []RealizedEntry[Id]
	// Tops holds, for each index of Real, its top-edge pixel position
	// relative to the anchor entry's own top edge at 0 - the same
	// values shakeNow computes internally, exposed so a host can lay
	// out the window without re-deriving them.
	Tops      []float64
	AnchorId  Id
	HasAnchor bool
	Align     Alignment
	OffsetPx  float64
}

// New constructs an Engine coordinating the given feeds. less must
// impose a total order consistent across every feed's entries.
func New[Id comparable](cfg EngineConfig, less func(a, b Id) bool, feeds ...Feed[Id]) *Engine[Id] {
	e := &Engine[Id]{
		cfg:    cfg,
		log:    newLogger(),
		less:   less,
		events: make(chan any, 64),
		done:   make(chan struct{}),
		feeds:  make(map[FeedKey]*feedState[Id]),
		sticky: newStickySet[Id](),
	}
	for _, f := range feeds {
		e.feeds[f.Key()] = newFeedState[Id](f)
	}
	go e.loop()
	return e
}

// Handle returns a ParentHandle feeds use to deliver responses and
// notifications back to this engine.
func (e *Engine[Id]) Handle() ParentHandle[Id] {
	return newParentHandle(e)
}

func (e *Engine[Id]) submit(ev any) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

// Scroll reports a user-driven scroll of deltaPx pixels (positive
// toward After/down).
func (e *Engine[Id]) Scroll(deltaPx float64) { e.submit(scrollDelta{deltaPx: deltaPx, userDrive: true}) }

// Resize reports a new viewport height in pixels.
func (e *Engine[Id]) Resize(heightPx float64) { e.submit(resizeEvent{heightPx: heightPx}) }

// ReportHeight records the measured height of a realized entry from
// the host's last layout pass.
func (e *Engine[Id]) ReportHeight(id Id, height float64) {
	e.submit(reportHeightEvent[Id]{id: id, height: height})
}

// Jump discards the current realized window and reanchors on id at
// the given alignment, requesting fresh surrounding entries from every
// feed. Used for "jump to message" / "jump to unread" navigation.
func (e *Engine[Id]) Jump(id Id, align Alignment) { e.submit(jumpEvent[Id]{id: id, align: align}) }

// SetSticky pins the entry identified by (feedKey, id) so it stays
// visible even once scrolled out of the realized window.
func (e *Engine[Id]) SetSticky(feedKey FeedKey, id Id) {
	e.submit(setStickyEvent[Id]{feed: feedKey, id: id})
}

// ClearSticky unpins a single entry previously marked sticky via
// SetSticky, leaving any other pinned entries untouched.
func (e *Engine[Id]) ClearSticky(id Id) {
	e.submit(clearStickyEvent[Id]{id: id})
}

// AddFeed registers an additional feed with the running engine. The
// feed's own Key must be unique among those already registered.
func (e *Engine[Id]) AddFeed(feed Feed[Id]) { e.submit(addFeedEvent[Id]{feed: feed}) }

// SetPaddingPre/SetPaddingPost record fixed leading/trailing padding
// (e.g. a composer bar); zero by default. The values are only stored:
// shakeNow does not read them, so they do not affect the buffer math.
func (e *Engine[Id]) SetPaddingPre(px float64)  { e.paddingPre = px }
func (e *Engine[Id]) SetPaddingPost(px float64) { e.paddingPost = px }

// Snapshot returns the current realized window for layout. Safe to
// call from any goroutine (typically the UI/layout goroutine).
func (e *Engine[Id]) Snapshot() Snapshot[Id] {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

// Close stops the engine loop. ParentHandle calls made after Close
// silently no-op (see feed.go).
func (e *Engine[Id]) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})
}

func (e *Engine[Id]) publish() {
	tops := e.measureTops()
	e.snapMu.Lock()
	e.snap = Snapshot[Id]{
		Real:      append([]RealizedEntry[Id]{}, e.real...),
		Tops:      tops,
		AnchorId:  e.anchorSt.id,
		HasAnchor: e.anchorSt.hasId,
		Align:     e.anchorSt.align,
		OffsetPx:  e.anchorSt.offsetPx,
	}
	e.snapMu.Unlock()
}

// loop is the engine's single owning goroutine: it drains events,
// applies them to the loop-local state above, and schedules shakeNow
// per the debounce rules in spec.md §4.2.
func (e *Engine[Id]) loop() {
	defer func() {
		if e.shakeTimer != nil {
			e.shakeTimer.Stop()
		}
	}()
	var shakeC <-chan time.Time
	for {
		select {
		case <-e.done:
			return
		case ev := <-e.events:
			e.apply(ev)
			if e.shakePending {
				delay := e.cfg.IdleDebounce
				if e.scrolling {
					delay = e.cfg.ScrollDebounce
				}
				if delay <= 0 {
					e.shakeNow()
					e.shakePending = false
				} else if e.shakeTimer == nil {
					e.shakeTimer = time.NewTimer(delay)
					shakeC = e.shakeTimer.C
				}
			}
		case <-shakeC:
			e.shakeTimer = nil
			shakeC = nil
			e.shakeNow()
			e.shakePending = false
			e.scrolling = false
		}
	}
}

func (e *Engine[Id]) apply(ev any) {
	switch v := ev.(type) {
	case scrollDelta:
		e.anchorSt.addOffset(v.deltaPx)
		e.scrolling = v.userDrive
		e.shakePending = true
	case resizeEvent:
		e.viewport = v.heightPx
		e.shakePending = true
	case reportHeightEvent[Id]:
		e.applyHeight(v.id, v.height)
		e.shakePending = true
	case jumpEvent[Id]:
		e.applyJump(v)
		e.shakePending = true
	case setStickyEvent[Id]:
		e.applySetSticky(v)
		e.shakePending = true
	case clearStickyEvent[Id]:
		e.applyClearSticky(v.id)
		e.shakePending = true
	case feedResponse[Id]:
		e.applyResponse(v)
		e.shakePending = true
	case feedNotify[Id]:
		e.applyNotify(v)
		e.shakePending = true
	case addFeedEvent[Id]:
		e.feeds[v.feed.Key()] = newFeedState[Id](v.feed)
		e.shakePending = true
	}
}

func (e *Engine[Id]) applyHeight(id Id, height float64) {
	for i := range e.real {
		if e.real[i].Entry.EntryId() == id {
			e.real[i].Height = height
			return
		}
	}
}

// reqCtx is the context passed to Feed request calls. The engine
// itself never cancels in-flight requests on a timer; cancellation
// happens implicitly via pivot-staleness checks on the response.
func (e *Engine[Id]) reqCtx() context.Context { return context.Background() }
