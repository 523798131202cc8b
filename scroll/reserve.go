package scroll

// sideState tracks the request lifecycle of one side (early/before, or
// late/after) of one feed's reserve.
type sideState int

const (
	// sideInitial means no request has ever been made on this side.
	sideInitial sideState = iota
	// sideFilling means a request is outstanding.
	sideFilling
	// sideSatisfied means the reserve holds enough entries that no
	// request is currently needed.
	sideSatisfied
	// sideStopped means the feed has told us there is nothing further on
	// this side (start or end of history reached).
	sideStopped
)

// feedState is the per-feed bookkeeping the engine keeps: the feed
// itself, and two reserves (early = toward Before, late = toward
// After) of entries the feed has supplied but the engine has not yet
// realized (laid out on screen).
type feedState[Id comparable] struct {
	feed Feed[Id]
	key  FeedKey

	// earlyReserve holds entries before the realized window for this
	// feed, ordered ascending (oldest first, i.e. nearest the realized
	// window is at the back).
	earlyReserve []Entry[Id]
	// lateReserve holds entries after the realized window for this
	// feed, ordered ascending (nearest the realized window is at the
	// front).
	lateReserve []Entry[Id]

	earlyState sideState
	lateState  sideState

	// pendingEarlyPivot/pendingLatePivot record the pivot id an
	// outstanding request was made relative to, so a late response can
	// be checked for staleness against the engine's current state.
	pendingEarlyPivot Id
	pendingLatePivot  Id
}

func newFeedState[Id comparable](f Feed[Id]) *feedState[Id] {
	return &feedState[Id]{
		feed:       f,
		key:        f.Key(),
		earlyState: sideInitial,
		lateState:  sideInitial,
	}
}

// pushEarlyFront merges entries (ascending order) into the early
// reserve, which stays ascending and deduplicated by Id. A plain
// prepend would suffice for well-behaved responses, but a realtime
// notify can race a paginated response for the same feed, so the
// merge is order-safe regardless of which arrives first.
func (fs *feedState[Id]) pushEarlyFront(entries []Entry[Id], less func(a, b Id) bool) {
	fs.earlyReserve = mergeSortedUnique(entries, fs.earlyReserve, less)
}

// pushLateBack merges entries (ascending order) into the late reserve,
// which stays ascending and deduplicated by Id. See pushEarlyFront for
// why this is a merge rather than a blind append.
func (fs *feedState[Id]) pushLateBack(entries []Entry[Id], less func(a, b Id) bool) {
	fs.lateReserve = mergeSortedUnique(fs.lateReserve, entries, less)
}

// popEarlyBack removes and returns the newest (closest to the window)
// entry of the early reserve, i.e. the one to realize next when
// extending the realized window backward.
func (fs *feedState[Id]) popEarlyBack() (Entry[Id], bool) {
	n := len(fs.earlyReserve)
	if n == 0 {
		var zero Entry[Id]
		return zero, false
	}
	e := fs.earlyReserve[n-1]
	fs.earlyReserve = fs.earlyReserve[:n-1]
	return e, true
}

// popLateFront removes and returns the oldest (closest to the window)
// entry of the late reserve, i.e. the one to realize next when
// extending the realized window forward.
func (fs *feedState[Id]) popLateFront() (Entry[Id], bool) {
	if len(fs.lateReserve) == 0 {
		var zero Entry[Id]
		return zero, false
	}
	e := fs.lateReserve[0]
	fs.lateReserve = fs.lateReserve[1:]
	return e, true
}

// pushEarlyBack stashes an entry that was just unrealized off the
// start of the window back onto the early reserve (it becomes the
// nearest-the-window entry again).
func (fs *feedState[Id]) pushEarlyBack(e Entry[Id]) {
	fs.earlyReserve = append(fs.earlyReserve, e)
}

// pushLateFront stashes an entry that was just unrealized off the end
// of the window back onto the late reserve.
func (fs *feedState[Id]) pushLateFront(e Entry[Id]) {
	fs.lateReserve = append([]Entry[Id]{e}, fs.lateReserve...)
}

// truncateEarly drops entries off the far end (oldest) of the early
// reserve down to MaxReserve, since nothing currently scrolling toward
// them needs more than that buffered. A stopped early side becomes
// satisfied again, since the dropped entries still exist in the feed.
func (fs *feedState[Id]) truncateEarly(max int) {
	if len(fs.earlyReserve) <= max {
		return
	}
	drop := len(fs.earlyReserve) - max
	fs.earlyReserve = fs.earlyReserve[drop:]
	if fs.earlyState == sideStopped {
		fs.earlyState = sideSatisfied
	}
}

// truncateLate drops entries off the far end (newest) of the late
// reserve down to MaxReserve, clearing a stopped late side the same
// way truncateEarly does.
func (fs *feedState[Id]) truncateLate(max int) {
	if len(fs.lateReserve) <= max {
		return
	}
	fs.lateReserve = fs.lateReserve[:max]
	if fs.lateState == sideStopped {
		fs.lateState = sideSatisfied
	}
}

// needsEarlyRequest reports whether this feed's early side is below
// MinReserve and not already filling or stopped.
func (fs *feedState[Id]) needsEarlyRequest(min int) bool {
	return fs.earlyState != sideFilling && fs.earlyState != sideStopped && len(fs.earlyReserve) < min
}

// needsLateRequest reports whether this feed's late side is below
// MinReserve and not already filling or stopped.
func (fs *feedState[Id]) needsLateRequest(min int) bool {
	return fs.lateState != sideFilling && fs.lateState != sideStopped && len(fs.lateReserve) < min
}
