package scroll

import (
	"context"
	"sort"
	"sync"
)

// fakeEntry is the minimal Entry used by scroll's own tests: an int
// id ordered numerically, belonging to a single fake feed.
type fakeEntry struct {
	id  int
	key FeedKey
}

func (f fakeEntry) EntryId() int  { return f.id }
func (f fakeEntry) Feed() FeedKey { return f.key }

func fakeLess(a, b int) bool { return a < b }

// fakeFeed is an in-memory Feed[int] backed by a sorted slice of
// entries, used by scroll's unit and property tests in place of a
// real network/database-backed feed. Every request is answered
// asynchronously from its own goroutine, per the Feed contract.
type fakeFeed struct {
	key FeedKey

	mu      sync.Mutex
	entries []fakeEntry
	handle  ParentHandle[int]
}

func newFakeFeed(key FeedKey, handle ParentHandle[int], ids []int) *fakeFeed {
	f := &fakeFeed{key: key, handle: handle}
	for _, id := range ids {
		f.entries = append(f.entries, fakeEntry{id: id, key: key})
	}
	sort.Slice(f.entries, func(i, j int) bool { return f.entries[i].id < f.entries[j].id })
	return f
}

func (f *fakeFeed) Key() FeedKey { return f.key }

func (f *fakeFeed) add(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, fakeEntry{id: id, key: f.key})
	sort.Slice(f.entries, func(i, j int) bool { return f.entries[i].id < f.entries[j].id })
}

func toEntries(fe []fakeEntry) []Entry[int] {
	out := make([]Entry[int], len(fe))
	for i, e := range fe {
		out[i] = e
	}
	return out
}

func (f *fakeFeed) RequestAround(ctx context.Context, pivot int, n int) {
	go func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		lo := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].id >= pivot-n })
		hi := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].id > pivot+n })
		earlyStop := lo == 0
		lateStop := hi == len(f.entries)
		f.handle.RespondAround(f.key, pivot, toEntries(f.entries[lo:hi]), earlyStop, lateStop)
	}()
}

func (f *fakeFeed) RequestBefore(ctx context.Context, pivot int, n int) {
	go func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		hi := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].id >= pivot })
		lo := hi - n
		stop := false
		if lo <= 0 {
			lo = 0
			stop = true
		}
		f.handle.RespondBefore(f.key, pivot, toEntries(f.entries[lo:hi]), stop)
	}()
}

func (f *fakeFeed) RequestAfter(ctx context.Context, pivot int, n int) {
	go func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		lo := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].id > pivot })
		hi := lo + n
		stop := false
		if hi >= len(f.entries) {
			hi = len(f.entries)
			stop = true
		}
		f.handle.RespondAfter(f.key, pivot, toEntries(f.entries[lo:hi]), stop)
	}()
}
