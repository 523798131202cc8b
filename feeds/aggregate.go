package feeds

import (
	"context"
	"sync"

	"github.com/andrewbaxter/kwa/scroll"
)

// AggregateFeed fans a request out across N ChannelFeeds and merges
// their responses by id, presenting a single "all channels" unified
// timeline. Grounded in the original client's cross-channel event
// plumbing (world.rs), which the distillation's per-channel feed model
// did not carry over on its own.
type AggregateFeed struct {
	key      scroll.FeedKey
	channels []*ChannelFeed
	handle   scroll.ParentHandle[MessageId]
}

// NewAggregateFeed constructs an AggregateFeed over the given
// channels, identified by key (e.g. "all").
func NewAggregateFeed(key scroll.FeedKey, handle scroll.ParentHandle[MessageId], channels ...*ChannelFeed) *AggregateFeed {
	return &AggregateFeed{key: key, channels: channels, handle: handle}
}

func (a *AggregateFeed) Key() scroll.FeedKey { return a.key }

func (a *AggregateFeed) RequestAround(ctx context.Context, pivot MessageId, n int) {
	a.fanOutAround(func(c *ChannelFeed) ([]scroll.Entry[MessageId], bool, bool) {
		return a.oneAround(ctx, c, pivot, n)
	}, func(merged []scroll.Entry[MessageId], earlyStop, lateStop bool) {
		a.handle.RespondAround(a.key, pivot, merged, earlyStop, lateStop)
	})
}

func (a *AggregateFeed) RequestBefore(ctx context.Context, pivot MessageId, n int) {
	stopped := true
	a.fanOutStop(func(c *ChannelFeed) ([]scroll.Entry[MessageId], bool) {
		return a.oneBefore(ctx, c, pivot, n)
	}, func(merged []scroll.Entry[MessageId], allStop bool) {
		a.handle.RespondBefore(a.key, pivot, merged, allStop)
	}, &stopped)
}

func (a *AggregateFeed) RequestAfter(ctx context.Context, pivot MessageId, n int) {
	stopped := true
	a.fanOutStop(func(c *ChannelFeed) ([]scroll.Entry[MessageId], bool) {
		return a.oneAfter(ctx, c, pivot, n)
	}, func(merged []scroll.Entry[MessageId], allStop bool) {
		a.handle.RespondAfter(a.key, pivot, merged, allStop)
	}, &stopped)
}

func (a *AggregateFeed) oneAround(ctx context.Context, c *ChannelFeed, pivot MessageId, n int) ([]scroll.Entry[MessageId], bool, bool) {
	msgs, earlyStop, lateStop, err := c.store.LoadAround(ctx, c.channel, pivot, n)
	if err != nil {
		return nil, true, true
	}
	return toEntries(msgs), earlyStop, lateStop
}

func (a *AggregateFeed) oneBefore(ctx context.Context, c *ChannelFeed, pivot MessageId, n int) ([]scroll.Entry[MessageId], bool) {
	msgs, stop, err := c.store.LoadBefore(ctx, c.channel, pivot, n)
	if err != nil {
		return nil, true
	}
	return toEntries(msgs), stop
}

func (a *AggregateFeed) oneAfter(ctx context.Context, c *ChannelFeed, pivot MessageId, n int) ([]scroll.Entry[MessageId], bool) {
	msgs, stop, err := c.store.LoadAfter(ctx, c.channel, pivot, n)
	if err != nil {
		return nil, true
	}
	return toEntries(msgs), stop
}

// fanOutAround runs fn concurrently across every channel and merges
// the results by ascending MessageId, AND-combining the early/late
// stop flags across channels the same way fanOutStop does for
// Before/After.
func (a *AggregateFeed) fanOutAround(fn func(*ChannelFeed) ([]scroll.Entry[MessageId], bool, bool), done func(merged []scroll.Entry[MessageId], earlyStop, lateStop bool)) {
	results := make([][]scroll.Entry[MessageId], len(a.channels))
	earlyStops := make([]bool, len(a.channels))
	lateStops := make([]bool, len(a.channels))
	var wg sync.WaitGroup
	for i, c := range a.channels {
		wg.Add(1)
		go func(i int, c *ChannelFeed) {
			defer wg.Done()
			results[i], earlyStops[i], lateStops[i] = fn(c)
		}(i, c)
	}
	wg.Wait()
	allEarlyStop, allLateStop := true, true
	for i := range a.channels {
		if !earlyStops[i] {
			allEarlyStop = false
		}
		if !lateStops[i] {
			allLateStop = false
		}
	}
	done(mergeAll(results), allEarlyStop, allLateStop)
}

func (a *AggregateFeed) fanOutStop(fn func(*ChannelFeed) ([]scroll.Entry[MessageId], bool), done func([]scroll.Entry[MessageId], bool), _ *bool) {
	results := make([][]scroll.Entry[MessageId], len(a.channels))
	stops := make([]bool, len(a.channels))
	var wg sync.WaitGroup
	for i, c := range a.channels {
		wg.Add(1)
		go func(i int, c *ChannelFeed) {
			defer wg.Done()
			results[i], stops[i] = fn(c)
		}(i, c)
	}
	wg.Wait()
	allStop := true
	for _, s := range stops {
		if !s {
			allStop = false
			break
		}
	}
	done(mergeAll(results), allStop)
}

func mergeAll(groups [][]scroll.Entry[MessageId]) []scroll.Entry[MessageId] {
	var all []scroll.Entry[MessageId]
	for _, g := range groups {
		all = append(all, g...)
	}
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].EntryId() < all[j-1].EntryId(); j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	return all
}
