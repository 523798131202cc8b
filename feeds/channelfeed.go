package feeds

import (
	"context"

	"github.com/andrewbaxter/kwa/async"
	"github.com/andrewbaxter/kwa/scroll"
	"github.com/hashicorp/go-hclog"
)

// ChannelFeed is the per-channel message history scroll.Feed[MessageId],
// grounded in narrowcore's ChannelFeed_: it answers requests from a
// Store and pushes realtime arrivals delivered by a Transport onto the
// engine via NotifyEntryAfter.
type ChannelFeed struct {
	channel string
	store   Store
	sched   async.Scheduler
	handle  scroll.ParentHandle[MessageId]
	log     hclog.Logger

	lastKnown   MessageId
	hasLastKnown bool
}

// NewChannelFeed constructs a ChannelFeed for the given channel. handle
// is obtained from the Engine the feed will be registered with
// (engine.Handle()); sched runs the blocking Store calls off the
// engine loop so RequestAround/Before/After never answer synchronously,
// per the Feed contract.
func NewChannelFeed(channel string, store Store, sched async.Scheduler, handle scroll.ParentHandle[MessageId]) *ChannelFeed {
	return &ChannelFeed{
		channel: channel,
		store:   store,
		sched:   sched,
		handle:  handle,
		log:     hclog.New(&hclog.LoggerOptions{Name: "feeds.channel." + channel}),
	}
}

func (c *ChannelFeed) Key() scroll.FeedKey { return scroll.FeedKey(c.channel) }

func (c *ChannelFeed) RequestAround(ctx context.Context, pivot MessageId, n int) {
	c.sched.Schedule(func() {
		msgs, earlyStop, lateStop, err := c.store.LoadAround(ctx, c.channel, pivot, n)
		if err != nil {
			c.log.Warn("load around failed", "error", err)
			return
		}
		c.handle.RespondAround(c.Key(), pivot, toEntries(msgs), earlyStop, lateStop)
	})
}

func (c *ChannelFeed) RequestBefore(ctx context.Context, pivot MessageId, n int) {
	c.sched.Schedule(func() {
		msgs, stop, err := c.store.LoadBefore(ctx, c.channel, pivot, n)
		if err != nil {
			c.log.Warn("load before failed", "error", err)
			return
		}
		c.handle.RespondBefore(c.Key(), pivot, toEntries(msgs), stop)
	})
}

func (c *ChannelFeed) RequestAfter(ctx context.Context, pivot MessageId, n int) {
	c.sched.Schedule(func() {
		msgs, stop, err := c.store.LoadAfter(ctx, c.channel, pivot, n)
		if err != nil {
			c.log.Warn("load after failed", "error", err)
			return
		}
		if len(msgs) > 0 {
			c.lastKnown = msgs[len(msgs)-1].Id
			c.hasLastKnown = true
		}
		c.handle.RespondAfter(c.Key(), pivot, toEntries(msgs), stop)
	})
}

// Notify delivers a realtime message arrival (from feeds/transport) to
// the engine, exactly as narrowcore's ChannelFeed_::notify calls
// parent.notify_entry_after.
func (c *ChannelFeed) Notify(msg *Message) {
	c.handle.NotifyEntryAfter(c.Key(), c.lastKnown, c.hasLastKnown, msg)
	c.lastKnown = msg.Id
	c.hasLastKnown = true
}

func toEntries(msgs []*Message) []scroll.Entry[MessageId] {
	out := make([]scroll.Entry[MessageId], len(msgs))
	for i, m := range msgs {
		out[i] = m
	}
	return out
}
