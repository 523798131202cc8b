package feeds

import (
	"context"
	"sync"
	"time"

	"github.com/andrewbaxter/kwa/scroll"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// OutboxDB is the persistence backend for locally-queued outgoing
// messages, implemented by feeds/outboxdb against modernc.org/sqlite.
type OutboxDB interface {
	Save(ctx context.Context, m *Message) error
	Delete(ctx context.Context, id MessageId) error
	LoadAll(ctx context.Context) ([]*Message, error)
}

// Sender actually transmits a queued message to the server, returning
// the server-assigned id on success.
type Sender interface {
	Send(ctx context.Context, channel string, text string) (MessageId, error)
}

// OutboxFeed is the scroll.Feed[MessageId] over locally-queued,
// not-yet-confirmed outgoing messages, grounded in narrowcore's
// OutboxFeed_: a send is visible in the realized window the instant it
// is queued (NotifyEntryAfter, no round trip). Once the server
// confirms it, it is dropped from the pending list and the outbox
// database, so later requests no longer return it; a copy the engine
// already holds is not withdrawn (the confirmed copy arrives through
// the channel's own ChannelFeed).
type OutboxFeed struct {
	db     OutboxDB
	sender Sender
	handle scroll.ParentHandle[MessageId]
	log    hclog.Logger

	mu      sync.Mutex
	pending []*Message
}

// NewOutboxFeed constructs an OutboxFeed persisted to db and flushed
// through sender.
func NewOutboxFeed(db OutboxDB, sender Sender, handle scroll.ParentHandle[MessageId]) *OutboxFeed {
	return &OutboxFeed{
		db:     db,
		sender: sender,
		handle: handle,
		log:    hclog.New(&hclog.LoggerOptions{Name: "feeds.outbox"}),
	}
}

func (o *OutboxFeed) Key() scroll.FeedKey { return scroll.FeedKey("outbox") }

// Enqueue queues text for sending to channel, displaying it
// immediately with StatusPending, and kicks off a background send.
func (o *OutboxFeed) Enqueue(ctx context.Context, channel, text string) *Message {
	id := NewMessageId(int64(uuid.New().ID()))
	msg := &Message{
		Id:      id,
		FeedKey: o.Key(),
		Sender:  "me",
		SentAt:  time.Now(),
		Local:   true,
		Status:  StatusPending,
	}
	msg.Text = newText(text)

	o.mu.Lock()
	last, hasLast := o.lastPending()
	o.pending = append(o.pending, msg)
	o.mu.Unlock()

	if err := o.db.Save(ctx, msg); err != nil {
		o.log.Warn("persisting outbox entry failed", "error", err)
	}
	// notify_local: visible before any network round trip.
	o.handle.NotifyEntryAfter(o.Key(), last, hasLast, msg)

	go o.flush(context.Background(), msg)
	return msg
}

func (o *OutboxFeed) lastPending() (MessageId, bool) {
	if len(o.pending) == 0 {
		return 0, false
	}
	return o.pending[len(o.pending)-1].Id, true
}

func (o *OutboxFeed) flush(ctx context.Context, msg *Message) {
	_, err := o.sender.Send(ctx, string(msg.FeedKey), msg.Text.Get())
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		msg.Status = StatusFailed
		o.log.Warn("send failed, leaving in outbox", "id", msg.Id, "error", err)
		return
	}
	// The confirmed message arrives via the channel's own ChannelFeed
	// once the server echoes it back; this local copy is no longer
	// needed.
	for i, m := range o.pending {
		if m.Id == msg.Id {
			o.pending = scroll.SliceRemove(o.pending, i)
			break
		}
	}
	if err := o.db.Delete(ctx, msg.Id); err != nil {
		o.log.Warn("removing confirmed outbox entry failed", "error", err)
	}
}

func (o *OutboxFeed) RequestAround(ctx context.Context, pivot MessageId, n int) {
	o.mu.Lock()
	entries := toEntries(append([]*Message{}, o.pending...))
	o.mu.Unlock()
	// The outbox always holds its complete pending set in memory, so
	// both ends are reached within whatever range is returned.
	go o.handle.RespondAround(o.Key(), pivot, entries, true, true)
}

func (o *OutboxFeed) RequestBefore(ctx context.Context, pivot MessageId, n int) {
	go o.handle.RespondBefore(o.Key(), pivot, nil, true)
}

func (o *OutboxFeed) RequestAfter(ctx context.Context, pivot MessageId, n int) {
	o.mu.Lock()
	var rest []scroll.Entry[MessageId]
	for _, m := range o.pending {
		if m.Id > pivot {
			rest = append(rest, m)
		}
	}
	o.mu.Unlock()
	go o.handle.RespondAfter(o.Key(), pivot, rest, true)
}
