// Package feeds implements the concrete scroll.Feed sources for a chat
// client: per-channel message history backed by storage, a local
// outbox of unsent messages, and an aggregate fan-out across channels.
// Grounded in the original chat client's narrowcore message/outbox
// feed implementations.
package feeds

import (
	"time"

	"github.com/andrewbaxter/kwa/observe"
	"github.com/andrewbaxter/kwa/scroll"
)

// MessageId orders messages by arrival: the high bits are a Unix
// millisecond timestamp, the low bits a per-millisecond sequence, so
// ids sort chronologically even across channels without a shared
// counter. Locally-queued (not yet server-confirmed) messages use a
// MessageId minted from the local clock; OutboxFeed keeps that id and
// does not take over the one the server assigns.
type MessageId int64

// Less is the total order scroll.Engine requires; MessageId already
// sorts numerically, but the func is kept as a named value so it can
// be passed directly to scroll.New and so any future id encoding
// change has one place to adjust.
func Less(a, b MessageId) bool { return a < b }

// NewMessageId mints an id for the current instant, suitable for a
// locally-queued outbox entry that has no server-assigned id yet.
func NewMessageId(seq int64) MessageId {
	return MessageId(time.Now().UnixMilli())<<20 | MessageId(seq&((1<<20)-1))
}

// Message is one chat message, realized as a scroll.Entry.
type Message struct {
	Id       MessageId
	FeedKey  scroll.FeedKey
	Sender   string
	Text     *observe.Prim[string]
	SentAt   time.Time
	Local    bool
	Status   SendStatus
}

// SendStatus is the delivery state of a locally-authored message.
type SendStatus int

const (
	StatusSent SendStatus = iota
	StatusPending
	StatusFailed
)

func (m *Message) EntryId() MessageId   { return m.Id }
func (m *Message) Feed() scroll.FeedKey { return m.FeedKey }

func newText(s string) *observe.Prim[string] { return observe.NewPrim(s) }

// SetText assigns the message's reactive text cell, constructing it if
// necessary. Used when hydrating a Message from storage rather than
// through Enqueue.
func (m *Message) SetText(s string) {
	if m.Text == nil {
		m.Text = newText(s)
		return
	}
	m.Text.Set(s)
}

// boundary entries, carried over from the distillation's supplemented
// feature set (date separators, unread banners) - grounded in
// example/kitchen/model/model.go's DateBoundary/UnreadBoundary
// pseudo-rows, generalized to the scroll.Entry contract.

// DateBoundary marks a day change in a rendered timeline.
type DateBoundary struct {
	Id      MessageId
	FeedKey scroll.FeedKey
	Date    time.Time
}

func (d DateBoundary) EntryId() MessageId   { return d.Id }
func (d DateBoundary) Feed() scroll.FeedKey { return d.FeedKey }

// UnreadBoundary marks the first unread message in a channel.
type UnreadBoundary struct {
	Id      MessageId
	FeedKey scroll.FeedKey
}

func (u UnreadBoundary) EntryId() MessageId   { return u.Id }
func (u UnreadBoundary) Feed() scroll.FeedKey { return u.FeedKey }
