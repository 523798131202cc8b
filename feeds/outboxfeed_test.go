package feeds

import (
	"context"
	"testing"
	"time"

	"github.com/andrewbaxter/kwa/scroll"
	"github.com/stretchr/testify/require"
)

type memOutboxDB struct {
	saved map[MessageId]*Message
}

func newMemOutboxDB() *memOutboxDB { return &memOutboxDB{saved: map[MessageId]*Message{}} }

func (m *memOutboxDB) Save(ctx context.Context, msg *Message) error {
	m.saved[msg.Id] = msg
	return nil
}
func (m *memOutboxDB) Delete(ctx context.Context, id MessageId) error {
	delete(m.saved, id)
	return nil
}
func (m *memOutboxDB) LoadAll(ctx context.Context) ([]*Message, error) {
	var out []*Message
	for _, v := range m.saved {
		out = append(out, v)
	}
	return out, nil
}

type fakeSender struct {
	delay time.Duration
	fail  bool
}

func (s fakeSender) Send(ctx context.Context, channel, text string) (MessageId, error) {
	time.Sleep(s.delay)
	if s.fail {
		return 0, context.DeadlineExceeded
	}
	return NewMessageId(1), nil
}

func TestOutboxEnqueueNotifiesBeforeSendCompletes(t *testing.T) {
	db := newMemOutboxDB()
	e := scroll.New[MessageId](scroll.DefaultConfig(), Less)
	defer e.Close()
	feed := NewOutboxFeed(db, fakeSender{delay: 50 * time.Millisecond}, e.Handle())

	msg := feed.Enqueue(context.Background(), "general", "hello")
	require.Equal(t, StatusPending, msg.Status)
	require.Len(t, db.saved, 1)

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 0, len(db.saved), "confirmed message should be removed from the outbox store")
}

func TestOutboxEnqueueKeepsFailedSendPending(t *testing.T) {
	db := newMemOutboxDB()
	e := scroll.New[MessageId](scroll.DefaultConfig(), Less)
	defer e.Close()
	feed := NewOutboxFeed(db, fakeSender{fail: true}, e.Handle())

	msg := feed.Enqueue(context.Background(), "general", "hello")
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, StatusFailed, msg.Status)
	require.Len(t, db.saved, 1, "failed send should remain persisted in the outbox store")
}
