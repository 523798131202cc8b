// Package transport implements the realtime delivery side of a
// ChannelFeed: a websocket client that decodes server events and
// forwards new messages, grounded in the original client's
// EventsGetAfter polling loop generalized to a push transport.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/andrewbaxter/kwa/feeds"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

// wireMessage is the on-the-wire representation of a server-pushed
// message event.
type wireMessage struct {
	Channel string `json:"channel"`
	Id      int64  `json:"id"`
	Sender  string `json:"sender"`
	Text    string `json:"text"`
	SentAt  int64  `json:"sent_at"`
}

// Client maintains a websocket connection to the chat server and
// dispatches incoming messages to the ChannelFeed for their channel.
type Client struct {
	url      string
	log      hclog.Logger
	channels map[string]*feeds.ChannelFeed
}

// NewClient constructs a transport Client for the given server URL.
// Register channels with RegisterChannel before calling Run.
func NewClient(url string) *Client {
	return &Client{
		url:      url,
		log:      hclog.New(&hclog.LoggerOptions{Name: "feeds.transport"}),
		channels: make(map[string]*feeds.ChannelFeed),
	}
}

// RegisterChannel associates incoming events for channel with feed.
func (c *Client) RegisterChannel(channel string, feed *feeds.ChannelFeed) {
	c.channels[channel] = feed
}

// Run dials the server and dispatches events until ctx is cancelled,
// reconnecting with backoff whenever the connection fails. It returns
// only once ctx is done. Meant to be run in its own goroutine.
func (c *Client) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.runOnce(ctx); err != nil {
			c.log.Warn("transport connection failed, retrying", "error", err, "backoff", backoff)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("transport: dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var wm wireMessage
		if err := conn.ReadJSON(&wm); err != nil {
			return fmt.Errorf("transport: read: %w", err)
		}
		feed, ok := c.channels[wm.Channel]
		if !ok {
			continue
		}
		msg := &feeds.Message{
			Id:      feeds.MessageId(wm.Id),
			FeedKey: feed.Key(),
			Sender:  wm.Sender,
			SentAt:  time.UnixMilli(wm.SentAt),
		}
		msg.SetText(wm.Text)
		feed.Notify(msg)
	}
}

