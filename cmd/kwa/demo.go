package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"time"

	"github.com/andrewbaxter/kwa/feeds"
	"github.com/andrewbaxter/kwa/scroll"
	lorem "github.com/drhodes/golorem"
	"github.com/lucasb-eyer/go-colorful"
)

// seedDemoHistory populates store with n synthetic historic messages
// for channel, the way example/kitchen/gen generated synthetic rows -
// lorem for text, go-colorful for a sender's display color - minus the
// unsplash image-fetch path this module intentionally drops.
func seedDemoHistory(ctx context.Context, store sqlStoreInserter, channel string, n int) error {
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		m := &feeds.Message{
			Id:      feeds.MessageId(i + 1),
			FeedKey: scroll.FeedKey(channel),
			Sender:  lorem.Word(3, 10),
			SentAt:  base.Add(time.Duration(i) * time.Minute),
			Local:   i%7 == 0,
		}
		m.SetText(lorem.Paragraph(1, 5))
		if err := store.Insert(ctx, channel, m); err != nil {
			return fmt.Errorf("seeding demo history: %w", err)
		}
	}
	return nil
}

// sqlStoreInserter is the subset of sqlstore.Store demo.go needs,
// named separately so this file does not have to import the sqlstore
// package just to describe the method it calls.
type sqlStoreInserter interface {
	Insert(ctx context.Context, channel string, m *feeds.Message) error
}

// demoSender fakes network round-trip latency for an outbox send and
// always succeeds - used when no real server_url is configured.
type demoSender struct{}

func (demoSender) Send(ctx context.Context, channel, text string) (feeds.MessageId, error) {
	time.Sleep(time.Duration(100+rand.Intn(400)) * time.Millisecond)
	return feeds.NewMessageId(int64(rand.Int31())), nil
}

// senderAvatar renders a small solid-color swatch for a sender, derived
// from their name the way example/kitchen/gen assigns synthetic users
// a stable-looking color, minus the unsplash photo it paired it with
// there.
func senderAvatar(sender string) image.Image {
	var seed int64
	for _, r := range sender {
		seed = seed*31 + int64(r)
	}
	c := colorful.Hsv(float64(((seed%360)+360)%360), 0.55, 0.85).Clamped()
	img := image.NewUniform(ToNRGBA(c))
	return img
}

// ToNRGBA converts a colorful.Color to the nearest representable
// color.NRGBA.
func ToNRGBA(c colorful.Color) color.NRGBA {
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}
