package feeds

import "context"

// Store is the persistence backend a ChannelFeed queries for history.
// feeds/sqlstore provides the demo implementation.
type Store interface {
	// LoadAround returns up to 2*n messages surrounding pivot (inclusive
	// of pivot, if it exists), ascending by id, plus whether the start
	// and end of history were each reached within that range.
	LoadAround(ctx context.Context, channel string, pivot MessageId, n int) (msgs []*Message, earlyStop, lateStop bool, err error)
	// LoadBefore returns up to n messages strictly before pivot,
	// ascending by id, plus whether the start of history was reached.
	LoadBefore(ctx context.Context, channel string, pivot MessageId, n int) ([]*Message, bool, error)
	// LoadAfter returns up to n messages strictly after pivot, ascending
	// by id, plus whether the live edge of history was reached.
	LoadAfter(ctx context.Context, channel string, pivot MessageId, n int) ([]*Message, bool, error)
}
