// Package sqlstore implements feeds.Store against a local SQLite
// database (modernc.org/sqlite, a pure-Go driver, chosen over
// mattn/go-sqlite3 to avoid a cgo build requirement for the demo
// client).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andrewbaxter/kwa/feeds"
	"github.com/andrewbaxter/kwa/scroll"
	_ "modernc.org/sqlite"
)

// Store is a feeds.Store backed by a "messages" table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures the messages table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER NOT NULL,
		channel TEXT NOT NULL,
		sender TEXT NOT NULL,
		text TEXT NOT NULL,
		sent_at INTEGER NOT NULL,
		PRIMARY KEY (channel, id)
	);
	CREATE INDEX IF NOT EXISTS messages_channel_id ON messages(channel, id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) LoadAround(ctx context.Context, channel string, pivot feeds.MessageId, n int) ([]*feeds.Message, bool, bool, error) {
	before, earlyStop, err := s.LoadBefore(ctx, channel, pivot+1, n)
	if err != nil {
		return nil, false, false, err
	}
	after, lateStop, err := s.LoadAfter(ctx, channel, pivot, n)
	if err != nil {
		return nil, false, false, err
	}
	return append(before, after...), earlyStop, lateStop, nil
}

func (s *Store) LoadBefore(ctx context.Context, channel string, pivot feeds.MessageId, n int) ([]*feeds.Message, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, text, sent_at FROM (
			SELECT id, sender, text, sent_at FROM messages
			WHERE channel = ? AND id < ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, channel, int64(pivot), n)
	if err != nil {
		return nil, false, fmt.Errorf("sqlstore: load before: %w", err)
	}
	defer rows.Close()
	msgs, err := scanMessages(rows, channel)
	if err != nil {
		return nil, false, err
	}
	stop := len(msgs) < n
	return msgs, stop, nil
}

func (s *Store) LoadAfter(ctx context.Context, channel string, pivot feeds.MessageId, n int) ([]*feeds.Message, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, text, sent_at FROM messages
		WHERE channel = ? AND id > ?
		ORDER BY id ASC LIMIT ?`, channel, int64(pivot), n)
	if err != nil {
		return nil, false, fmt.Errorf("sqlstore: load after: %w", err)
	}
	defer rows.Close()
	msgs, err := scanMessages(rows, channel)
	if err != nil {
		return nil, false, err
	}
	stop := len(msgs) < n
	return msgs, stop, nil
}

// Insert persists a confirmed message, used by the demo transport
// when a server event arrives.
func (s *Store) Insert(ctx context.Context, channel string, m *feeds.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO messages (id, channel, sender, text, sent_at)
		VALUES (?, ?, ?, ?, ?)`,
		int64(m.Id), channel, m.Sender, m.Text.Get(), m.SentAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlstore: insert: %w", err)
	}
	return nil
}

func scanMessages(rows *sql.Rows, channel string) ([]*feeds.Message, error) {
	var out []*feeds.Message
	for rows.Next() {
		var (
			id     int64
			sender string
			text   string
			sentMs int64
		)
		if err := rows.Scan(&id, &sender, &text, &sentMs); err != nil {
			return nil, fmt.Errorf("sqlstore: scan: %w", err)
		}
		m := &feeds.Message{
			Id:      feeds.MessageId(id),
			FeedKey: scroll.FeedKey(channel),
			Sender:  sender,
			SentAt:  time.UnixMilli(sentMs),
		}
		m.SetText(text)
		out = append(out, m)
	}
	return out, rows.Err()
}
