// Package outboxdb persists locally-queued outgoing messages so a
// send survives a client restart, via modernc.org/sqlite.
package outboxdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andrewbaxter/kwa/feeds"
	"github.com/andrewbaxter/kwa/scroll"
	_ "modernc.org/sqlite"
)

// DB is a feeds.OutboxDB backed by an "outbox" table.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures the outbox table exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("outboxdb: open %s: %w", path, err)
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS outbox (
		id INTEGER PRIMARY KEY,
		channel TEXT NOT NULL,
		text TEXT NOT NULL,
		sent_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("outboxdb: migrate: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Save(ctx context.Context, m *feeds.Message) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO outbox (id, channel, text, sent_at)
		VALUES (?, ?, ?, ?)`,
		int64(m.Id), string(m.FeedKey), m.Text.Get(), m.SentAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("outboxdb: save: %w", err)
	}
	return nil
}

func (d *DB) Delete(ctx context.Context, id feeds.MessageId) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("outboxdb: delete: %w", err)
	}
	return nil
}

func (d *DB) LoadAll(ctx context.Context) ([]*feeds.Message, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, channel, text, sent_at FROM outbox ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("outboxdb: load all: %w", err)
	}
	defer rows.Close()
	var out []*feeds.Message
	for rows.Next() {
		var (
			id      int64
			channel string
			text    string
			sentMs  int64
		)
		if err := rows.Scan(&id, &channel, &text, &sentMs); err != nil {
			return nil, fmt.Errorf("outboxdb: scan: %w", err)
		}
		m := &feeds.Message{
			Id:      feeds.MessageId(id),
			FeedKey: scroll.FeedKey("outbox"),
			SentAt:  time.UnixMilli(sentMs),
			Local:   true,
			Status:  feeds.StatusPending,
		}
		_ = channel
		m.SetText(text)
		out = append(out, m)
	}
	return out, rows.Err()
}
