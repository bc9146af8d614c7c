// Package archive keeps a local SQLite log of everything the bridge
// sends and receives, independent of the platform's own stores, which
// the account can lose on re-login.
package archive

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bitfern/wxbridge/hook"
)

//go:embed schema.sql
var schema string

type Archive struct {
	*sql.DB
}

func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	slog.Info("archive opened", "path", path)
	return &Archive{db}, nil
}

// Outbound is one dispatched send.
type Outbound struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Kind      string    `json:"kind"` // text, image, file, rich, forward
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sentAt"`
}

func (a *Archive) LogOutbound(recipient, kind, content string) (*Outbound, error) {
	out := &Outbound{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Kind:      kind,
		Content:   content,
		SentAt:    time.Now().UTC(),
	}
	_, err := a.Exec(`
		INSERT INTO outbound (id, recipient, kind, content, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`, out.ID, out.Recipient, out.Kind, out.Content, out.SentAt)
	if err != nil {
		return nil, fmt.Errorf("log outbound: %w", err)
	}
	return out, nil
}

// RecentOutbound lists the latest sends to one recipient, newest first.
func (a *Archive) RecentOutbound(recipient string, limit int) ([]Outbound, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := a.Query(`
		SELECT id, recipient, kind, content, sent_at FROM outbound
		WHERE recipient = ? ORDER BY sent_at DESC LIMIT ?
	`, recipient, limit)
	if err != nil {
		return nil, fmt.Errorf("recent outbound: %w", err)
	}
	defer rows.Close()

	var out []Outbound
	for rows.Next() {
		var o Outbound
		if err := rows.Scan(&o.ID, &o.Recipient, &o.Kind, &o.Content, &o.SentAt); err != nil {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// LogInbound records a received message with its enriched sender.
// Redelivery of the same platform message (same svr_id and talker) is
// a no-op.
func (a *Archive) LogInbound(m *hook.Message, sender string) error {
	_, err := a.Exec(`
		INSERT OR IGNORE INTO inbound (id, svr_id, talker, sender, content, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), int64(m.ID), m.Talker, sender, m.Content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("log inbound: %w", err)
	}
	return nil
}

// CountOutboundSince counts sends dispatched after the cutoff,
// across all recipients.
func (a *Archive) CountOutboundSince(cutoff time.Time) (int, error) {
	var n int
	err := a.QueryRow(`SELECT COUNT(*) FROM outbound WHERE sent_at >= ?`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count outbound: %w", err)
	}
	return n, nil
}
