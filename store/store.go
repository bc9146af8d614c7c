// Package store reads platform-persisted state (contacts, rooms,
// message history) through the hook engine's raw query primitive and
// merges the decoded metadata blobs into the returned rows.
package store

import (
	"strings"

	"github.com/bitfern/wxbridge/hook"
)

// Named local stores owned by the platform process.
const (
	contactStore = "MicroMsg.db"
	messageStore = "MSG0.db"
)

// Queryer is the raw-query primitive. hook.Client satisfies it.
type Queryer interface {
	Query(store, sql string) ([]hook.Row, error)
}

type Store struct {
	q        Queryer
	selfWxid string
}

// New wires a Store over the engine's query primitive. selfWxid is
// the logged-in account, substituted wherever a message's true sender
// cannot be decoded.
func New(q Queryer, selfWxid string) *Store {
	return &Store{q: q, selfWxid: selfWxid}
}

// quote makes a string safe for embedding in a single-quoted SQL
// literal. The engine's query primitive takes no bind parameters.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
