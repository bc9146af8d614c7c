package hook

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

// Wire frames exchanged with the hook engine. One JSON object per
// websocket text message; requests carry an id echoed by the matching
// response, events carry no id.
type frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  interface{}     `json:"params,omitempty"`
	OK      bool            `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *frameError     `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
}

type frameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Event is a push from the hook engine: "message", "logout", "error".
type Event struct {
	Name    string
	Payload json.RawMessage
}

// Message is the payload of a "message" event.
type Message struct {
	ID      uint64 `json:"id"`
	Type    int    `json:"type"`
	Talker  string `json:"talker"` // peer wxid, or room id for room messages
	Content string `json:"content"`
	Extra   []byte `json:"extra"` // raw metadata blob, base64 on the wire
	Self    bool   `json:"self"`
	Ts      int64  `json:"ts"`
}

// IsRoom reports whether the message arrived via a room.
func (m *Message) IsRoom() bool {
	return strings.HasSuffix(m.Talker, "@chatroom")
}

// UserInfo describes the logged-in account.
type UserInfo struct {
	Wxid string `json:"wxid"`
	Name string `json:"name"`
}

// RichText is the payload of a rich-content (link card) send.
type RichText struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	URL   string `json:"url"`
	Thumb string `json:"thumb,omitempty"`
}

// Row is one result row from a raw store query. Column values arrive
// as JSON: strings, numbers, or base64 strings for blob columns.
type Row map[string]json.RawMessage

// String returns the column as a string, or "" when absent.
func (r Row) String(col string) string {
	raw, ok := r[col]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// Int64 returns the column as an integer, or 0 when absent or unreadable.
func (r Row) Int64(col string) int64 {
	raw, ok := r[col]
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	// Some columns come back as numeric strings.
	if v, err := strconv.ParseInt(r.String(col), 10, 64); err == nil {
		return v
	}
	return 0
}

// Bytes returns a blob column decoded from its base64 wire form, or
// nil when absent or not valid base64.
func (r Row) Bytes(col string) []byte {
	s := r.String(col)
	if s == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
