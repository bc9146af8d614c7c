package store

import (
	"fmt"
	"time"

	"github.com/bitfern/wxbridge/blob"
)

type HistoryMessage struct {
	SvrID    int64     `json:"svrId"`
	Talker   string    `json:"talker"` // peer wxid or room id
	Sender   string    `json:"sender"` // who actually wrote it
	Content  string    `json:"content"`
	Type     int64     `json:"type"`
	FromSelf bool      `json:"fromSelf"`
	Time     time.Time `json:"time"`
}

// History returns the most recent messages exchanged with a talker, in
// chronological order. Each row's sender comes out of the message's
// metadata blob; when the blob is empty or carries no sender field the
// account's own wxid is substituted. One undecodable row never fails
// the list.
func (s *Store) History(talker string, limit int) ([]HistoryMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.q.Query(messageStore, fmt.Sprintf(`
		SELECT MsgSvrID, StrTalker, StrContent, Type, IsSender, CreateTime, BytesExtra
		FROM MSG WHERE StrTalker = %s
		ORDER BY CreateTime DESC LIMIT %d
	`, quote(talker), limit))
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", talker, err)
	}

	messages := make([]HistoryMessage, 0, len(rows))
	for _, row := range rows {
		sender := blob.DecodeSenderExtra(row.Bytes("BytesExtra")).Sender
		if sender == "" {
			sender = s.selfWxid
		}
		messages = append(messages, HistoryMessage{
			SvrID:    row.Int64("MsgSvrID"),
			Talker:   row.String("StrTalker"),
			Sender:   sender,
			Content:  row.String("StrContent"),
			Type:     row.Int64("Type"),
			FromSelf: row.Int64("IsSender") == 1,
			Time:     time.Unix(row.Int64("CreateTime"), 0),
		})
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
