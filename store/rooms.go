package store

import (
	"fmt"

	"github.com/bitfern/wxbridge/blob"
)

type Room struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Rooms lists the rooms the account belongs to. The member list comes
// out of each room's metadata blob; a blob the decoder cannot read
// yields a room with no members rather than an error.
func (s *Store) Rooms() ([]Room, error) {
	rows, err := s.q.Query(contactStore, `
		SELECT r.ChatRoomName, r.RoomData, c.NickName
		FROM ChatRoom r LEFT JOIN Contact c ON c.UserName = r.ChatRoomName
		ORDER BY r.ChatRoomName
	`)
	if err != nil {
		return nil, fmt.Errorf("rooms: %w", err)
	}

	rooms := make([]Room, 0, len(rows))
	for _, row := range rows {
		id := row.String("ChatRoomName")
		if id == "" {
			continue
		}
		rooms = append(rooms, Room{
			ID:      id,
			Name:    row.String("NickName"),
			Members: blob.DecodeRoomMembers(row.Bytes("RoomData")),
		})
	}
	return rooms, nil
}

// RoomMembers returns one room's member wxids in blob order.
func (s *Store) RoomMembers(roomID string) ([]string, error) {
	rows, err := s.q.Query(contactStore,
		"SELECT RoomData FROM ChatRoom WHERE ChatRoomName = "+quote(roomID))
	if err != nil {
		return nil, fmt.Errorf("room members %s: %w", roomID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("room members %s: no such room", roomID)
	}
	return blob.DecodeRoomMembers(rows[0].Bytes("RoomData")), nil
}
