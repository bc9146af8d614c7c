package store

import "fmt"

type Contact struct {
	Wxid     string `json:"wxid"`
	Alias    string `json:"alias,omitempty"`
	Nickname string `json:"nickname"`
	Remark   string `json:"remark,omitempty"`
}

// Contacts lists the account's contacts. Rooms and service accounts
// are filtered out; those have their own read paths.
func (s *Store) Contacts() ([]Contact, error) {
	rows, err := s.q.Query(contactStore, `
		SELECT UserName, Alias, NickName, Remark FROM Contact
		WHERE UserName NOT LIKE '%@chatroom' AND UserName NOT LIKE 'gh_%'
		ORDER BY UserName
	`)
	if err != nil {
		return nil, fmt.Errorf("contacts: %w", err)
	}

	contacts := make([]Contact, 0, len(rows))
	for _, row := range rows {
		wxid := row.String("UserName")
		if wxid == "" {
			continue
		}
		contacts = append(contacts, Contact{
			Wxid:     wxid,
			Alias:    row.String("Alias"),
			Nickname: row.String("NickName"),
			Remark:   row.String("Remark"),
		})
	}
	return contacts, nil
}
