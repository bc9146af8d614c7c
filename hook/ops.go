package hook

import (
	"encoding/json"
	"fmt"
)

// IsLogin asks the engine whether the platform session is live. The
// check is advisory; callers treat an error as "not logged in".
func (c *Client) IsLogin() (bool, error) {
	payload, err := c.callOK("isLogin", nil)
	if err != nil {
		return false, err
	}
	var out struct {
		Login bool `json:"login"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return false, fmt.Errorf("isLogin payload: %w", err)
	}
	return out.Login, nil
}

// UserInfo returns the logged-in account's identity.
func (c *Client) UserInfo() (*UserInfo, error) {
	payload, err := c.callOK("userInfo", nil)
	if err != nil {
		return nil, err
	}
	var info UserInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("userInfo payload: %w", err)
	}
	return &info, nil
}

// Query runs a read-only statement against one of the platform's
// named local stores and returns the raw rows.
func (c *Client) Query(store, sql string) ([]Row, error) {
	payload, err := c.callOK("execSql", map[string]interface{}{
		"db":  store,
		"sql": sql,
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Rows []Row `json:"rows"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("execSql payload: %w", err)
	}
	return out.Rows, nil
}

// Send primitives. First parameter is always the recipient: a contact
// wxid or a room id. These hit the live account directly; almost all
// callers should go through gateway.Throttled instead.

func (c *Client) SendText(to, content string) error {
	_, err := c.callOK("sendText", map[string]interface{}{"to": to, "content": content})
	return err
}

func (c *Client) SendImage(to, path string) error {
	_, err := c.callOK("sendImage", map[string]interface{}{"to": to, "path": path})
	return err
}

func (c *Client) SendFile(to, path string) error {
	_, err := c.callOK("sendFile", map[string]interface{}{"to": to, "path": path})
	return err
}

func (c *Client) SendRichText(to string, card RichText) error {
	_, err := c.callOK("sendRichText", map[string]interface{}{"to": to, "card": card})
	return err
}

func (c *Client) Forward(to string, msgID uint64) error {
	_, err := c.callOK("forwardMsg", map[string]interface{}{"to": to, "msgId": msgID})
	return err
}

// Room membership mutations. Not send-classified, so never throttled.

func (c *Client) AddRoomMembers(roomID string, wxids []string) error {
	_, err := c.callOK("addRoomMembers", map[string]interface{}{"roomId": roomID, "wxids": wxids})
	return err
}

func (c *Client) DelRoomMembers(roomID string, wxids []string) error {
	_, err := c.callOK("delRoomMembers", map[string]interface{}{"roomId": roomID, "wxids": wxids})
	return err
}

func (c *Client) InviteRoomMembers(roomID string, wxids []string) error {
	_, err := c.callOK("invRoomMembers", map[string]interface{}{"roomId": roomID, "wxids": wxids})
	return err
}
