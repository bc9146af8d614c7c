package blob

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Room metadata blob field numbers, pinned from captured samples.
const (
	roomFieldMember = 1 // repeated member sub-record

	memberFieldWxid = 1
)

// DecodeRoomMembers lists the member wxids encoded in a room metadata
// blob, in encounter order. Decoding stops at the first malformed byte
// and returns whatever was decoded up to that point; an unreadable
// blob yields an empty list, never an error.
func DecodeRoomMembers(buf []byte) []string {
	var members []string
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return members
		}
		buf = buf[n:]

		if num == roomFieldMember && typ == protowire.BytesType {
			sub, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return members
			}
			buf = buf[n:]
			wxid, ok := decodeMember(sub)
			if !ok {
				return members
			}
			if wxid != "" {
				members = append(members, wxid)
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, buf)
		if n < 0 {
			return members
		}
		buf = buf[n:]
	}
	return members
}

// decodeMember reads one member sub-record and returns its wxid.
func decodeMember(buf []byte) (wxid string, ok bool) {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return "", false
		}
		buf = buf[n:]

		if num == memberFieldWxid && typ == protowire.BytesType {
			b, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return "", false
			}
			buf = buf[n:]
			wxid = string(b)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, buf)
		if n < 0 {
			return "", false
		}
		buf = buf[n:]
	}
	return wxid, true
}
