// Package blob decodes the opaque metadata columns the platform writes
// next to its message and room rows. The layouts are not documented
// anywhere; they are pinned from byte samples captured off a live
// account and verified against golden fixtures in the tests. Malformed
// input never produces an error, only a partial or empty result, so a
// format drift after a platform update degrades reads instead of
// breaking them.
package blob

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// SenderExtra is the decoded per-message metadata blob. For messages
// relayed through a room, Sender carries the wxid of the person who
// actually wrote the message. Zero value means the field was absent;
// callers fall back to the account's own wxid.
type SenderExtra struct {
	Sender string
}

// Blob field numbers, pinned from captured samples.
const (
	extraFieldProperty = 3 // repeated {kind, value} sub-record

	propFieldKind  = 1
	propFieldValue = 2

	propKindSender = 1 // value is the true sender wxid
)

// DecodeSenderExtra extracts the true-sender field from a message
// metadata blob. Empty, truncated, or sender-less input yields the
// zero record.
func DecodeSenderExtra(buf []byte) SenderExtra {
	var out SenderExtra
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return out
		}
		buf = buf[n:]

		if num == extraFieldProperty && typ == protowire.BytesType {
			sub, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return out
			}
			buf = buf[n:]
			if kind, value, ok := decodeProperty(sub); ok && kind == propKindSender {
				out.Sender = value
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, buf)
		if n < 0 {
			return out
		}
		buf = buf[n:]
	}
	return out
}

// decodeProperty reads one {kind, value} sub-record.
func decodeProperty(buf []byte) (kind uint64, value string, ok bool) {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return 0, "", false
		}
		buf = buf[n:]

		switch {
		case num == propFieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return 0, "", false
			}
			buf = buf[n:]
			kind = v
		case num == propFieldValue && typ == protowire.BytesType:
			b, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return 0, "", false
			}
			buf = buf[n:]
			value = string(b)
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return 0, "", false
			}
			buf = buf[n:]
		}
	}
	return kind, value, true
}
