package blob

import (
	"testing"
)

func TestDecodeRoomMembers(t *testing.T) {
	tests := []struct {
		name    string
		buf     string // hex
		members []string
	}{
		{
			name: "three members in order",
			// {wxid:"w1"} {wxid:"w2"} {wxid:"w3"}, then a varint field 4
			buf:     "0a040a027731" + "0a040a027732" + "0a040a027733" + "20f403",
			members: []string{"w1", "w2", "w3"},
		},
		{
			name: "member records carry display names",
			// {wxid:"w1" name:"Ann"} {wxid:"w2" name:"Bob"}
			buf:     "0a090a0277311203416e6e" + "0a090a0277321203426f62",
			members: []string{"w1", "w2"},
		},
		{
			name: "truncated after two members",
			// third record declares 16 bytes, fewer remain
			buf:     "0a040a027731" + "0a040a027732" + "0a10" + "0a027733",
			members: []string{"w1", "w2"},
		},
		{
			name: "malformed member record after two",
			// third member's wxid declares 5 bytes, only 2 present
			buf:     "0a040a027731" + "0a040a027732" + "0a04" + "0a057733",
			members: []string{"w1", "w2"},
		},
		{
			name:    "empty buffer",
			buf:     "",
			members: nil,
		},
		{
			name:    "garbage",
			buf:     "ffffffffff",
			members: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeRoomMembers(mustHex(t, tt.buf))
			if len(got) != len(tt.members) {
				t.Fatalf("got %v, want %v", got, tt.members)
			}
			for i := range got {
				if got[i] != tt.members[i] {
					t.Fatalf("got %v, want %v", got, tt.members)
				}
			}
		})
	}
}
