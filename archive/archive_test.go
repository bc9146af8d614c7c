package archive

import (
	"testing"
	"time"

	"github.com/bitfern/wxbridge/hook"
)

func openTest(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestOutboundRoundTrip(t *testing.T) {
	a := openTest(t)

	for _, content := range []string{"one", "two", "three"} {
		if _, err := a.LogOutbound("wxid_alice", "text", content); err != nil {
			t.Fatalf("LogOutbound: %v", err)
		}
	}
	if _, err := a.LogOutbound("wxid_bob", "image", "/tmp/cat.png"); err != nil {
		t.Fatalf("LogOutbound: %v", err)
	}

	got, err := a.RecentOutbound("wxid_alice", 10)
	if err != nil {
		t.Fatalf("RecentOutbound: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows for alice, want 3", len(got))
	}
	for _, o := range got {
		if o.Recipient != "wxid_alice" || o.Kind != "text" || o.ID == "" {
			t.Errorf("unexpected row %+v", o)
		}
	}
}

func TestCountOutboundSince(t *testing.T) {
	a := openTest(t)

	for i := 0; i < 4; i++ {
		if _, err := a.LogOutbound("wxid_alice", "text", "hi"); err != nil {
			t.Fatalf("LogOutbound: %v", err)
		}
	}

	n, err := a.CountOutboundSince(time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CountOutboundSince: %v", err)
	}
	if n != 4 {
		t.Fatalf("count = %d, want 4", n)
	}

	n, err = a.CountOutboundSince(time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("CountOutboundSince: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d for future cutoff, want 0", n)
	}
}

func TestLogInboundDeduplicatesRedelivery(t *testing.T) {
	a := openTest(t)

	msg := &hook.Message{ID: 42, Talker: "111@chatroom", Content: "hello"}
	if err := a.LogInbound(msg, "wxid_abc123"); err != nil {
		t.Fatalf("LogInbound: %v", err)
	}
	if err := a.LogInbound(msg, "wxid_abc123"); err != nil {
		t.Fatalf("LogInbound redelivery: %v", err)
	}

	// Same svr_id from a different talker is a distinct message.
	other := &hook.Message{ID: 42, Talker: "wxid_bob", Content: "hello"}
	if err := a.LogInbound(other, "wxid_bob"); err != nil {
		t.Fatalf("LogInbound other talker: %v", err)
	}

	var n int
	if err := a.QueryRow(`SELECT COUNT(*) FROM inbound WHERE talker = ?`, "111@chatroom").Scan(&n); err != nil {
		t.Fatalf("count inbound: %v", err)
	}
	if n != 1 {
		t.Fatalf("inbound rows for redelivered message = %d, want 1", n)
	}
	if err := a.QueryRow(`SELECT COUNT(*) FROM inbound`).Scan(&n); err != nil {
		t.Fatalf("count inbound: %v", err)
	}
	if n != 2 {
		t.Fatalf("total inbound rows = %d, want 2", n)
	}
}
