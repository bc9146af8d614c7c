// Package gateway paces outbound sends. The platform bans accounts
// that send too fast, so every send-classified operation clears two
// admission gates before reaching the transport: the recipient's own
// throttle (one send per 1-3s, interval fixed per recipient), then a
// global cap of 40 send starts per 60s across all recipients.
package gateway

import (
	"time"

	"github.com/bitfern/wxbridge/hook"
	"github.com/bitfern/wxbridge/throttle"
)

// Global admission cap across all recipients.
const (
	globalCapacity = 40
	globalWindow   = 60 * time.Second
)

// Sender enumerates the send-classified operations. The first
// parameter is always the recipient identifier. hook.Client satisfies
// this; so does Throttled, so callers cannot tell the layers apart.
type Sender interface {
	SendText(to, content string) error
	SendImage(to, path string) error
	SendFile(to, path string) error
	SendRichText(to string, card hook.RichText) error
	Forward(to string, msgID uint64) error
}

// Throttled implements Sender by clearing the recipient throttle and
// the global limiter before delegating to the inner transport.
// Results and errors pass through untouched; this layer only delays.
type Throttled struct {
	inner      Sender
	recipients *throttle.Registry
	global     *throttle.FixedWindow
	unsafe     bool
}

type Option func(*Throttled)

// Unsafe disables throttling entirely. Sends go straight to the
// transport. Useful against a sandboxed or test engine; running a
// real account this way is how accounts get banned.
func Unsafe() Option {
	return func(t *Throttled) { t.unsafe = true }
}

// WithRegistry replaces the per-recipient registry, letting tests
// shrink the pacing intervals.
func WithRegistry(r *throttle.Registry) Option {
	return func(t *Throttled) { t.recipients = r }
}

// WithGlobalLimiter replaces the shared limiter, letting tests shrink
// its window.
func WithGlobalLimiter(l *throttle.FixedWindow) Option {
	return func(t *Throttled) { t.global = l }
}

func New(inner Sender, opts ...Option) *Throttled {
	t := &Throttled{
		inner:      inner,
		recipients: throttle.NewRegistry(),
		global:     throttle.NewFixedWindow(globalCapacity, globalWindow),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Recipients exposes the registry for introspection (stats endpoint).
func (t *Throttled) Recipients() *throttle.Registry { return t.recipients }

// Global exposes the shared limiter for introspection.
func (t *Throttled) Global() *throttle.FixedWindow { return t.global }

// pace blocks until both gates admit the send. Recipient gate first;
// the global gate is FIFO among calls that already cleared their
// recipient gate, so a fast-interval recipient is never stuck behind
// a slow one that merely arrived earlier.
func (t *Throttled) pace(to string) {
	if t.unsafe {
		return
	}
	t.recipients.For(to).Admit()
	t.global.Admit()
}

func (t *Throttled) SendText(to, content string) error {
	t.pace(to)
	return t.inner.SendText(to, content)
}

func (t *Throttled) SendImage(to, path string) error {
	t.pace(to)
	return t.inner.SendImage(to, path)
}

func (t *Throttled) SendFile(to, path string) error {
	t.pace(to)
	return t.inner.SendFile(to, path)
}

func (t *Throttled) SendRichText(to string, card hook.RichText) error {
	t.pace(to)
	return t.inner.SendRichText(to, card)
}

func (t *Throttled) Forward(to string, msgID uint64) error {
	t.pace(to)
	return t.inner.Forward(to, msgID)
}
