// Package bot drives the session: it polls the hook engine until the
// account is logged in, then fans the engine's event stream out to
// caller-supplied handlers, enriching room messages with the decoded
// true sender.
package bot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bitfern/wxbridge/blob"
	"github.com/bitfern/wxbridge/hook"
)

// Engine is the slice of hook.Client the bot needs.
type Engine interface {
	IsLogin() (bool, error)
	UserInfo() (*hook.UserInfo, error)
	Events() <-chan hook.Event
	Done() <-chan struct{}
}

// Handlers receive the bot's events. Nil handlers are skipped.
// OnMessage gets the raw message plus the enriched sender: the decoded
// true sender for room messages, the account's own wxid otherwise.
type Handlers struct {
	OnLogin   func(info *hook.UserInfo)
	OnLogout  func()
	OnMessage func(msg *hook.Message, sender string)
	OnError   func(err error)
}

type Bot struct {
	eng      Engine
	handlers Handlers
	poll     time.Duration

	mu       sync.RWMutex
	selfWxid string

	stop chan struct{}
	once sync.Once
}

type Option func(*Bot)

// WithPollInterval overrides the login polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bot) { b.poll = d }
}

func New(eng Engine, handlers Handlers, opts ...Option) *Bot {
	b := &Bot{
		eng:      eng,
		handlers: handlers,
		poll:     2 * time.Second,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SelfWxid is the logged-in account's wxid, empty before login.
func (b *Bot) SelfWxid() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selfWxid
}

func (b *Bot) Stop() {
	b.once.Do(func() { close(b.stop) })
}

// Run blocks until the connection is lost or Stop is called. The
// login event fires exactly once per Run.
func (b *Bot) Run() {
	if !b.waitForLogin() {
		return
	}

	info, err := b.eng.UserInfo()
	if err != nil {
		slog.Warn("userInfo after login failed", "err", err)
		info = &hook.UserInfo{}
	}
	b.mu.Lock()
	b.selfWxid = info.Wxid
	b.mu.Unlock()

	slog.Info("logged in", "wxid", info.Wxid, "name", info.Name)
	if b.handlers.OnLogin != nil {
		b.handlers.OnLogin(info)
	}

	for {
		select {
		case <-b.stop:
			return
		case <-b.eng.Done():
			if b.handlers.OnError != nil {
				b.handlers.OnError(fmt.Errorf("hook connection lost"))
			}
			return
		case evt := <-b.eng.Events():
			b.dispatch(evt)
		}
	}
}

// waitForLogin polls the advisory login check. Check failures count
// as "not logged in".
func (b *Bot) waitForLogin() bool {
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()

	for {
		login, err := b.eng.IsLogin()
		if err != nil {
			slog.Debug("login check failed, treating as logged out", "err", err)
		}
		if login {
			return true
		}
		select {
		case <-ticker.C:
		case <-b.stop:
			return false
		case <-b.eng.Done():
			if b.handlers.OnError != nil {
				b.handlers.OnError(fmt.Errorf("hook connection lost"))
			}
			return false
		}
	}
}

func (b *Bot) dispatch(evt hook.Event) {
	switch evt.Name {
	case "message":
		var msg hook.Message
		if err := json.Unmarshal(evt.Payload, &msg); err != nil {
			slog.Warn("bad message event", "err", err)
			return
		}
		// Room messages carry their true sender in the metadata blob;
		// an undecodable blob falls back to the account's own wxid.
		// Direct messages need no decoding.
		sender := b.SelfWxid()
		switch {
		case msg.IsRoom():
			if s := blob.DecodeSenderExtra(msg.Extra).Sender; s != "" {
				sender = s
			}
		case !msg.Self:
			sender = msg.Talker
		}
		if b.handlers.OnMessage != nil {
			b.handlers.OnMessage(&msg, sender)
		}

	case "logout":
		slog.Info("logged out")
		if b.handlers.OnLogout != nil {
			b.handlers.OnLogout()
		}

	case "error":
		var payload struct {
			Message string `json:"message"`
		}
		json.Unmarshal(evt.Payload, &payload)
		if b.handlers.OnError != nil {
			b.handlers.OnError(fmt.Errorf("hook engine: %s", payload.Message))
		}

	default:
		slog.Debug("ignoring event", "event", evt.Name)
	}
}
