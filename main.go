package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfern/wxbridge/archive"
	"github.com/bitfern/wxbridge/bot"
	"github.com/bitfern/wxbridge/gateway"
	"github.com/bitfern/wxbridge/hook"
	"github.com/bitfern/wxbridge/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := LoadConfig()

	arc, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		slog.Error("failed to open archive", "err", err)
		os.Exit(1)
	}
	defer arc.Close()

	client := hook.NewClient(cfg.HookURL, cfg.HookToken)
	if err := client.Dial(); err != nil {
		slog.Error("failed to reach hook engine", "err", err)
		os.Exit(1)
	}
	defer client.Close()

	var opts []gateway.Option
	if cfg.Unsafe {
		slog.Warn("throttling disabled; do not run a real account this way")
		opts = append(opts, gateway.Unsafe())
	}
	gw := gateway.New(client, opts...)

	b := bot.New(client, bot.Handlers{
		OnLogin: func(info *hook.UserInfo) {
			st := store.New(client, info.Wxid)
			contacts, err := st.Contacts()
			if err != nil {
				slog.Warn("contact sync failed", "err", err)
				return
			}
			rooms, err := st.Rooms()
			if err != nil {
				slog.Warn("room sync failed", "err", err)
				return
			}
			slog.Info("synced", "contacts", len(contacts), "rooms", len(rooms))
		},
		OnLogout: func() {
			slog.Info("session logged out")
		},
		OnMessage: func(msg *hook.Message, sender string) {
			slog.Info("message", "talker", msg.Talker, "sender", sender, "type", msg.Type)
			if err := arc.LogInbound(msg, sender); err != nil {
				slog.Warn("archive inbound failed", "err", err)
			}
		},
		OnError: func(err error) {
			slog.Error("fatal", "err", err)
		},
	})

	go b.Run()
	defer b.Stop()

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Outbound sends come in over HTTP and leave through the paced
	// gateway; the handler blocks until both limiters admit the send.
	http.HandleFunc("/send", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"POST only"}`, http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			To      string `json:"to"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" || req.Content == "" {
			http.Error(w, `{"error":"to and content required"}`, http.StatusBadRequest)
			return
		}
		if err := gw.SendText(req.To, req.Content); err != nil {
			slog.Error("send failed", "to", req.To, "err", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		out, err := arc.LogOutbound(req.To, "text", req.Content)
		if err != nil {
			slog.Warn("archive outbound failed", "err", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})

	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"connected":  client.IsConnected(),
			"selfWxid":   b.SelfWxid(),
			"recipients": gw.Recipients().Len(),
			"queued":     gw.Global().Queued(),
		})
	})

	go func() {
		slog.Info("wxbridge starting", "addr", cfg.StatusAddr, "hook", cfg.HookURL)
		if err := http.ListenAndServe(cfg.StatusAddr, nil); err != nil {
			slog.Error("status server failed", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")
}
