package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HookURL     string
	HookToken   string
	ArchivePath string
	StatusAddr  string
	Unsafe      bool
}

func LoadConfig() Config {
	// Optional .env next to the binary; real env wins.
	godotenv.Load()

	cfg := Config{}

	flag.StringVar(&cfg.HookURL, "hook-url", envOrDefault("WXBRIDGE_HOOK_URL", "127.0.0.1:8001"), "Hook engine websocket address")
	flag.StringVar(&cfg.HookToken, "token", envOrDefault("WXBRIDGE_HOOK_TOKEN", ""), "Hook engine auth token")
	flag.StringVar(&cfg.ArchivePath, "archive", envOrDefault("WXBRIDGE_ARCHIVE", "wxbridge.db"), "Local archive SQLite path")
	flag.StringVar(&cfg.StatusAddr, "addr", defaultAddr(), "Status HTTP listen address")
	flag.BoolVar(&cfg.Unsafe, "unsafe", os.Getenv("WXBRIDGE_UNSAFE") == "1", "Disable send throttling (test engines only)")
	flag.Parse()

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultAddr() string {
	if v := os.Getenv("WXBRIDGE_ADDR"); v != "" {
		return v
	}
	// Railway, Render, etc. set PORT
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8091"
}
