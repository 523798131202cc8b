package main

import (
	"fmt"
	"os"
	"time"

	"github.com/andrewbaxter/kwa/scroll"
	"github.com/hashicorp/hcl"
)

// fileConfig is the HCL-decodable shape of an on-disk config override.
// Every field is optional; zero values fall back to scroll.DefaultConfig.
type fileConfig struct {
	RequestCount      int    `hcl:"request_count"`
	MinReserve        int    `hcl:"min_reserve"`
	MaxReserve        int    `hcl:"max_reserve"`
	BufferPx          float64 `hcl:"buffer_px"`
	ScrollDebounceMs  int    `hcl:"scroll_debounce_ms"`
	MuteWindowMs      int    `hcl:"mute_window_ms"`
	InitialMuteMs     int    `hcl:"initial_mute_window_ms"`
	Database          string `hcl:"database"`
	OutboxDatabase    string `hcl:"outbox_database"`
	ServerURL         string `hcl:"server_url"`
}

// loadConfig reads an HCL config file at path, overlaying any set
// fields atop scroll.DefaultConfig. A missing file is not an error;
// the defaults are used as-is, matching a typical zero-config first run.
func loadConfig(path string) (scroll.EngineConfig, fileConfig, error) {
	cfg := scroll.DefaultConfig()
	var fc fileConfig
	fc.Database = "kwa-messages.db"
	fc.OutboxDatabase = "kwa-outbox.db"

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, fc, nil
	}
	if err != nil {
		return cfg, fc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := hcl.Decode(&fc, string(data)); err != nil {
		return cfg, fc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if fc.RequestCount > 0 {
		cfg.RequestCount = fc.RequestCount
	}
	if fc.MinReserve > 0 {
		cfg.MinReserve = fc.MinReserve
	}
	if fc.MaxReserve > 0 {
		cfg.MaxReserve = fc.MaxReserve
	}
	if fc.BufferPx > 0 {
		cfg.BufferPx = fc.BufferPx
	}
	if fc.ScrollDebounceMs > 0 {
		cfg.ScrollDebounce = time.Duration(fc.ScrollDebounceMs) * time.Millisecond
	}
	if fc.MuteWindowMs > 0 {
		cfg.MuteWindow = time.Duration(fc.MuteWindowMs) * time.Millisecond
	}
	if fc.InitialMuteMs > 0 {
		cfg.InitialMuteWindow = time.Duration(fc.InitialMuteMs) * time.Millisecond
	}
	return cfg, fc, nil
}
