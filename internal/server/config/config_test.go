package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Server.Redis.Addr, DefaultRedisAddr)
	}
	if cfg.Server.Redis.ReadTimeout != 0 || cfg.Server.Redis.WriteTimeout != 0 || cfg.Server.Redis.IdleTimeout != 0 {
		t.Error("connection deadlines should be disabled by default")
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("Metrics should be disabled by default")
	}
	if cfg.Storage.Engine != "memory" {
		t.Errorf("Storage.Engine = %q, want memory", cfg.Storage.Engine)
	}
	if got := cfg.Storage.Seed["ping"]; got != "pong" {
		t.Errorf("Seed[ping] = %q, want pong", got)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestConstants(t *testing.T) {
	if DefaultRedisAddr != "127.0.0.1:6378" {
		t.Errorf("DefaultRedisAddr = %q", DefaultRedisAddr)
	}
	if DefaultEngine != "memory" {
		t.Errorf("DefaultEngine = %q", DefaultEngine)
	}
}

// ============================================================
// Verify
// ============================================================

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *ServerConfig)
		want   string
	}{
		{"empty redis addr", func(c *ServerConfig) { c.Server.Redis.Addr = "" }, "server.redis.addr is required"},
		{"redis addr without port", func(c *ServerConfig) { c.Server.Redis.Addr = "localhost" }, "invalid address"},
		{"negative timeout", func(c *ServerConfig) { c.Server.Redis.ReadTimeout = -time.Second }, "timeouts"},
		{"negative rate", func(c *ServerConfig) { c.Server.Redis.RateLimit = -1 }, "rate_limit"},
		{"negative max conns", func(c *ServerConfig) { c.Server.Redis.MaxConnections = -1 }, "max_connections"},
		{"metrics addr conflict", func(c *ServerConfig) {
			c.Server.Metrics.Enabled = true
			c.Server.Metrics.Addr = c.Server.Redis.Addr
		}, "conflicts"},
		{"unknown engine", func(c *ServerConfig) { c.Storage.Engine = "rocks" }, "storage.engine"},
		{"badger without dir", func(c *ServerConfig) {
			c.Storage.Engine = "badger"
			c.Storage.DataDir = ""
		}, "data_dir"},
		{"bad gc threshold", func(c *ServerConfig) {
			c.Storage.Engine = "badger"
			c.Storage.Badger.GCThreshold = 1.5
		}, "gc_threshold"},
		{"unknown level", func(c *ServerConfig) { c.Log.Level = "loud" }, "log.level"},
		{"unknown format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Storage.DataDir = t.TempDir()
			tt.mutate(cfg)

			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Verify() error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestVerify_MetricsDisabledIgnoresAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Metrics.Addr = ""

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestVerify_BadgerCreatesDataDir(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "subdir", "data")

	cfg := Default()
	cfg.Storage.Engine = "badger"
	cfg.Storage.DataDir = newDir

	if err := Verify(cfg); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if _, err := os.Stat(newDir); os.IsNotExist(err) {
		t.Error("Data directory should have been created")
	}
}

// ============================================================
// Sanitize
// ============================================================

func TestSanitize(t *testing.T) {
	long := strings.Repeat("v", 500)
	cfg := Default()
	cfg.Storage.Seed = map[string]string{"ping": "pong", "blob": long}

	sanitized := Sanitize(cfg)

	if cfg.Storage.Seed["blob"] != long {
		t.Error("Original config should not be modified")
	}
	if sanitized.Storage.Seed["ping"] != "pong" {
		t.Errorf("short seed value changed to %q", sanitized.Storage.Seed["ping"])
	}
	if got := sanitized.Storage.Seed["blob"]; len(got) >= len(long) || !strings.HasSuffix(got, "(500 bytes)") {
		t.Errorf("long seed value = %q, want truncated", got)
	}
}

func TestSanitize_NilSeed(t *testing.T) {
	cfg := Default()
	cfg.Storage.Seed = nil

	if Sanitize(cfg).Storage.Seed != nil {
		t.Error("nil seed should stay nil")
	}
}
