package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Invoice.NumberPrefix != "INV" || cfg.Auth.DefaultRegion != "IN" || cfg.Auth.OTPTTL != 5*time.Minute {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Auth.OTPStore != OTPStoreDatabase {
		t.Errorf("expected database otp store, got %s", cfg.Auth.OTPStore)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
invoice:
  number_prefix: BILL
business:
  name: Studio
auth:
  otp_ttl: 10m
log:
  format: json
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Invoice.NumberPrefix != "BILL" || cfg.Business.Name != "Studio" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Auth.OTPTTL != 10*time.Minute || cfg.Log.Format != "json" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Auth.DefaultRegion != "IN" {
		t.Errorf("expected untouched default region, got %s", cfg.Auth.DefaultRegion)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FREELANCEDESK_DB_PATH", filepath.Join(dir, "other.db"))
	t.Setenv("WHATSAPP_INSTANCE_ID", "inst-1")
	t.Setenv("FREELANCEDESK_REDIS_ADDR", "redis:6379")

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != filepath.Join(dir, "other.db") {
		t.Errorf("db path: %s", cfg.Database.Path)
	}
	if cfg.WhatsApp.InstanceID != "inst-1" {
		t.Errorf("instance id: %s", cfg.WhatsApp.InstanceID)
	}
	if cfg.Auth.OTPStore != OTPStoreRedis || cfg.Auth.RedisAddr != "redis:6379" {
		t.Errorf("redis override: %+v", cfg.Auth)
	}
}

func TestLoad_DotEnvInConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("WHATSAPP_ACCESS_TOKEN=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// Registers cleanup so the value loaded from .env does not leak into other tests.
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "")
	os.Unsetenv("WHATSAPP_ACCESS_TOKEN")

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WhatsApp.AccessToken != "from-dotenv" {
		t.Errorf("expected token from .env, got %q", cfg.WhatsApp.AccessToken)
	}
}

func TestLoad_RejectsUnknownOTPStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("auth:\n  otp_store: memcached\n"), 0600)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveAndEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "db", "x.db")
	cfg.Invoice.OutputDir = filepath.Join(dir, "out")
	cfg.Log.File = filepath.Join(dir, "logs", "x.log")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{"db", "out", "logs"} {
		if _, err := os.Stat(filepath.Join(dir, d)); err != nil {
			t.Errorf("expected %s created: %v", d, err)
		}
	}

	path := filepath.Join(dir, "cfg", "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Invoice.OutputDir != cfg.Invoice.OutputDir {
		t.Errorf("round trip lost output dir: %s", loaded.Invoice.OutputDir)
	}
}
