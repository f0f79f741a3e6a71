package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/config"
	"github.com/andy/freelancedesk/internal/crypto"
	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Invoice.OutputDir = filepath.Join(dir, "invoices")
	cfg.Log.File = filepath.Join(dir, "test.log")
	return cfg
}

func TestNewLogger(t *testing.T) {
	cfg := config.LogConfig{Level: "debug", Format: "json", File: filepath.Join(t.TempDir(), "x.log")}
	log, closer, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer closer.Close()
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", log.Formatter)
	}

	if _, _, err := NewLogger(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewWithConfig_RestoresSessionAndLoads(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	kr := crypto.NewMemoryKeyring()
	kr.Set(crypto.DBKeyName, "test-password")

	a, err := NewWithConfig(ctx, cfg, kr)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	if a.Store.Identity() != nil {
		t.Fatal("expected signed out without a saved session")
	}
	if err := a.Session.SignIn(ctx, session.Identity{UserID: "u1", Phone: "+919876543210"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, err := a.Store.AddClient(ctx, domain.ClientInput{Name: "Acme"}); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Second start reads the session saved in the keyring.
	b, err := NewWithConfig(ctx, cfg, kr)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer b.Close()
	if id := b.Store.Identity(); id == nil || id.UserID != "u1" {
		t.Fatalf("expected restored identity u1, got %+v", id)
	}
	if got := b.Store.Clients(); len(got) != 1 || got[0].Name != "Acme" {
		t.Errorf("expected Acme loaded, got %+v", got)
	}
}
