package session

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/crypto"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestManager_StartsLoading(t *testing.T) {
	m := NewManager(crypto.NewMemoryKeyring(), testLogger())
	id, loading := m.Current()
	if id != nil || !loading {
		t.Fatalf("expected nil identity while loading, got %v %v", id, loading)
	}
}

func TestManager_SignInPersistsAndRestores(t *testing.T) {
	kr := crypto.NewMemoryKeyring()
	ctx := context.Background()

	m := NewManager(kr, testLogger())
	if err := m.SignIn(ctx, Identity{UserID: "u1", Phone: "+15550001"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	restored := NewManager(kr, testLogger())
	var seen *Identity
	restored.Subscribe(func(_ context.Context, id *Identity) error {
		seen = id
		return nil
	})
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	id, loading := restored.Current()
	if loading || id == nil || id.UserID != "u1" {
		t.Fatalf("expected restored u1, got %v loading=%v", id, loading)
	}
	if seen == nil || seen.UserID != "u1" {
		t.Errorf("expected listener to see u1, got %v", seen)
	}
}

func TestManager_RestoreWithoutSession(t *testing.T) {
	m := NewManager(crypto.NewMemoryKeyring(), testLogger())
	if err := m.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	id, loading := m.Current()
	if id != nil || loading {
		t.Errorf("expected signed out and settled, got %v %v", id, loading)
	}
}

func TestManager_RestoreCorruptSession(t *testing.T) {
	kr := crypto.NewMemoryKeyring()
	_ = kr.Set(crypto.SessionKeyName, "{not json")
	m := NewManager(kr, testLogger())
	if err := m.Restore(context.Background()); err == nil {
		t.Fatal("expected error for corrupt session")
	}
	if id, loading := m.Current(); id != nil || loading {
		t.Errorf("expected signed out, got %v %v", id, loading)
	}
}

func TestManager_SignOutNotifiesAndJoinsErrors(t *testing.T) {
	m := NewManager(crypto.NewMemoryKeyring(), testLogger())
	ctx := context.Background()
	_ = m.SignIn(ctx, Identity{UserID: "u1"})

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	calls := 0
	m.Subscribe(func(_ context.Context, id *Identity) error {
		calls++
		if id != nil {
			t.Errorf("expected nil identity on sign out")
		}
		return errA
	})
	m.Subscribe(func(context.Context, *Identity) error {
		calls++
		return errB
	})

	err := m.SignOut(ctx)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both listener errors, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 listener calls, got %d", calls)
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager(crypto.NewMemoryKeyring(), testLogger())
	calls := 0
	unsub := m.Subscribe(func(context.Context, *Identity) error {
		calls++
		return nil
	})
	unsub()
	_ = m.SignIn(context.Background(), Identity{UserID: "u1"})
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}

func TestManager_SignInRequiresUser(t *testing.T) {
	m := NewManager(crypto.NewMemoryKeyring(), testLogger())
	if err := m.SignIn(context.Background(), Identity{}); err == nil {
		t.Error("expected error for empty identity")
	}
}
