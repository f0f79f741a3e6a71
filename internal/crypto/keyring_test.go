package crypto

import (
	"errors"
	"testing"
)

func TestMemoryKeyring(t *testing.T) {
	k := NewMemoryKeyring()

	if _, err := k.Get(SessionKeyName); !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}
	if err := k.Set(SessionKeyName, ""); err == nil {
		t.Error("expected empty secret to be rejected")
	}
	if err := k.Set(SessionKeyName, "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := k.Get(SessionKeyName)
	if err != nil || v != "value" {
		t.Fatalf("Get: %q %v", v, err)
	}
	if err := k.Delete(SessionKeyName); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := k.Get(SessionKeyName); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("expected secret gone, got %v", err)
	}
}
