//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
	"os"
)

// fallbackKeyring uses the Secret Service when a session bus offers one. Otherwise the database
// key comes from FREELANCEDESK_DB_KEY and other secrets live only in memory.
type fallbackKeyring struct {
	os        *osKeyring
	mem       *MemoryKeyring
	available bool
}

func newPlatformKeyring() Keyring {
	k := &osKeyring{}
	return &fallbackKeyring{os: k, mem: NewMemoryKeyring(), available: k.IsAvailable()}
}

func (k *fallbackKeyring) Get(name string) (string, error) {
	if k.available {
		return k.os.Get(name)
	}
	if name == DBKeyName {
		key := os.Getenv(EnvDBKey)
		if key == "" {
			return "", fmt.Errorf("%s environment variable not set: %w", EnvDBKey, ErrSecretNotFound)
		}
		return key, nil
	}
	return k.mem.Get(name)
}

func (k *fallbackKeyring) Set(name, value string) error {
	if k.available {
		return k.os.Set(name, value)
	}
	if name == DBKeyName {
		if value == "" {
			return errors.New("password cannot be empty")
		}
		return fmt.Errorf("keyring not available on this platform: please set %s environment variable to '%s'", EnvDBKey, value)
	}
	return k.mem.Set(name, value)
}

func (k *fallbackKeyring) Delete(name string) error {
	if k.available {
		return k.os.Delete(name)
	}
	if name == DBKeyName {
		return fmt.Errorf("keyring not available on this platform: please unset %s environment variable manually", EnvDBKey)
	}
	return k.mem.Delete(name)
}

func (k *fallbackKeyring) IsAvailable() bool {
	return k.available || os.Getenv(EnvDBKey) != ""
}
