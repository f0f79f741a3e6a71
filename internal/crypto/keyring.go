package crypto

import (
	"errors"
	"sync"
)

// Keyring provides named secret storage
type Keyring interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
	IsAvailable() bool
}

const (
	ServiceName = "freelancedesk"

	// DBKeyName holds the database encryption password.
	DBKeyName = "db-encryption-key"
	// SessionKeyName holds the signed-in identity as JSON.
	SessionKeyName = "session"

	// EnvDBKey supplies the database password where no OS keyring exists.
	EnvDBKey = "FREELANCEDESK_DB_KEY"
)

// ErrSecretNotFound is returned by Get when nothing is stored under the name.
var ErrSecretNotFound = errors.New("secret not found")

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}

// MemoryKeyring keeps secrets for the life of the process.
type MemoryKeyring struct {
	mu      sync.Mutex
	secrets map[string]string
}

func NewMemoryKeyring() *MemoryKeyring {
	return &MemoryKeyring{secrets: make(map[string]string)}
}

func (k *MemoryKeyring) Get(name string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.secrets[name]
	if !ok {
		return "", ErrSecretNotFound
	}
	return v, nil
}

func (k *MemoryKeyring) Set(name, value string) error {
	if value == "" {
		return errors.New("secret cannot be empty")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.secrets[name] = value
	return nil
}

func (k *MemoryKeyring) Delete(name string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.secrets, name)
	return nil
}

func (k *MemoryKeyring) IsAvailable() bool {
	return true
}
