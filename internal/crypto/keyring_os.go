package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// osKeyring stores secrets in the OS credential store (Keychain, Secret Service, wincred)
type osKeyring struct{}

func (k *osKeyring) Get(name string) (string, error) {
	v, err := keyring.Get(ServiceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%s not found in keychain: %w", name, ErrSecretNotFound)
		}
		return "", fmt.Errorf("failed to retrieve %s from keychain: %w", name, err)
	}
	if v == "" {
		return "", fmt.Errorf("%s is empty: %w", name, ErrSecretNotFound)
	}
	return v, nil
}

func (k *osKeyring) Set(name, value string) error {
	if value == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(ServiceName, name, value); err != nil {
		return fmt.Errorf("failed to store %s in keychain: %w", name, err)
	}
	return nil
}

// Delete removes the secret; a missing secret is not an error
func (k *osKeyring) Delete(name string) error {
	err := keyring.Delete(ServiceName, name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keychain: %w", name, err)
	}
	return nil
}

// IsAvailable checks if the keychain is accessible
func (k *osKeyring) IsAvailable() bool {
	// Test keychain availability with a key we immediately delete
	testKey := "__freelancedesk_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, testKey)
	return true
}
