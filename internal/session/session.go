// Package session tracks who is signed in and tells interested stores when that changes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/crypto"
)

// Identity is the authenticated owner every stored row is scoped to.
type Identity struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Listener is called synchronously with the new identity, nil on sign-out.
type Listener func(ctx context.Context, id *Identity) error

// Provider exposes the current identity and change notifications.
type Provider interface {
	// Current returns the identity (nil when signed out) and whether it is still being resolved.
	Current() (*Identity, bool)
	Subscribe(l Listener) (unsubscribe func())
}

type subscription struct {
	id int
	fn Listener
}

// Manager is a Provider that persists the signed-in identity in the keyring.
type Manager struct {
	keyring crypto.Keyring
	log     logrus.FieldLogger

	mu        sync.RWMutex
	current   *Identity
	loading   bool
	listeners []subscription
	nextID    int
}

// NewManager returns a Manager in the loading state; call Restore to settle it.
func NewManager(kr crypto.Keyring, log logrus.FieldLogger) *Manager {
	return &Manager{
		keyring: kr,
		log:     log.WithField("module", "session"),
		loading: true,
	}
}

func (m *Manager) Current() (*Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, m.loading
	}
	id := *m.current
	return &id, m.loading
}

func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, subscription{id: id, fn: l})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.listeners {
			if s.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// Restore reads the saved identity from the keyring, settles the loading flag and notifies
// listeners. A missing or unreadable session restores as signed out.
func (m *Manager) Restore(ctx context.Context) error {
	var restored *Identity
	var restoreErr error

	raw, err := m.keyring.Get(crypto.SessionKeyName)
	switch {
	case errors.Is(err, crypto.ErrSecretNotFound):
	case err != nil:
		restoreErr = fmt.Errorf("failed to read saved session: %w", err)
	default:
		var id Identity
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			restoreErr = fmt.Errorf("saved session is corrupt: %w", err)
		} else if id.UserID == "" {
			restoreErr = errors.New("saved session has no user id")
		} else {
			restored = &id
		}
	}

	if restoreErr != nil {
		m.log.WithField("op", "restore").WithError(restoreErr).Warn("starting signed out")
	}
	return errors.Join(restoreErr, m.set(ctx, restored))
}

// SignIn makes id current, persists it and notifies listeners
func (m *Manager) SignIn(ctx context.Context, id Identity) error {
	if id.UserID == "" {
		return errors.New("identity has no user id")
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.keyring.Set(crypto.SessionKeyName, string(raw)); err != nil {
		// Still signed in for this process.
		m.log.WithField("op", "sign_in").WithError(err).Warn("failed to persist session")
	}
	return m.set(ctx, &id)
}

// SignOut clears the identity everywhere and notifies listeners
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.keyring.Delete(crypto.SessionKeyName); err != nil {
		m.log.WithField("op", "sign_out").WithError(err).Warn("failed to remove saved session")
	}
	return m.set(ctx, nil)
}

func (m *Manager) set(ctx context.Context, id *Identity) error {
	m.mu.Lock()
	m.current = id
	m.loading = false
	listeners := make([]Listener, len(m.listeners))
	for i, s := range m.listeners {
		listeners[i] = s.fn
	}
	m.mu.Unlock()

	fields := logrus.Fields{"op": "identity_change"}
	if id != nil {
		fields["user_id"] = id.UserID
	}
	m.log.WithFields(fields).Info("identity changed")

	var errs []error
	for _, l := range listeners {
		var cp *Identity
		if id != nil {
			v := *id
			cp = &v
		}
		if err := l(ctx, cp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Static is a fixed Provider, for tools and tests that run as a single owner.
type Static struct {
	ID *Identity
}

func (s Static) Current() (*Identity, bool) {
	return s.ID, false
}

func (s Static) Subscribe(Listener) func() {
	return func() {}
}
