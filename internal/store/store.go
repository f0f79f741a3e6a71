// Package store keeps the signed-in owner's clients, projects, payments, payment methods and
// business profile in memory, writing every change through to the gateways first.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/repository"
	"github.com/andy/freelancedesk/internal/session"
)

// Store is the write-through mirror of one owner's data. The lock is never held across a
// gateway call, so two concurrent updates of the same row are last-write-wins.
type Store struct {
	gw  repository.Gateways
	log logrus.FieldLogger
	now func() time.Time

	mu       sync.RWMutex
	identity *session.Identity
	// generation changes with every identity change; loads started under an older one are
	// discarded.
	generation uint64
	loading    bool

	clients  []domain.Client
	projects []domain.Project
	payments []domain.Payment
	methods  []domain.PaymentMethod
	profile  *domain.BusinessProfile

	unbind func()
}

type Option func(*Store)

// WithClock overrides time.Now for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty, unbound Store
func New(gw repository.Gateways, log logrus.FieldLogger, opts ...Option) *Store {
	s := &Store{
		gw:  gw,
		log: log.WithField("module", "store"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind follows p: every identity change reloads the store. If p has already settled its
// identity, the store loads it now.
func (s *Store) Bind(ctx context.Context, p session.Provider) error {
	if s.unbind != nil {
		s.unbind()
	}
	s.unbind = p.Subscribe(s.SetIdentity)

	id, loading := p.Current()
	if loading {
		return nil
	}
	return s.SetIdentity(ctx, id)
}

// Close detaches the store from its provider
func (s *Store) Close() {
	if s.unbind != nil {
		s.unbind()
		s.unbind = nil
	}
}

// SetIdentity switches owner and reloads. A nil identity empties the store.
func (s *Store) SetIdentity(ctx context.Context, id *session.Identity) error {
	s.mu.Lock()
	if id != nil {
		cp := *id
		s.identity = &cp
	} else {
		s.identity = nil
	}
	s.generation++
	s.mu.Unlock()

	return s.LoadAll(ctx)
}

// Identity returns the bound owner, or nil
func (s *Store) Identity() *session.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Loading reports whether a LoadAll is in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// owner returns the bound user id and the generation it belongs to.
func (s *Store) owner() (string, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return "", 0, domain.ErrAuthenticationRequired
	}
	return s.identity.UserID, s.generation, nil
}

// apply runs fn under the write lock if the identity has not changed since gen.
func (s *Store) apply(gen uint64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	fn()
}

func (s *Store) clear() {
	s.clients = nil
	s.projects = nil
	s.payments = nil
	s.methods = nil
	s.profile = nil
}

// LoadAll replaces every collection from the gateways. With no identity it just empties them;
// on a gateway error it leaves them empty and returns the error.
func (s *Store) LoadAll(ctx context.Context) error {
	log := s.log.WithField("op", "load_all")

	s.mu.Lock()
	gen := s.generation
	if s.identity == nil {
		s.clear()
		s.loading = false
		s.mu.Unlock()
		log.Debug("no identity, collections cleared")
		return nil
	}
	owner := s.identity.UserID
	s.loading = true
	s.mu.Unlock()

	clients, projects, payments, methods, profile, err := s.fetch(ctx, owner)

	stale := false
	s.mu.Lock()
	if s.generation != gen {
		stale = true
	} else {
		s.loading = false
		if err != nil {
			s.clear()
		} else {
			s.clients = clients
			s.projects = projects
			s.payments = payments
			s.methods = methods
			s.profile = profile
		}
	}
	s.mu.Unlock()

	if stale {
		log.Debug("identity changed during load, result discarded")
		return nil
	}
	if err != nil {
		log.WithError(err).Error("failed to load data")
		return err
	}

	log.WithFields(logrus.Fields{
		"user_id":         owner,
		"clients":         len(clients),
		"projects":        len(projects),
		"payments":        len(payments),
		"payment_methods": len(methods),
	}).Info("data loaded")

	// Loading replaces the payment collection, so the status rule runs here too.
	if _, err := s.Reconcile(ctx); err != nil {
		return err
	}
	return nil
}

func (s *Store) fetch(ctx context.Context, owner string) (
	[]domain.Client, []domain.Project, []domain.Payment, []domain.PaymentMethod, *domain.BusinessProfile, error,
) {
	clients, err := s.gw.Clients.List(ctx, owner)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	projects, err := s.gw.Projects.List(ctx, owner)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	payments, err := s.gw.Payments.List(ctx, owner)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	methods, err := s.gw.PaymentMethods.List(ctx, owner)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	profile, err := s.gw.BusinessProfile.Get(ctx, owner)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return clients, projects, payments, methods, profile, nil
}

// fail logs a gateway failure and hands the error back.
func (s *Store) fail(op string, id string, err error) error {
	fields := logrus.Fields{"op": op}
	if id != "" {
		fields["id"] = id
	}
	s.log.WithFields(fields).WithError(err).Error("gateway call failed")
	return err
}
