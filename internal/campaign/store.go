// Package campaign keeps the panel management data (panels, panel users, third-party panel
// credentials and campaign reports) for the signed-in admin, with an audit trail of every change.
package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/repository"
	"github.com/andy/freelancedesk/internal/session"
)

// RecentAuditLimit is how many audit entries the store keeps in memory.
const RecentAuditLimit = 50

// Store mirrors the campaign tables for one admin. Mutations write through the gateways first
// and touch memory only after the gateway succeeded.
type Store struct {
	gw   repository.CampaignGateways
	log  logrus.FieldLogger
	now  func() time.Time
	cost int

	mu          sync.RWMutex
	identity    *session.Identity
	generation  uint64
	loading     bool
	panels      []domain.Panel
	users       []domain.PanelUser
	credentials []domain.Panel3Credential
	reports     []domain.CampaignReport
	audit       []domain.AuditLog

	unbind func()
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBcryptCost sets the cost used to hash credential passwords
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

func New(gw repository.CampaignGateways, log logrus.FieldLogger, opts ...Option) *Store {
	s := &Store{
		gw:      gw,
		log:     log.WithField("module", "campaign"),
		now:     func() time.Time { return time.Now().UTC() },
		cost:    bcrypt.DefaultCost,
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind follows p and reloads on every identity change
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

func (s *Store) Close() {
	if s.unbind != nil {
		s.unbind()
		s.unbind = nil
	}
}

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

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) owner() (string, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return "", 0, domain.ErrAuthenticationRequired
	}
	return s.identity.UserID, s.generation, nil
}

func (s *Store) apply(gen uint64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	fn()
}

func (s *Store) clear() {
	s.panels = nil
	s.users = nil
	s.credentials = nil
	s.reports = nil
	s.audit = nil
}

// LoadAll replaces every collection from the gateways. A failed load leaves them empty.
func (s *Store) LoadAll(ctx context.Context) error {
	log := s.log.WithField("op", "load_all")

	s.mu.Lock()
	gen := s.generation
	if s.identity == nil {
		s.clear()
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	owner := s.identity.UserID
	s.loading = true
	s.mu.Unlock()

	panels, err := s.gw.Panels.List(ctx, owner)
	var users []domain.PanelUser
	if err == nil {
		users, err = s.gw.PanelUsers.List(ctx, owner)
	}
	var creds []domain.Panel3Credential
	if err == nil {
		creds, err = s.gw.Credentials.List(ctx, owner)
	}
	var reports []domain.CampaignReport
	if err == nil {
		reports, err = s.gw.Reports.List(ctx, owner)
	}
	var audit []domain.AuditLog
	if err == nil {
		audit, err = s.gw.Audit.ListRecent(ctx, owner, RecentAuditLimit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		log.Debug("identity changed during load, discarding result")
		return nil
	}
	s.loading = false
	if err != nil {
		s.clear()
		log.WithError(err).Error("failed to load campaign data")
		return err
	}
	s.panels, s.users, s.credentials, s.reports, s.audit = panels, users, creds, reports, audit
	log.WithFields(logrus.Fields{
		"panels":  len(panels),
		"users":   len(users),
		"reports": len(reports),
	}).Debug("campaign data loaded")
	return nil
}

func (s *Store) fail(op, id string, err error) error {
	fields := logrus.Fields{"op": op}
	if id != "" {
		fields["id"] = id
	}
	s.log.WithFields(fields).WithError(err).Error("gateway call failed")
	return err
}
