package campaign

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/domain"
)

// record appends an audit entry for a committed mutation. Failures are logged and swallowed:
// the mutation itself already succeeded.
func (s *Store) record(ctx context.Context, gen uint64, owner, table, recordID string, action domain.AuditAction, oldValue, newValue any) {
	log := s.log.WithFields(logrus.Fields{"op": "audit", "table": table, "record_id": recordID})

	entry := domain.AuditLog{
		UserID:    &owner,
		RecordID:  recordID,
		TableName: table,
		Action:    action,
		Timestamp: s.now(),
	}
	var err error
	if entry.OldValue, err = auditJSON(oldValue); err != nil {
		log.WithError(err).Warn("failed to encode old value")
	}
	if entry.NewValue, err = auditJSON(newValue); err != nil {
		log.WithError(err).Warn("failed to encode new value")
	}

	saved, err := s.gw.Audit.Insert(ctx, entry)
	if err != nil {
		log.WithError(err).Warn("failed to write audit log")
		return
	}
	s.apply(gen, func() {
		s.audit = slices.Insert(s.audit, 0, saved)
		if len(s.audit) > RecentAuditLimit {
			s.audit = s.audit[:RecentAuditLimit]
		}
	})
}

func auditJSON(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := string(b)
	return &out, nil
}

// AuditLogs returns the most recent entries, newest first
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.audit)
}
