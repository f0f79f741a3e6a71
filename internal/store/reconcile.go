package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

// Reconcile marks every active project whose payments cover its total as completed, returning
// the ids it changed. Transitions only go forward: completed projects are never reopened, and
// only active projects are looked at. Writes go through UpdateProject, which does not
// reconcile, so the rule cannot retrigger itself.
func (s *Store) Reconcile(ctx context.Context) ([]string, error) {
	if _, _, err := s.owner(); err != nil {
		return nil, nil
	}

	snap := s.Snapshot()
	completed := domain.ProjectStatusCompleted
	var changed []string
	var errs []error

	for _, p := range snap.Projects {
		if !p.IsActive() {
			continue
		}
		paid := finance.PaidAmount(snap, p.ID)
		if paid.LessThan(p.TotalAmount) {
			continue
		}

		log := s.log.WithFields(logrus.Fields{
			"op":         "reconcile",
			"project_id": p.ID,
			"paid":       paid.String(),
			"total":      p.TotalAmount.String(),
		})
		if _, err := s.UpdateProject(ctx, p.ID, domain.ProjectPatch{Status: &completed}); err != nil {
			log.WithError(err).Error("failed to complete fully paid project")
			errs = append(errs, err)
			continue
		}
		log.Info("project fully paid, marked completed")
		changed = append(changed, p.ID)
	}

	if len(errs) > 0 {
		return changed, fmt.Errorf("%w: %w", domain.ErrReconcile, errors.Join(errs...))
	}
	return changed, nil
}
