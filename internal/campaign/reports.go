package campaign

import (
	"context"
	"slices"

	"github.com/andy/freelancedesk/internal/domain"
)

func (s *Store) checkReportRefs(panelID, userID, credentialID *string) error {
	if panelID != nil {
		if _, ok := s.Panel(*panelID); !ok {
			return domain.NewValidationError("unknown panel %q", *panelID)
		}
	}
	if userID != nil {
		if _, ok := s.PanelUser(*userID); !ok {
			return domain.NewValidationError("unknown panel user %q", *userID)
		}
	}
	if credentialID != nil && *credentialID != "" {
		if _, ok := s.Credential(*credentialID); !ok {
			return domain.NewValidationError("unknown credential %q", *credentialID)
		}
	}
	return nil
}

// AddReport files a campaign report. New reports start pending.
func (s *Store) AddReport(ctx context.Context, in domain.CampaignReportInput) (domain.CampaignReport, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.CampaignReport{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.CampaignReport{}, err
	}
	if err := s.checkReportRefs(&in.PanelID, &in.AssignedPanelUserID, in.Panel3CredentialID); err != nil {
		return domain.CampaignReport{}, err
	}

	r, err := s.gw.Reports.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.CampaignReport{}, s.fail("add_report", "", err)
	}
	s.apply(gen, func() {
		s.reports = append(s.reports, cloneReport(r))
	})
	s.record(ctx, gen, owner, tableReports, r.ID, domain.AuditCreate, nil, r)
	return r, nil
}

func (s *Store) UpdateReport(ctx context.Context, id string, patch domain.CampaignReportPatch) (domain.CampaignReport, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.CampaignReport{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.CampaignReport{}, err
	}
	if err := s.checkReportRefs(patch.PanelID, patch.AssignedPanelUserID, patch.Panel3CredentialID); err != nil {
		return domain.CampaignReport{}, err
	}
	old, known := s.Report(id)

	r, err := s.gw.Reports.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.CampaignReport{}, s.fail("update_report", id, err)
	}
	s.apply(gen, func() {
		if i := slices.IndexFunc(s.reports, func(x domain.CampaignReport) bool { return x.ID == id }); i >= 0 {
			s.reports[i] = cloneReport(r)
		}
	})
	s.record(ctx, gen, owner, tableReports, id, domain.AuditUpdate, orNil(old, known), r)
	return r, nil
}

// SetReportStatus is UpdateReport for the status alone
func (s *Store) SetReportStatus(ctx context.Context, id string, status domain.CampaignStatus) (domain.CampaignReport, error) {
	return s.UpdateReport(ctx, id, domain.CampaignReportPatch{Status: &status})
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}
	old, known := s.Report(id)

	if err := s.gw.Reports.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_report", id, err)
	}
	s.apply(gen, func() {
		s.reports = slices.DeleteFunc(s.reports, func(r domain.CampaignReport) bool { return r.ID == id })
	})
	s.record(ctx, gen, owner, tableReports, id, domain.AuditDelete, orNil(old, known), nil)
	return nil
}
