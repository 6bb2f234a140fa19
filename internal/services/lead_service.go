package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadcrm/internal/apperr"
	"leadcrm/internal/authz"
	"leadcrm/internal/models"
	"leadcrm/internal/pdf"
	"leadcrm/internal/repositories"
)

// LeadService applies the ownership policy on top of the lead store:
// ordinary callers only reach their own leads, elevated roles reach every
// lead, and the audit role reads everything but writes nothing.
type LeadService struct {
	repo     repositories.LeadRepository
	reports  pdf.Generator
	notifier LeadNotifier
	log      *zap.Logger
	now      func() time.Time
}

// NewLeadService builds the service. reports and notifier are optional.
func NewLeadService(repo repositories.LeadRepository, reports pdf.Generator, notifier LeadNotifier, log *zap.Logger) *LeadService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadService{repo: repo, reports: reports, notifier: notifier, log: log, now: time.Now}
}

// WithClock returns a copy reading time from now.
func (s *LeadService) WithClock(now func() time.Time) *LeadService {
	cp := *s
	cp.now = now
	return &cp
}

// scope is the owner filter for who; empty means unscoped.
func scope(who models.Identity) string {
	if authz.CanSeeAll(who.RoleID) {
		return ""
	}
	return who.Email
}

func canWrite(who models.Identity) error {
	if authz.IsReadOnly(who.RoleID) {
		return fmt.Errorf("role %s is read-only: %w", authz.RoleName(who.RoleID), apperr.ErrForbidden)
	}
	return nil
}

func (s *LeadService) filter(who models.Identity, q models.LeadQuery) repositories.LeadFilter {
	return repositories.LeadFilter{
		OwnerEmail: scope(who),
		Status:     strings.TrimSpace(q.Status),
		Search:     strings.TrimSpace(q.Search),
		Limit:      q.Limit,
	}
}

func (s *LeadService) List(ctx context.Context, who models.Identity, q models.LeadQuery) ([]*models.Lead, error) {
	if strings.Contains(q.Search, "*") {
		return nil, fmt.Errorf("%w: search may not contain '*'", apperr.ErrInvalid)
	}
	leads, err := s.repo.List(ctx, s.filter(who, q))
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	return leads, nil
}

func (s *LeadService) Get(ctx context.Context, who models.Identity, id int64) (*models.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id, scope(who))
	if err != nil {
		return nil, fmt.Errorf("get lead %d: %w", id, err)
	}
	return lead, nil
}

func (s *LeadService) Create(ctx context.Context, who models.Identity, in *models.LeadInput) (*models.Lead, error) {
	if err := canWrite(who); err != nil {
		return nil, err
	}
	lead := &models.Lead{OwnerEmail: who.Email}
	in.Apply(lead)
	if lead.Created == nil {
		today := models.DateOf(s.now().UTC())
		lead.Created = &today
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	s.log.Info("lead created",
		zap.Int64("lead_id", lead.ID),
		zap.String("owner", lead.OwnerEmail),
		zap.String("status", lead.Status),
	)

	if s.notifier != nil {
		if err := s.notifier.LeadCreated(ctx, lead); err != nil {
			s.log.Warn("lead notification failed", zap.Int64("lead_id", lead.ID), zap.Error(err))
		}
	}
	return lead, nil
}

// Update replaces every mutable field of lead id. The owner never changes
// and an omitted created date keeps the stored one.
func (s *LeadService) Update(ctx context.Context, who models.Identity, id int64, in *models.LeadInput) (*models.Lead, error) {
	if err := canWrite(who); err != nil {
		return nil, err
	}
	lead := &models.Lead{ID: id}
	in.Apply(lead)
	if err := s.repo.Update(ctx, lead, scope(who)); err != nil {
		return nil, fmt.Errorf("update lead %d: %w", id, err)
	}
	s.log.Info("lead updated", zap.Int64("lead_id", id), zap.String("by", who.Email))
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, who models.Identity, id int64) error {
	if err := canWrite(who); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, scope(who)); err != nil {
		return fmt.Errorf("delete lead %d: %w", id, err)
	}
	s.log.Info("lead deleted", zap.Int64("lead_id", id), zap.String("by", who.Email))
	return nil
}

// Export renders the leads List would return as a PDF report.
func (s *LeadService) Export(ctx context.Context, who models.Identity, q models.LeadQuery) ([]byte, error) {
	if s.reports == nil {
		return nil, fmt.Errorf("lead export is not configured")
	}
	leads, err := s.List(ctx, who, q)
	if err != nil {
		return nil, err
	}
	f := s.filter(who, q)
	return s.reports.LeadReport(pdf.LeadReport{
		Owner:       f.OwnerEmail,
		Status:      f.Status,
		Search:      f.Search,
		GeneratedAt: s.now(),
		Leads:       leads,
	})
}
