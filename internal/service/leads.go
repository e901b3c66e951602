package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/cache"
	"gitlab.com/yelinaung/event-crm/internal/crm"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

func (s *CRM) allLeads(ctx context.Context) ([]models.Lead, error) {
	return cache.Load(ctx, s.cache, cache.KeyLeads, func(ctx context.Context) ([]models.Lead, error) {
		return s.leads.List(ctx, models.LeadFilter{})
	})
}

// ListLeads returns leads matching filter, newest first.
func (s *CRM) ListLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	all, err := s.allLeads(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Lead, 0, len(all))
	for i := range all {
		if filter.Status != nil && all[i].Status != *filter.Status {
			continue
		}
		if filter.CreatedSince != nil && all[i].CreatedAt.Before(*filter.CreatedSince) {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}

// GetLead reads one lead from the store.
func (s *CRM) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	return s.leads.GetByID(ctx, id)
}

// CreateLead validates and stores a new lead.
func (s *CRM) CreateLead(ctx context.Context, in *models.NewLead) (*models.Lead, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	crm.ApplyCreateLifecycle(in, s.now())

	lead, err := s.leads.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mutated(ctx, cache.KeyLeads, "create", cache.KeyLeads)
	logger.Log.Info().
		Str("lead_id", lead.ID.String()).
		Str("email", logger.SanitizeEmail(lead.Email)).
		Str("phone", logger.SanitizePhone(lead.Phone)).
		Str("source", string(lead.Source)).
		Msg("Lead created")
	return lead, nil
}

// UpdateLead applies a partial update. Moving a lead to won stamps won_at.
// Expense name snapshots are not touched by a rename.
func (s *CRM) UpdateLead(ctx context.Context, id uuid.UUID, u *models.LeadUpdate) (*models.Lead, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	trimLeadUpdate(u)
	crm.ApplyLifecycle(u, s.now())

	lead, err := s.leads.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}

	s.mutated(ctx, cache.KeyLeads, "update", cache.KeyLeads)
	if u.Status != nil {
		logger.Log.Info().
			Str("lead_id", id.String()).
			Str("status", string(*u.Status)).
			Msg("Lead status changed")
	}
	return lead, nil
}

// UpdateLeadStatus moves a lead to status, carrying optional extra fields
// such as the lost reason or the closing value.
func (s *CRM) UpdateLeadStatus(ctx context.Context, id uuid.UUID, status models.LeadStatus, extra *models.LeadUpdate) (*models.Lead, error) {
	status, err := models.ParseLeadStatus(string(status))
	if err != nil {
		return nil, err
	}
	u := crm.StatusChange(status, extra, s.now())
	return s.UpdateLead(ctx, id, &u)
}

// DeleteLead removes a lead. Linked expenses lose the link but keep their
// name snapshot, so both collections are invalidated.
func (s *CRM) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, cache.KeyLeads, "delete", cache.KeyLeads, cache.KeyExpenses)
	logger.Log.Info().Str("lead_id", id.String()).Msg("Lead deleted")
	return nil
}

// Board returns every status column, each ordered by priority then
// newest first.
func (s *CRM) Board(ctx context.Context) (map[models.LeadStatus][]models.Lead, error) {
	leads, err := s.allLeads(ctx)
	if err != nil {
		return nil, err
	}
	return crm.Board(leads), nil
}

// PipelineStats summarises the pipeline, in SQL when store aggregates are
// enabled.
func (s *CRM) PipelineStats(ctx context.Context) (models.PipelineStats, error) {
	now := s.now()
	if s.aggregates {
		return s.leads.PipelineStats(ctx, crm.MonthStart(now, s.loc))
	}
	leads, err := s.allLeads(ctx)
	if err != nil {
		return models.PipelineStats{}, err
	}
	return crm.ComputePipelineStats(leads, now, s.loc), nil
}

// Distribution returns lead count and estimated value per observed status.
func (s *CRM) Distribution(ctx context.Context) ([]models.StatusCount, error) {
	if s.aggregates {
		return s.leads.Distribution(ctx)
	}
	leads, err := s.allLeads(ctx)
	if err != nil {
		return nil, err
	}
	return crm.Distribution(leads), nil
}

// Trend returns leads created per day over the trailing window.
func (s *CRM) Trend(ctx context.Context) ([]models.TrendPoint, error) {
	leads, err := s.allLeads(ctx)
	if err != nil {
		return nil, err
	}
	return crm.Trend(leads, s.now(), s.loc), nil
}

// LeadsWithAlerts annotates every lead with its inactivity status.
func (s *CRM) LeadsWithAlerts(ctx context.Context) ([]models.LeadWithAlert, error) {
	leads, err := s.allLeads(ctx)
	if err != nil {
		return nil, err
	}
	return s.classifier.WithAlerts(leads, s.now()), nil
}

// UrgentLeads returns only the leads that need contact now.
func (s *CRM) UrgentLeads(ctx context.Context) ([]models.LeadWithAlert, error) {
	alerts, err := s.LeadsWithAlerts(ctx)
	if err != nil {
		return nil, err
	}
	return crm.Urgent(alerts), nil
}

// Dashboard loads the landing-page summary concurrently and fails with the
// first error.
func (s *CRM) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "CRM.Dashboard")
	defer span.End()

	var d models.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.PipelineStats(gctx)
		d.Stats = stats
		return err
	})
	g.Go(func() error {
		dist, err := s.Distribution(gctx)
		d.Distribution = dist
		return err
	})
	g.Go(func() error {
		trend, err := s.Trend(gctx)
		d.Trend = trend
		return err
	})
	g.Go(func() error {
		alerts, err := s.LeadsWithAlerts(gctx)
		d.UrgentAlerts = crm.CountUrgent(alerts)
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &d, nil
}

// EventProfit computes one event's margin from fresh store reads.
func (s *CRM) EventProfit(ctx context.Context, leadID uuid.UUID) (models.EventProfit, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return models.EventProfit{}, err
	}
	expenses, err := s.expenses.List(ctx, models.ExpenseFilter{LeadID: &leadID})
	if err != nil {
		return models.EventProfit{}, err
	}
	return crm.ComputeEventProfit(lead, expenses), nil
}

// LeadExpenses lists the expenses linked to an existing lead.
func (s *CRM) LeadExpenses(ctx context.Context, leadID uuid.UUID) ([]models.Expense, error) {
	if _, err := s.leads.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	return s.ListExpenses(ctx, models.ExpenseFilter{LeadID: &leadID})
}

// ConfirmedEvents lists won leads by event date, undated last.
func (s *CRM) ConfirmedEvents(ctx context.Context) ([]models.Lead, models.EventsSummary, error) {
	leads, err := s.allLeads(ctx)
	if err != nil {
		return nil, models.EventsSummary{}, err
	}
	events := crm.ConfirmedEvents(leads)
	return events, crm.SummarizeEvents(events), nil
}

// UpdateEvent sets a confirmed event's date and closing value. A date
// already held by another confirmed event is rejected.
func (s *CRM) UpdateEvent(ctx context.Context, id uuid.UUID, eventDate *time.Time, actualValue *decimal.Decimal) (*models.Lead, error) {
	if eventDate == nil && actualValue == nil {
		return nil, apperr.Invalid("", "event_date or actual_value is required")
	}

	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status != models.LeadStatusWon {
		return nil, apperr.Invalid("status", "lead %s is not a confirmed event", id)
	}

	if eventDate != nil {
		won := models.LeadStatusWon
		booked, err := s.leads.List(ctx, models.LeadFilter{Status: &won})
		if err != nil {
			return nil, err
		}
		if clash := crm.DateClash(booked, id, *eventDate); clash != nil {
			return nil, apperr.Invalid("event_date", "%s is already booked by %s", eventDate.Format(time.DateOnly), clash.Name)
		}
	}

	return s.UpdateLead(ctx, id, &models.LeadUpdate{EventDate: eventDate, ActualValue: actualValue})
}

func trimLeadUpdate(u *models.LeadUpdate) {
	for _, p := range []*string{u.Name, u.Email, u.Phone} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
