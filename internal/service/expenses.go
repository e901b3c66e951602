package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/cache"
	"gitlab.com/yelinaung/event-crm/internal/crm"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

func (s *CRM) allExpenses(ctx context.Context) ([]models.Expense, error) {
	return cache.Load(ctx, s.cache, cache.KeyExpenses, func(ctx context.Context) ([]models.Expense, error) {
		return s.expenses.List(ctx, models.ExpenseFilter{})
	})
}

// ListExpenses returns expenses matching filter, newest first.
func (s *CRM) ListExpenses(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error) {
	all, err := s.allExpenses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Expense, 0, len(all))
	for i := range all {
		e := &all[i]
		if filter.LeadID != nil && (e.LeadID == nil || *e.LeadID != *filter.LeadID) {
			continue
		}
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// GetExpense reads one expense from the store.
func (s *CRM) GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

// CreateExpense validates and stores an expense, snapshotting the linked
// lead's current name.
func (s *CRM) CreateExpense(ctx context.Context, in *models.NewExpense) (*models.Expense, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	leadName, err := s.leadNameFor(ctx, in.LeadID)
	if err != nil {
		return nil, err
	}

	expense, err := s.expenses.Create(ctx, in, leadName)
	if err != nil {
		return nil, err
	}

	s.mutated(ctx, cache.KeyExpenses, "create", cache.KeyExpenses)
	logger.Log.Info().
		Str("expense_id", expense.ID.String()).
		Str("categoria", string(expense.Category)).
		Str("monto", expense.Amount.StringFixed(2)).
		Msg("Expense created")
	return expense, nil
}

// UpdateExpense applies a partial update. Relinking takes a fresh name
// snapshot; uuid.Nil unlinks.
func (s *CRM) UpdateExpense(ctx context.Context, id uuid.UUID, u *models.ExpenseUpdate) (*models.Expense, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var leadName string
	if u.LeadID != nil && *u.LeadID != uuid.Nil {
		name, err := s.leadNameFor(ctx, u.LeadID)
		if err != nil {
			return nil, err
		}
		leadName = name
	}

	expense, err := s.expenses.Update(ctx, id, u, leadName)
	if err != nil {
		return nil, err
	}

	s.mutated(ctx, cache.KeyExpenses, "update", cache.KeyExpenses)
	return expense, nil
}

// PayExpense marks an expense as paid now.
func (s *CRM) PayExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	paid := models.ExpenseStatusPaid
	now := s.now()
	return s.UpdateExpense(ctx, id, &models.ExpenseUpdate{Status: &paid, PaidAt: &now})
}

// DeleteExpense removes an expense.
func (s *CRM) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, cache.KeyExpenses, "delete", cache.KeyExpenses)
	return nil
}

// ExpenseStats summarises spending.
func (s *CRM) ExpenseStats(ctx context.Context) (models.ExpenseStats, error) {
	expenses, err := s.allExpenses(ctx)
	if err != nil {
		return models.ExpenseStats{}, err
	}
	return crm.ComputeExpenseStats(expenses, s.now(), s.loc), nil
}

// leadNameFor resolves the snapshot name for a lead link. A link to a
// missing lead is a validation failure, not a lookup miss.
func (s *CRM) leadNameFor(ctx context.Context, leadID *uuid.UUID) (string, error) {
	if leadID == nil {
		return "", nil
	}
	lead, err := s.leads.GetByID(ctx, *leadID)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", apperr.Invalid("lead_id", "references unknown lead %s", *leadID)
	}
	if err != nil {
		return "", err
	}
	return lead.Name, nil
}
