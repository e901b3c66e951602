package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/cache"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

var testNow = time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)

type harness struct {
	svc           *CRM
	leads         *fakeLeads
	expenses      *fakeExpenses
	inventory     *fakeInventory
	notifications *fakeNotifications
}

func newHarness(t *testing.T, aggregates bool) *harness {
	t.Helper()
	now := func() time.Time { return testNow }
	h := &harness{
		leads:         newFakeLeads(now),
		expenses:      newFakeExpenses(now),
		inventory:     newFakeInventory(),
		notifications: newFakeNotifications(now),
	}
	h.svc = New(h.leads, h.expenses, h.inventory, h.notifications, Options{
		Cache:              cache.New(cache.NewMemoryStore(), time.Minute),
		UseStoreAggregates: aggregates,
		Now:                now,
	})
	return h
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (h *harness) createLead(t *testing.T, name string) *models.Lead {
	t.Helper()
	lead, err := h.svc.CreateLead(context.Background(), &models.NewLead{
		Name:           name,
		Email:          name + "@example.com",
		EstimatedValue: dec("1000000"),
	})
	require.NoError(t, err)
	return lead
}

func TestCreateLead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		lead, err := h.svc.CreateLead(ctx, &models.NewLead{Name: "  Ana Gómez ", Email: "ana@example.com"})
		require.NoError(t, err)
		require.Equal(t, "Ana Gómez", lead.Name)
		require.Equal(t, models.LeadStatusNew, lead.Status)
		require.Equal(t, models.LeadPriorityMedium, lead.Priority)
		require.Equal(t, models.LeadSourceWebsite, lead.Source)
		require.True(t, lead.EstimatedValue.IsZero())
	})

	t.Run("rejects missing email before persistence", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		_, err := h.svc.CreateLead(ctx, &models.NewLead{Name: "Ana"})
		require.True(t, apperr.IsValidation(err))

		leads, err := h.svc.ListLeads(ctx, models.LeadFilter{})
		require.NoError(t, err)
		require.Empty(t, leads)
	})

	t.Run("created as won counts this month", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		lead, err := h.svc.CreateLead(ctx, &models.NewLead{
			Name: "Boda Ruiz", Email: "ruiz@example.com",
			Status: models.LeadStatusWon, EstimatedValue: dec("500"),
		})
		require.NoError(t, err)
		require.NotNil(t, lead.WonAt)
		require.Equal(t, testNow, *lead.WonAt)

		stats, err := h.svc.PipelineStats(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, stats.WonThisMonth)
	})
}

func TestListLeads_ReadThroughCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)
	h.createLead(t, "ana")

	for range 3 {
		leads, err := h.svc.ListLeads(ctx, models.LeadFilter{})
		require.NoError(t, err)
		require.Len(t, leads, 1)
	}
	require.EqualValues(t, 1, h.leads.listCalls.Load())

	h.createLead(t, "beto")
	leads, err := h.svc.ListLeads(ctx, models.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	require.EqualValues(t, 2, h.leads.listCalls.Load())

	won := models.LeadStatusWon
	filtered, err := h.svc.ListLeads(ctx, models.LeadFilter{Status: &won})
	require.NoError(t, err)
	require.Empty(t, filtered)
	require.EqualValues(t, 2, h.leads.listCalls.Load())
}

func TestUpdateLeadStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("won stamps won_at and counts revenue", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		lead, err := h.svc.CreateLead(ctx, &models.NewLead{
			Name: "boda", Email: "boda@example.com", EstimatedValue: dec("1500000"),
		})
		require.NoError(t, err)

		updated, err := h.svc.UpdateLeadStatus(ctx, lead.ID, models.LeadStatusWon, nil)
		require.NoError(t, err)
		require.NotNil(t, updated.WonAt)
		require.True(t, updated.WonAt.Equal(testNow))

		stats, err := h.svc.PipelineStats(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, stats.Won)
		require.Equal(t, 1, stats.WonThisMonth)
		require.True(t, stats.RevenueTotal.Equal(dec("1500000")))
		require.True(t, stats.ConversionRate.Equal(dec("100")))
	})

	t.Run("lost keeps reason", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		lead := h.createLead(t, "ana")
		reason := "presupuesto"

		updated, err := h.svc.UpdateLeadStatus(ctx, lead.ID, "LOST", &models.LeadUpdate{LostReason: &reason})
		require.NoError(t, err)
		require.Equal(t, models.LeadStatusLost, updated.Status)
		require.Equal(t, reason, updated.LostReason)
		require.Nil(t, updated.WonAt)
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		lead := h.createLead(t, "ana")
		_, err := h.svc.UpdateLeadStatus(ctx, lead.ID, "archived", nil)
		require.True(t, apperr.IsValidation(err))
	})

	t.Run("missing lead", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		_, err := h.svc.UpdateLeadStatus(ctx, uuid.New(), models.LeadStatusContacted, nil)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestExpenseLeadSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)
	lead := h.createLead(t, "Boda García")

	expense, err := h.svc.CreateExpense(ctx, &models.NewExpense{
		Concept: "Flores", Category: models.ExpenseCategoryDecoration, Amount: dec("300000"), LeadID: &lead.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Boda García", expense.LeadName)

	_, err = h.svc.ListExpenses(ctx, models.ExpenseFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, h.expenses.listCalls.Load())

	renamed := "Boda García-López"
	_, err = h.svc.UpdateLead(ctx, lead.ID, &models.LeadUpdate{Name: &renamed})
	require.NoError(t, err)

	expenses, err := h.svc.ListExpenses(ctx, models.ExpenseFilter{LeadID: &lead.ID})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.Equal(t, "Boda García", expenses[0].LeadName, "snapshot is not re-synced")
	require.EqualValues(t, 1, h.expenses.listCalls.Load(), "rename must not invalidate expenses")

	require.NoError(t, h.svc.DeleteLead(ctx, lead.ID))
	h.expenses.unlinkLead(lead.ID)

	expenses, err = h.svc.ListExpenses(ctx, models.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.Nil(t, expenses[0].LeadID)
	require.Equal(t, "Boda García", expenses[0].LeadName)
	require.EqualValues(t, 2, h.expenses.listCalls.Load())
}

func TestCreateExpense_UnknownLead(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	missing := uuid.New()

	_, err := h.svc.CreateExpense(context.Background(), &models.NewExpense{
		Concept: "Sillas", Category: models.ExpenseCategoryFurniture, Amount: dec("10"), LeadID: &missing,
	})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "lead_id", ve.Field)
}

func TestPayExpense(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)

	expense, err := h.svc.CreateExpense(ctx, &models.NewExpense{
		Concept: "Sonido", Category: models.ExpenseCategoryAudio, Amount: dec("50000"),
	})
	require.NoError(t, err)
	require.Equal(t, models.ExpenseStatusPending, expense.Status)

	stats, err := h.svc.ExpenseStats(ctx)
	require.NoError(t, err)
	require.True(t, stats.Pending.Equal(dec("50000")))
	require.True(t, stats.Paid.IsZero())

	paid, err := h.svc.PayExpense(ctx, expense.ID)
	require.NoError(t, err)
	require.Equal(t, models.ExpenseStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	stats, err = h.svc.ExpenseStats(ctx)
	require.NoError(t, err)
	require.True(t, stats.Pending.IsZero())
	require.True(t, stats.Paid.Equal(dec("50000")))
	require.True(t, stats.ByCategory[models.ExpenseCategoryAudio].Equal(dec("50000")))
	require.Len(t, stats.ByCategory, len(models.ExpenseCategories))

	_, err = h.svc.PayExpense(ctx, uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEventProfit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)
	lead := h.createLead(t, "quince")

	for _, amount := range []string{"300000", "150000"} {
		_, err := h.svc.CreateExpense(ctx, &models.NewExpense{
			Concept: "gasto", Category: models.ExpenseCategoryCatering, Amount: dec(amount), LeadID: &lead.ID,
		})
		require.NoError(t, err)
	}

	before := h.expenses.listCalls.Load()
	for range 2 {
		profit, err := h.svc.EventProfit(ctx, lead.ID)
		require.NoError(t, err)
		require.True(t, profit.Expenses.Equal(dec("450000")))
		require.True(t, profit.Profit.Equal(dec("550000")))
		require.True(t, profit.MarginPercent.Equal(dec("55")))
	}
	require.EqualValues(t, before+2, h.expenses.listCalls.Load(), "profit reads bypass the cache")

	_, err := h.svc.EventProfit(ctx, uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)
	date := time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)

	first := h.createLead(t, "boda")
	second := h.createLead(t, "quince")
	for _, id := range []uuid.UUID{first.ID, second.ID} {
		_, err := h.svc.UpdateLeadStatus(ctx, id, models.LeadStatusWon, nil)
		require.NoError(t, err)
	}

	_, err := h.svc.UpdateEvent(ctx, first.ID, &date, nil)
	require.NoError(t, err)

	_, err = h.svc.UpdateEvent(ctx, second.ID, &date, nil)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "event_date", ve.Field)

	// Rebooking the same event on its own date is fine.
	value := dec("2000000")
	updated, err := h.svc.UpdateEvent(ctx, first.ID, &date, &value)
	require.NoError(t, err)
	require.True(t, updated.Revenue().Equal(value))

	events, summary, err := h.svc.ConfirmedEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, first.ID, events[0].ID)
	require.Equal(t, 1, summary.Dated)
	require.Equal(t, 1, summary.Undated)
	require.True(t, summary.TotalRevenue.Equal(dec("3000000")))

	open := h.createLead(t, "pendiente")
	_, err = h.svc.UpdateEvent(ctx, open.ID, &date, nil)
	require.True(t, apperr.IsValidation(err))
}

func TestInventory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)
	minimum := 3
	cost := dec("20000")

	item, err := h.svc.CreateInventoryItem(ctx, &models.NewInventoryItem{
		Name: "Sillas Tiffany", Category: models.InventoryCategoryFurniture, TotalQty: 10, MinQty: &minimum, UnitCost: &cost,
	})
	require.NoError(t, err)
	require.Equal(t, 10, item.AvailableQty)
	require.Equal(t, models.InventoryStatusAvailable, item.Status)

	low, err := h.svc.LowStock(ctx)
	require.NoError(t, err)
	require.Empty(t, low)

	_, err = h.svc.UpdateQuantity(ctx, item.ID, 2)
	require.NoError(t, err)

	low, err = h.svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)

	stats, err := h.svc.InventoryStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.LowStock)
	require.True(t, stats.TotalValue.Equal(dec("200000")))

	_, err = h.svc.UpdateQuantity(ctx, item.ID, -1)
	require.True(t, apperr.IsValidation(err))

	require.NoError(t, h.svc.DeleteInventoryItem(ctx, item.ID))
	require.ErrorIs(t, h.svc.DeleteInventoryItem(ctx, item.ID), apperr.ErrNotFound)
}

func TestNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)

	for _, kind := range []models.NotificationKind{models.NotificationInfo, models.NotificationWarning, models.NotificationError} {
		_, err := h.svc.Notify(ctx, &models.NewNotification{Message: "evento " + string(kind), Kind: kind})
		require.NoError(t, err)
	}

	_, err := h.svc.Notify(ctx, &models.NewNotification{Message: "  "})
	require.True(t, apperr.IsValidation(err))

	stats, err := h.svc.NotificationStats(ctx)
	require.NoError(t, err)
	require.Equal(t, models.NotificationStats{Unread: 3, Total: 3, UnreadWarnings: 1, UnreadErrors: 1}, stats)

	require.NoError(t, h.svc.MarkNotificationRead(ctx, 1))
	unread, err := h.svc.ListUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	n, err := h.svc.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	all, err := h.svc.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.ErrorIs(t, h.svc.MarkNotificationRead(ctx, 99), apperr.ErrNotFound)
	require.ErrorIs(t, h.svc.DeleteNotification(ctx, 99), apperr.ErrNotFound)
	require.NoError(t, h.svc.DeleteNotification(ctx, 1))
}

func TestListUnreadNotifications_StoreAggregates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, aggregates := range []bool{false, true} {
		h := newHarness(t, aggregates)
		for _, msg := range []string{"uno", "dos"} {
			_, err := h.svc.Notify(ctx, &models.NewNotification{Message: msg})
			require.NoError(t, err)
		}
		require.NoError(t, h.svc.MarkNotificationRead(ctx, 1))

		unread, err := h.svc.ListUnreadNotifications(ctx)
		require.NoError(t, err)
		require.Len(t, unread, 1)
		require.Equal(t, "dos", unread[0].Message)

		want := int32(0)
		if aggregates {
			want = 1
		}
		require.Equal(t, want, h.notifications.unreadCalls.Load(), "aggregates=%v", aggregates)
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("in process", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		h.leads.put(models.Lead{
			Name: "olvidado", Status: models.LeadStatusNew, Priority: models.LeadPriorityHigh,
			CreatedAt: testNow.AddDate(0, 0, -10), EstimatedValue: dec("100"),
		})
		h.createLead(t, "reciente")

		d, err := h.svc.Dashboard(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, d.Stats.Total)
		require.Equal(t, 1, d.UrgentAlerts)
		require.Len(t, d.Distribution, 1)
		require.Len(t, d.Trend, 2)
		require.Zero(t, h.leads.aggCalls.Load())
	})

	t.Run("store aggregates", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, true)
		d, err := h.svc.Dashboard(ctx)
		require.NoError(t, err)
		require.Equal(t, 42, d.Stats.Total)
		require.Equal(t, 42, d.Distribution[0].Count)
		require.EqualValues(t, 2, h.leads.aggCalls.Load())
	})

	t.Run("first error wins", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, false)
		boom := errors.New("connection refused")
		h.leads.listErr = apperr.Persistence("query leads", boom)

		_, err := h.svc.Dashboard(ctx)
		require.ErrorIs(t, err, boom)
		require.True(t, apperr.IsPersistence(err))
	})
}

func TestUrgentLeads(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	contacted := testNow.AddDate(0, 0, -4)
	h.leads.put(models.Lead{Name: "warning", Status: models.LeadStatusContacted, CreatedAt: testNow.AddDate(0, 0, -20), LastContactDate: &contacted})
	h.leads.put(models.Lead{Name: "urgente", Status: models.LeadStatusProposal, CreatedAt: testNow.AddDate(0, 0, -6)})
	h.leads.put(models.Lead{Name: "cerrado", Status: models.LeadStatusWon, CreatedAt: testNow.AddDate(0, 0, -60)})

	urgent, err := h.svc.UrgentLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, urgent, 1)
	require.Equal(t, "urgente", urgent[0].Name)
	require.Equal(t, 6, urgent[0].DaysInactive)
}
