package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

type fakeLeads struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]models.Lead
	now       func() time.Time
	listCalls atomic.Int32
	listErr   error
	aggCalls  atomic.Int32
}

func newFakeLeads(now func() time.Time) *fakeLeads {
	return &fakeLeads{rows: make(map[uuid.UUID]models.Lead), now: now}
}

func (f *fakeLeads) put(l models.Lead) models.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	f.rows[l.ID] = l
	return l
}

func (f *fakeLeads) List(_ context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	f.listCalls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Lead, 0, len(f.rows))
	for _, l := range f.rows {
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b models.Lead) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("lead %s: %w", id, apperr.ErrNotFound)
	}
	return &l, nil
}

func (f *fakeLeads) Create(_ context.Context, in *models.NewLead) (*models.Lead, error) {
	now := f.now()
	l := f.put(models.Lead{
		CreatedAt: now, UpdatedAt: now,
		Name: in.Name, Email: in.Email, Phone: in.Phone, Message: in.Message,
		Status: in.Status, Priority: in.Priority, Source: in.Source,
		EstimatedValue: in.EstimatedValue, EventType: in.EventType, EventDate: in.EventDate,
		Attendees: in.Attendees, Notes: in.Notes, AssignedTo: in.AssignedTo,
		WonAt: in.WonAt,
	})
	return &l, nil
}

func (f *fakeLeads) Update(_ context.Context, id uuid.UUID, u *models.LeadUpdate) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("lead %s: %w", id, apperr.ErrNotFound)
	}
	if u.Name != nil {
		l.Name = *u.Name
	}
	if u.Status != nil {
		l.Status = *u.Status
	}
	if u.Priority != nil {
		l.Priority = *u.Priority
	}
	if u.EstimatedValue != nil {
		l.EstimatedValue = *u.EstimatedValue
	}
	if u.ActualValue != nil {
		l.ActualValue = decimal.NewNullDecimal(*u.ActualValue)
	}
	if u.EventDate != nil {
		l.EventDate = u.EventDate
	}
	if u.LastContactDate != nil {
		l.LastContactDate = u.LastContactDate
	}
	if u.WonAt != nil {
		l.WonAt = u.WonAt
	}
	if u.LostReason != nil {
		l.LostReason = *u.LostReason
	}
	l.UpdatedAt = f.now()
	f.rows[id] = l
	return &l, nil
}

func (f *fakeLeads) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("lead %s: %w", id, apperr.ErrNotFound)
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeLeads) PipelineStats(_ context.Context, _ time.Time) (models.PipelineStats, error) {
	f.aggCalls.Add(1)
	return models.PipelineStats{Total: 42}, nil
}

func (f *fakeLeads) Distribution(_ context.Context) ([]models.StatusCount, error) {
	f.aggCalls.Add(1)
	return []models.StatusCount{{Status: models.LeadStatusWon, Count: 42}}, nil
}

type fakeExpenses struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]models.Expense
	now       func() time.Time
	listCalls atomic.Int32
}

func newFakeExpenses(now func() time.Time) *fakeExpenses {
	return &fakeExpenses{rows: make(map[uuid.UUID]models.Expense), now: now}
}

func (f *fakeExpenses) List(_ context.Context, filter models.ExpenseFilter) ([]models.Expense, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Expense, 0, len(f.rows))
	for _, e := range f.rows {
		if filter.LeadID != nil && (e.LeadID == nil || *e.LeadID != *filter.LeadID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExpenses) GetByID(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, apperr.ErrNotFound)
	}
	return &e, nil
}

func (f *fakeExpenses) Create(_ context.Context, in *models.NewExpense, leadName string) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	e := models.Expense{
		ID: uuid.New(), CreatedAt: now, UpdatedAt: now,
		Concept: in.Concept, Category: in.Category, Amount: in.Amount,
		LeadID: in.LeadID, LeadName: leadName, Status: in.Status, PaidAt: in.PaidAt,
	}
	f.rows[e.ID] = e
	return &e, nil
}

func (f *fakeExpenses) Update(_ context.Context, id uuid.UUID, u *models.ExpenseUpdate, leadName string) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, apperr.ErrNotFound)
	}
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Status != nil {
		e.Status = *u.Status
	}
	if u.PaidAt != nil {
		e.PaidAt = u.PaidAt
	}
	if u.LeadID != nil {
		if *u.LeadID == uuid.Nil {
			e.LeadID, e.LeadName = nil, ""
		} else {
			linked := *u.LeadID
			e.LeadID, e.LeadName = &linked, leadName
		}
	}
	f.rows[id] = e
	return &e, nil
}

func (f *fakeExpenses) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, apperr.ErrNotFound)
	}
	delete(f.rows, id)
	return nil
}

// unlinkLead mirrors ON DELETE SET NULL.
func (f *fakeExpenses) unlinkLead(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, e := range f.rows {
		if e.LeadID != nil && *e.LeadID == id {
			e.LeadID = nil
			f.rows[k] = e
		}
	}
}

type fakeInventory struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]models.InventoryItem
	listCalls atomic.Int32
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{rows: make(map[uuid.UUID]models.InventoryItem)}
}

func (f *fakeInventory) List(_ context.Context, _ models.InventoryFilter) ([]models.InventoryItem, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.InventoryItem, 0, len(f.rows))
	for _, it := range f.rows {
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b models.InventoryItem) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (f *fakeInventory) GetByID(_ context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	return &it, nil
}

func (f *fakeInventory) Create(_ context.Context, in *models.NewInventoryItem) (*models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := models.InventoryItem{
		ID: uuid.New(), Name: in.Name, Category: in.Category,
		TotalQty: in.TotalQty, AvailableQty: *in.AvailableQty, MinQty: in.MinQty, Status: in.Status,
	}
	if in.UnitCost != nil {
		it.UnitCost = decimal.NewNullDecimal(*in.UnitCost)
	}
	f.rows[it.ID] = it
	return &it, nil
}

func (f *fakeInventory) Update(_ context.Context, id uuid.UUID, u *models.InventoryUpdate) (*models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	if u.AvailableQty != nil {
		it.AvailableQty = *u.AvailableQty
	}
	if u.TotalQty != nil {
		it.TotalQty = *u.TotalQty
	}
	if u.MinQty != nil {
		it.MinQty = u.MinQty
	}
	f.rows[id] = it
	return &it, nil
}

func (f *fakeInventory) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	delete(f.rows, id)
	return nil
}

type fakeNotifications struct {
	mu     sync.Mutex
	rows   []models.Notification
	nextID int64
	now    func() time.Time

	unreadCalls atomic.Int32
}

func newFakeNotifications(now func() time.Time) *fakeNotifications {
	return &fakeNotifications{now: now}
}

func (f *fakeNotifications) List(_ context.Context) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.rows)
	slices.Reverse(out)
	return out, nil
}

func (f *fakeNotifications) ListUnread(ctx context.Context) ([]models.Notification, error) {
	f.unreadCalls.Add(1)
	all, _ := f.List(ctx)
	return slices.DeleteFunc(all, func(n models.Notification) bool { return n.Read }), nil
}

func (f *fakeNotifications) Create(_ context.Context, in *models.NewNotification) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := models.Notification{ID: f.nextID, Message: in.Message, Kind: in.Kind, LeadName: in.LeadName, CreatedAt: f.now()}
	f.rows = append(f.rows, n)
	return &n, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, apperr.ErrNotFound)
}

func (f *fakeNotifications) MarkAllRead(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.rows {
		if !f.rows[i].Read {
			f.rows[i].Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = slices.Delete(f.rows, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, apperr.ErrNotFound)
}
