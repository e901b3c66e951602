// Package service orchestrates the repositories, the read cache and the
// pipeline rules behind one CRM facade used by every transport.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/event-crm/internal/cache"
	"gitlab.com/yelinaung/event-crm/internal/crm"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

const instrumentationName = "gitlab.com/yelinaung/event-crm/internal/service"

// LeadStore persists leads.
type LeadStore interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	Create(ctx context.Context, in *models.NewLead) (*models.Lead, error)
	Update(ctx context.Context, id uuid.UUID, u *models.LeadUpdate) (*models.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PipelineStats(ctx context.Context, monthStart time.Time) (models.PipelineStats, error)
	Distribution(ctx context.Context) ([]models.StatusCount, error)
}

// ExpenseStore persists expenses. leadName is the snapshot stored with the
// link.
type ExpenseStore interface {
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Create(ctx context.Context, in *models.NewExpense, leadName string) (*models.Expense, error)
	Update(ctx context.Context, id uuid.UUID, u *models.ExpenseUpdate, leadName string) (*models.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InventoryStore persists inventory items.
type InventoryStore interface {
	List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	Create(ctx context.Context, in *models.NewInventoryItem) (*models.InventoryItem, error)
	Update(ctx context.Context, id uuid.UUID, u *models.InventoryUpdate) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationStore persists notifications.
type NotificationStore interface {
	List(ctx context.Context) ([]models.Notification, error)
	ListUnread(ctx context.Context) ([]models.Notification, error)
	Create(ctx context.Context, in *models.NewNotification) (*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Options tunes a CRM. Zero values select the defaults.
type Options struct {
	Cache              *cache.Cache
	Thresholds         crm.Thresholds
	Location           *time.Location
	UseStoreAggregates bool
	Now                func() time.Time
}

// CRM is the application service.
type CRM struct {
	leads         LeadStore
	expenses      ExpenseStore
	inventory     InventoryStore
	notifications NotificationStore

	cache      *cache.Cache
	classifier *crm.Classifier
	loc        *time.Location
	aggregates bool
	now        func() time.Time

	tracer    trace.Tracer
	mutations metric.Int64Counter
}

// New creates a CRM over the given stores.
func New(leads LeadStore, expenses ExpenseStore, inventory InventoryStore, notifications NotificationStore, opts Options) *CRM {
	if opts.Cache == nil {
		opts.Cache = cache.New(nil, cache.DefaultStaleTime)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mutations, err := otel.Meter(instrumentationName).Int64Counter("crm.mutations",
		metric.WithDescription("Successful CRM writes by collection and operation"))
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create mutation counter")
		mutations = noop.Int64Counter{}
	}

	return &CRM{
		leads:         leads,
		expenses:      expenses,
		inventory:     inventory,
		notifications: notifications,
		cache:         opts.Cache,
		classifier:    crm.NewClassifier(opts.Thresholds),
		loc:           opts.Location,
		aggregates:    opts.UseStoreAggregates,
		now:           opts.Now,
		tracer:        otel.Tracer(instrumentationName),
		mutations:     mutations,
	}
}

// Location returns the zone used for month and day boundaries.
func (s *CRM) Location() *time.Location {
	return s.loc
}

// Thresholds returns the effective alert thresholds.
func (s *CRM) Thresholds() crm.Thresholds {
	return s.classifier.Thresholds()
}

// mutated records a successful write and drops the affected collections
// from the cache. A failed invalidation is logged; the write already
// happened and must not be reported as failed.
func (s *CRM) mutated(ctx context.Context, collection, op string, keys ...string) {
	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("op", op),
	))
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logger.Log.Warn().Err(err).Strs("keys", keys).Msg("Failed to invalidate cache")
	}
}
