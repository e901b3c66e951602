// Package api serves the dashboard JSON API over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/event-crm/internal/models"
)

// Prefix is the base path of every authenticated route.
const Prefix = "/api/v1"

// Service is the CRM surface exposed over HTTP.
type Service interface {
	ListLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	CreateLead(ctx context.Context, in *models.NewLead) (*models.Lead, error)
	UpdateLead(ctx context.Context, id uuid.UUID, u *models.LeadUpdate) (*models.Lead, error)
	UpdateLeadStatus(ctx context.Context, id uuid.UUID, status models.LeadStatus, extra *models.LeadUpdate) (*models.Lead, error)
	DeleteLead(ctx context.Context, id uuid.UUID) error
	EventProfit(ctx context.Context, leadID uuid.UUID) (models.EventProfit, error)
	LeadExpenses(ctx context.Context, leadID uuid.UUID) ([]models.Expense, error)

	Board(ctx context.Context) (map[models.LeadStatus][]models.Lead, error)
	PipelineStats(ctx context.Context) (models.PipelineStats, error)
	Distribution(ctx context.Context) ([]models.StatusCount, error)
	Trend(ctx context.Context) ([]models.TrendPoint, error)
	LeadsWithAlerts(ctx context.Context) ([]models.LeadWithAlert, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)

	ConfirmedEvents(ctx context.Context) ([]models.Lead, models.EventsSummary, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, eventDate *time.Time, actualValue *decimal.Decimal) (*models.Lead, error)

	ListExpenses(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error)
	GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	CreateExpense(ctx context.Context, in *models.NewExpense) (*models.Expense, error)
	UpdateExpense(ctx context.Context, id uuid.UUID, u *models.ExpenseUpdate) (*models.Expense, error)
	PayExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	ExpenseStats(ctx context.Context) (models.ExpenseStats, error)

	ListInventory(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, in *models.NewInventoryItem) (*models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id uuid.UUID, u *models.InventoryUpdate) (*models.InventoryItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, available int) (*models.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id uuid.UUID) error
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
	InventoryStats(ctx context.Context) (models.InventoryStats, error)

	ListNotifications(ctx context.Context) ([]models.Notification, error)
	ListUnreadNotifications(ctx context.Context) ([]models.Notification, error)
	Notify(ctx context.Context, in *models.NewNotification) (*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
	DeleteNotification(ctx context.Context, id int64) error
	NotificationStats(ctx context.Context) (models.NotificationStats, error)

	Location() *time.Location
}

// Options configures the HTTP surface.
type Options struct {
	// Token is the bearer token every /api/v1 request must carry.
	Token          string
	AllowedOrigins []string
	Now            func() time.Time
}

// Server routes HTTP requests to the CRM service.
type Server struct {
	svc    Service
	token  string
	cors   *cors.Cors
	router *mux.Router
	now    func() time.Time
}

// NewServer builds the router.
func NewServer(svc Service, opts Options) *Server {
	s := &Server{
		svc:   svc,
		token: opts.Token,
		now:   opts.Now,
		cors: cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.router = s.routes()
	return s
}

// Handler returns the fully wrapped handler: tracing, CORS, then routing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.cors.Handler(s.router), "event-crm-api")
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix(Prefix).Subrouter()
	v1.Use(spanName, s.requireToken)

	v1.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	v1.HandleFunc("/leads", s.handleListLeads).Methods(http.MethodGet)
	v1.HandleFunc("/leads", s.handleCreateLead).Methods(http.MethodPost)
	v1.HandleFunc("/leads/{id}", s.handleGetLead).Methods(http.MethodGet)
	v1.HandleFunc("/leads/{id}", s.handleUpdateLead).Methods(http.MethodPatch)
	v1.HandleFunc("/leads/{id}", s.handleDeleteLead).Methods(http.MethodDelete)
	v1.HandleFunc("/leads/{id}/status", s.handleUpdateLeadStatus).Methods(http.MethodPatch)
	v1.HandleFunc("/leads/{id}/profit", s.handleLeadProfit).Methods(http.MethodGet)
	v1.HandleFunc("/leads/{id}/expenses", s.handleLeadExpenses).Methods(http.MethodGet)

	v1.HandleFunc("/pipeline/board", s.handleBoard).Methods(http.MethodGet)
	v1.HandleFunc("/pipeline/stats", s.handlePipelineStats).Methods(http.MethodGet)
	v1.HandleFunc("/pipeline/distribution", s.handleDistribution).Methods(http.MethodGet)
	v1.HandleFunc("/pipeline/trend", s.handleTrend).Methods(http.MethodGet)
	v1.HandleFunc("/pipeline/alerts", s.handleAlerts).Methods(http.MethodGet)

	v1.HandleFunc("/events", s.handleListEvents).Methods(http.MethodGet)
	v1.HandleFunc("/events/{id}", s.handleUpdateEvent).Methods(http.MethodPatch)

	// Static paths are registered before /{id} so they are not read as ids.
	v1.HandleFunc("/expenses/stats", s.handleExpenseStats).Methods(http.MethodGet)
	v1.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	v1.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	v1.HandleFunc("/expenses/{id}", s.handleGetExpense).Methods(http.MethodGet)
	v1.HandleFunc("/expenses/{id}", s.handleUpdateExpense).Methods(http.MethodPatch)
	v1.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)
	v1.HandleFunc("/expenses/{id}/pay", s.handlePayExpense).Methods(http.MethodPost)

	v1.HandleFunc("/inventory/low-stock", s.handleLowStock).Methods(http.MethodGet)
	v1.HandleFunc("/inventory/stats", s.handleInventoryStats).Methods(http.MethodGet)
	v1.HandleFunc("/inventory", s.handleListInventory).Methods(http.MethodGet)
	v1.HandleFunc("/inventory", s.handleCreateInventoryItem).Methods(http.MethodPost)
	v1.HandleFunc("/inventory/{id}", s.handleGetInventoryItem).Methods(http.MethodGet)
	v1.HandleFunc("/inventory/{id}", s.handleUpdateInventoryItem).Methods(http.MethodPatch)
	v1.HandleFunc("/inventory/{id}", s.handleDeleteInventoryItem).Methods(http.MethodDelete)
	v1.HandleFunc("/inventory/{id}/quantity", s.handleUpdateQuantity).Methods(http.MethodPatch)

	v1.HandleFunc("/notifications/unread", s.handleUnreadNotifications).Methods(http.MethodGet)
	v1.HandleFunc("/notifications/stats", s.handleNotificationStats).Methods(http.MethodGet)
	v1.HandleFunc("/notifications/read-all", s.handleMarkAllRead).Methods(http.MethodPost)
	v1.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	v1.HandleFunc("/notifications", s.handleCreateNotification).Methods(http.MethodPost)
	v1.HandleFunc("/notifications/{id:[0-9]+}/read", s.handleMarkRead).Methods(http.MethodPost)
	v1.HandleFunc("/notifications/{id:[0-9]+}", s.handleDeleteNotification).Methods(http.MethodDelete)

	v1.HandleFunc("/charts/distribution.png", s.handleDistributionChart).Methods(http.MethodGet)
	v1.HandleFunc("/charts/trend.png", s.handleTrendChart).Methods(http.MethodGet)
	v1.HandleFunc("/charts/expenses.png", s.handleExpensesChart).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
