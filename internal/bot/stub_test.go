package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/bot/mocks"
	"gitlab.com/yelinaung/event-crm/internal/config"
	"gitlab.com/yelinaung/event-crm/internal/gemini"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

var testNow = time.Date(2026, 10, 15, 9, 10, 0, 0, time.UTC)

// stubCRM is an in-memory CRM whose responses are set per test.
type stubCRM struct {
	mu sync.Mutex

	leads         []models.Lead
	alerts        []models.LeadWithAlert
	stats         models.PipelineStats
	distribution  []models.StatusCount
	trend         []models.TrendPoint
	profit        models.EventProfit
	expenseStats  models.ExpenseStats
	lowStock      []models.InventoryItem
	unread        []models.Notification
	events        []models.Lead
	eventsSummary models.EventsSummary

	err error

	statusCalls   []statusCall
	created       []*models.NewLead
	notifications []*models.NewNotification
	markedRead    int64
}

type statusCall struct {
	id     uuid.UUID
	status models.LeadStatus
	extra  *models.LeadUpdate
}

var _ CRM = (*stubCRM)(nil)

func (s *stubCRM) ListLeads(_ context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if filter.Status == nil || l.Status == *filter.Status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubCRM) GetLead(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	for i := range s.leads {
		if s.leads[i].ID == id {
			l := s.leads[i]
			return &l, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *stubCRM) CreateLead(_ context.Context, in *models.NewLead) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.created = append(s.created, in)
	lead := models.Lead{
		ID: uuid.New(), Name: in.Name, Email: in.Email, Phone: in.Phone,
		Status: in.Status, EventType: in.EventType, EventDate: in.EventDate,
		Attendees: in.Attendees, EstimatedValue: in.EstimatedValue,
	}
	s.leads = append(s.leads, lead)
	return &lead, nil
}

func (s *stubCRM) UpdateLeadStatus(_ context.Context, id uuid.UUID, status models.LeadStatus, extra *models.LeadUpdate) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls = append(s.statusCalls, statusCall{id: id, status: status, extra: extra})
	for i := range s.leads {
		if s.leads[i].ID != id {
			continue
		}
		s.leads[i].Status = status
		if extra != nil && extra.ActualValue != nil {
			s.leads[i].ActualValue = decimal.NewNullDecimal(*extra.ActualValue)
		}
		l := s.leads[i]
		return &l, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubCRM) PipelineStats(context.Context) (models.PipelineStats, error) {
	return s.stats, s.err
}

func (s *stubCRM) Distribution(context.Context) ([]models.StatusCount, error) {
	return s.distribution, s.err
}

func (s *stubCRM) Trend(context.Context) ([]models.TrendPoint, error) {
	return s.trend, s.err
}

func (s *stubCRM) LeadsWithAlerts(context.Context) ([]models.LeadWithAlert, error) {
	return s.alerts, s.err
}

func (s *stubCRM) UrgentLeads(context.Context) ([]models.LeadWithAlert, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.LeadWithAlert
	for _, a := range s.alerts {
		if a.AlertStatus == models.AlertUrgent {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubCRM) EventProfit(context.Context, uuid.UUID) (models.EventProfit, error) {
	return s.profit, s.err
}

func (s *stubCRM) ConfirmedEvents(context.Context) ([]models.Lead, models.EventsSummary, error) {
	return s.events, s.eventsSummary, s.err
}

func (s *stubCRM) ExpenseStats(context.Context) (models.ExpenseStats, error) {
	return s.expenseStats, s.err
}

func (s *stubCRM) LowStock(context.Context) ([]models.InventoryItem, error) {
	return s.lowStock, s.err
}

func (s *stubCRM) ListUnreadNotifications(context.Context) ([]models.Notification, error) {
	return s.unread, s.err
}

func (s *stubCRM) MarkAllNotificationsRead(context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.markedRead = int64(len(s.unread))
	s.unread = nil
	return s.markedRead, nil
}

func (s *stubCRM) Notify(_ context.Context, in *models.NewNotification) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, in)
	return &models.Notification{ID: int64(len(s.notifications)), Message: in.Message, Kind: in.Kind}, nil
}

// stubParser returns a canned inquiry or error.
type stubParser struct {
	inquiry *gemini.LeadInquiry
	err     error
	calls   int
}

func (p *stubParser) ParseLeadInquiry(context.Context, string) (*gemini.LeadInquiry, error) {
	p.calls++
	return p.inquiry, p.err
}

func testConfig() *config.Config {
	return &config.Config{
		Timezone:           "UTC",
		WhitelistedUserIDs: []int64{100},
		DigestHour:         9,
		DailyDigestEnabled: true,
	}
}

// setupTestBot returns a bot wired to a stub CRM and a mock Telegram client.
func setupTestBot(t *testing.T) (*Bot, *stubCRM, *mocks.MockBot) {
	t.Helper()
	crm := &stubCRM{}
	mockBot := mocks.NewMockBot()
	b := newTestBot(testConfig(), crm, nil, mockBot, func() time.Time { return testNow })
	return b, crm, mockBot
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func leadWithID(prefix, name string, status models.LeadStatus) models.Lead {
	id := uuid.MustParse(prefix + strings.Repeat("0", 8-len(prefix)) + "-0000-4000-8000-000000000000")
	return models.Lead{ID: id, Name: name, Status: status, EstimatedValue: dec("1000000")}
}
