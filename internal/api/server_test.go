package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

const testToken = "s3cret-token"

var testNow = time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)

// stubService implements the routes under test; any other call panics
// through the nil embedded interface.
type stubService struct {
	Service

	lead       *models.Lead
	leads      []models.Lead
	err        error
	gotFilter  models.LeadFilter
	gotNew     *models.NewLead
	gotUpdate  *models.LeadUpdate
	gotStatus  models.LeadStatus
	gotExpense *models.NewExpense
	gotExpUpd  *models.ExpenseUpdate
	gotExpFlt  models.ExpenseFilter
	gotQty     int
	gotEvent   struct {
		date  *time.Time
		value *decimal.Decimal
	}
	board        map[models.LeadStatus][]models.Lead
	distribution []models.StatusCount
	alerts       []models.LeadWithAlert
	deleted      uuid.UUID
	readID       int64
}

func (s *stubService) Location() *time.Location { return time.UTC }

func (s *stubService) ListLeads(_ context.Context, f models.LeadFilter) ([]models.Lead, error) {
	s.gotFilter = f
	return s.leads, s.err
}

func (s *stubService) GetLead(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	if s.err != nil {
		return nil, s.err
	}
	l := *s.lead
	l.ID = id
	return &l, nil
}

func (s *stubService) CreateLead(_ context.Context, in *models.NewLead) (*models.Lead, error) {
	s.gotNew = in
	if s.err != nil {
		return nil, s.err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &models.Lead{ID: uuid.New(), Name: in.Name, Email: in.Email, Status: in.Status, EventDate: in.EventDate}, nil
}

func (s *stubService) UpdateLead(_ context.Context, id uuid.UUID, u *models.LeadUpdate) (*models.Lead, error) {
	s.gotUpdate = u
	return &models.Lead{ID: id}, s.err
}

func (s *stubService) UpdateLeadStatus(_ context.Context, id uuid.UUID, status models.LeadStatus, extra *models.LeadUpdate) (*models.Lead, error) {
	s.gotStatus = status
	s.gotUpdate = extra
	if _, err := models.ParseLeadStatus(string(status)); err != nil {
		return nil, err
	}
	return &models.Lead{ID: id, Status: status}, s.err
}

func (s *stubService) DeleteLead(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func (s *stubService) Board(context.Context) (map[models.LeadStatus][]models.Lead, error) {
	return s.board, s.err
}

func (s *stubService) Distribution(context.Context) ([]models.StatusCount, error) {
	return s.distribution, s.err
}

func (s *stubService) LeadsWithAlerts(context.Context) ([]models.LeadWithAlert, error) {
	return s.alerts, s.err
}

func (s *stubService) Dashboard(context.Context) (*models.Dashboard, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Dashboard{UrgentAlerts: 2}, nil
}

func (s *stubService) UpdateEvent(_ context.Context, id uuid.UUID, date *time.Time, value *decimal.Decimal) (*models.Lead, error) {
	s.gotEvent.date = date
	s.gotEvent.value = value
	return &models.Lead{ID: id, EventDate: date}, s.err
}

func (s *stubService) ListExpenses(_ context.Context, f models.ExpenseFilter) ([]models.Expense, error) {
	s.gotExpFlt = f
	return []models.Expense{}, s.err
}

func (s *stubService) CreateExpense(_ context.Context, in *models.NewExpense) (*models.Expense, error) {
	s.gotExpense = in
	return &models.Expense{ID: uuid.New(), Concept: in.Concept, Amount: in.Amount}, s.err
}

func (s *stubService) UpdateExpense(_ context.Context, id uuid.UUID, u *models.ExpenseUpdate) (*models.Expense, error) {
	s.gotExpUpd = u
	return &models.Expense{ID: id}, s.err
}

func (s *stubService) PayExpense(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	return &models.Expense{ID: id, Status: models.ExpenseStatusPaid}, s.err
}

func (s *stubService) ExpenseStats(context.Context) (models.ExpenseStats, error) {
	return models.ExpenseStats{ByCategory: map[models.ExpenseCategory]decimal.Decimal{}}, s.err
}

func (s *stubService) UpdateQuantity(_ context.Context, id uuid.UUID, available int) (*models.InventoryItem, error) {
	s.gotQty = available
	return &models.InventoryItem{ID: id, AvailableQty: available}, s.err
}

func (s *stubService) LowStock(context.Context) ([]models.InventoryItem, error) {
	return []models.InventoryItem{}, s.err
}

func (s *stubService) MarkNotificationRead(_ context.Context, id int64) error {
	s.readID = id
	return s.err
}

func (s *stubService) MarkAllNotificationsRead(context.Context) (int64, error) {
	return 3, s.err
}

func newTestServer(t *testing.T, svc *stubService) http.Handler {
	t.Helper()
	return NewServer(svc, Options{
		Token:          testToken,
		AllowedOrigins: []string{"http://localhost:3000"},
		Now:            func() time.Time { return testNow },
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuth(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &stubService{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + testToken, want: http.StatusUnauthorized},
		{name: "wrong token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + testToken, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}

	t.Run("empty configured token rejects everything", func(t *testing.T) {
		t.Parallel()
		h := NewServer(&stubService{}, Options{}).Handler()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		req.Header.Set("Authorization", "Bearer ")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &stubService{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &stubService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/leads", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/leads", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: apperr.Invalid("email", "is required"), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("lead x: %w", apperr.ErrNotFound), want: http.StatusNotFound},
		{name: "persistence", err: apperr.Persistence("query leads", errors.New("boom")), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestServer(t, &stubService{err: tt.err})
			rec := do(t, h, http.MethodGet, "/api/v1/leads", nil)
			require.Equal(t, tt.want, rec.Code)

			body := decodeBody[errorBody](t, rec)
			require.NotEmpty(t, body.Error)
			require.NotContains(t, body.Error, "boom")
		})
	}

	t.Run("validation carries the field", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t, &stubService{err: apperr.Invalid("email", "is required")})
		body := decodeBody[errorBody](t, do(t, h, http.MethodGet, "/api/v1/leads", nil))
		require.Equal(t, "email", body.Field)
		require.Equal(t, "is required", body.Error)
	})
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &stubService{})
	rec := do(t, h, http.MethodGet, "/api/v1/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/leads", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
