package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

// expenseRequest carries lead_id as a string so an empty value can unlink
// the expense on update.
type expenseRequest struct {
	Concept       *string                 `json:"concepto"`
	Description   *string                 `json:"descripcion"`
	Category      *models.ExpenseCategory `json:"categoria"`
	Amount        *decimal.Decimal        `json:"monto"`
	LeadID        *string                 `json:"lead_id"`
	Provider      *string                 `json:"proveedor"`
	Status        *models.ExpenseStatus   `json:"status"`
	PaidAt        *Time                   `json:"fecha_pago"`
	InvoiceNumber *string                 `json:"factura_numero"`
	PaymentMethod *string                 `json:"metodo_pago"`
	Notes         *string                 `json:"notas"`
}

func (req *expenseRequest) leadID() (*uuid.UUID, error) {
	if req.LeadID == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*req.LeadID)
	if v == "" {
		unlink := uuid.Nil
		return &unlink, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperr.Invalid("lead_id", "must be a UUID")
	}
	return &id, nil
}

func (req *expenseRequest) newExpense() (*models.NewExpense, error) {
	leadID, err := req.leadID()
	if err != nil {
		return nil, err
	}
	in := &models.NewExpense{
		Concept:       deref(req.Concept),
		Description:   deref(req.Description),
		LeadID:        leadID,
		Provider:      deref(req.Provider),
		PaidAt:        req.PaidAt.ptr(),
		InvoiceNumber: deref(req.InvoiceNumber),
		PaymentMethod: deref(req.PaymentMethod),
		Notes:         deref(req.Notes),
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	return in, nil
}

func (req *expenseRequest) update() (*models.ExpenseUpdate, error) {
	leadID, err := req.leadID()
	if err != nil {
		return nil, err
	}
	return &models.ExpenseUpdate{
		Concept:       req.Concept,
		Description:   req.Description,
		Category:      req.Category,
		Amount:        req.Amount,
		LeadID:        leadID,
		Provider:      req.Provider,
		Status:        req.Status,
		PaidAt:        req.PaidAt.ptr(),
		InvoiceNumber: req.InvoiceNumber,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	var filter models.ExpenseFilter
	q := r.URL.Query()
	if v := q.Get("lead_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, r, apperr.Invalid("lead_id", "must be a UUID"))
			return
		}
		filter.LeadID = &id
	}
	if v := q.Get("categoria"); v != "" {
		c, err := models.ParseExpenseCategory(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Category = &c
	}
	if v := q.Get("status"); v != "" {
		st, err := models.ParseExpenseStatus(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = &st
	}

	expenses, err := s.svc.ListExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.newExpense()
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.svc.CreateExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.svc.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := req.update()
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.svc.UpdateExpense(r.Context(), id, u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handlePayExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.svc.PayExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.ExpenseStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
