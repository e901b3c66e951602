package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

type leadRequest struct {
	Name             *string              `json:"nombre"`
	Email            *string              `json:"email"`
	Phone            *string              `json:"telefono"`
	Message          *string              `json:"mensaje"`
	Status           *models.LeadStatus   `json:"status"`
	Priority         *models.LeadPriority `json:"priority"`
	Source           *models.LeadSource   `json:"source"`
	EstimatedValue   *decimal.Decimal     `json:"estimated_value"`
	ActualValue      *decimal.Decimal     `json:"actual_value"`
	EventType        *string              `json:"event_type"`
	EventDate        *Time                `json:"event_date"`
	Attendees        *int                 `json:"attendees"`
	LastContactDate  *Time                `json:"last_contact_date"`
	NextFollowupDate *Time                `json:"next_followup_date"`
	Notes            *string              `json:"notes"`
	AssignedTo       *string              `json:"assigned_to"`
	LostReason       *string              `json:"lost_reason"`
}

func (req *leadRequest) newLead() *models.NewLead {
	in := &models.NewLead{
		Name:       deref(req.Name),
		Email:      deref(req.Email),
		Phone:      deref(req.Phone),
		Message:    deref(req.Message),
		EventType:  deref(req.EventType),
		EventDate:  req.EventDate.ptr(),
		Attendees:  req.Attendees,
		Notes:      deref(req.Notes),
		AssignedTo: deref(req.AssignedTo),
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	if req.Source != nil {
		in.Source = *req.Source
	}
	if req.EstimatedValue != nil {
		in.EstimatedValue = *req.EstimatedValue
	}
	return in
}

func (req *leadRequest) update() *models.LeadUpdate {
	return &models.LeadUpdate{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Message:          req.Message,
		Status:           req.Status,
		Priority:         req.Priority,
		Source:           req.Source,
		EstimatedValue:   req.EstimatedValue,
		ActualValue:      req.ActualValue,
		EventType:        req.EventType,
		EventDate:        req.EventDate.ptr(),
		Attendees:        req.Attendees,
		LastContactDate:  req.LastContactDate.ptr(),
		NextFollowupDate: req.NextFollowupDate.ptr(),
		Notes:            req.Notes,
		AssignedTo:       req.AssignedTo,
		LostReason:       req.LostReason,
	}
}

type statusRequest struct {
	Status      models.LeadStatus `json:"status"`
	LostReason  *string           `json:"lost_reason"`
	ActualValue *decimal.Decimal  `json:"actual_value"`
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	var filter models.LeadFilter
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status, err := models.ParseLeadStatus(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = &status
	}
	if v := q.Get("since"); v != "" {
		since, err := parseTime(v, s.svc.Location())
		if err != nil {
			writeError(w, r, apperr.Invalid("since", "%s", err.Error()))
			return
		}
		filter.CreatedSince = &since
	}

	leads, err := s.svc.ListLeads(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := s.svc.CreateLead(r.Context(), req.newLead())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := s.svc.GetLead(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req leadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := s.svc.UpdateLead(r.Context(), id, req.update())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleUpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	extra := &models.LeadUpdate{LostReason: req.LostReason, ActualValue: req.ActualValue}
	lead, err := s.svc.UpdateLeadStatus(r.Context(), id, req.Status, extra)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteLead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeadProfit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	profit, err := s.svc.EventProfit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profit)
}

func (s *Server) handleLeadExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := s.svc.LeadExpenses(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
