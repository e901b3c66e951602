package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/event-crm/internal/models"
)

// boardColumn is one status column of the board.
type boardColumn struct {
	Status models.LeadStatus `json:"status"`
	Leads  []models.Lead     `json:"leads"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.svc.Board(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	columns := make([]boardColumn, 0, len(models.LeadStatuses))
	for _, status := range models.LeadStatuses {
		leads := board[status]
		if leads == nil {
			leads = []models.Lead{}
		}
		columns = append(columns, boardColumn{Status: status, Leads: leads})
	}
	writeJSON(w, http.StatusOK, columns)
}

func (s *Server) handlePipelineStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.PipelineStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := s.svc.Distribution(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := s.svc.Trend(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.LeadsWithAlerts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("urgent") == "true" {
		urgent := make([]models.LeadWithAlert, 0, len(alerts))
		for _, a := range alerts {
			if a.AlertStatus == models.AlertUrgent {
				urgent = append(urgent, a)
			}
		}
		alerts = urgent
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type eventsResponse struct {
	Events  []models.Lead        `json:"events"`
	Summary models.EventsSummary `json:"summary"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, summary, err := s.svc.ConfirmedEvents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events, Summary: summary})
}

type eventRequest struct {
	EventDate   *Time            `json:"event_date"`
	ActualValue *decimal.Decimal `json:"actual_value"`
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := s.svc.UpdateEvent(r.Context(), id, req.EventDate.ptr(), req.ActualValue)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
