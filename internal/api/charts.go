package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gitlab.com/yelinaung/event-crm/internal/chart"
)

func (s *Server) handleDistributionChart(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.Distribution(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeChart(w, r, "distribution", func() ([]byte, error) { return chart.Distribution(counts) })
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.Trend(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeChart(w, r, "trend", func() ([]byte, error) { return chart.Trend(points) })
}

func (s *Server) handleExpensesChart(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.ExpenseStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeChart(w, r, "expenses", func() ([]byte, error) { return chart.Expenses(stats) })
}

// writeChart renders a PNG. An empty data set answers 204.
func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, kind string, render func() ([]byte, error)) {
	png, err := render()
	if errors.Is(err, chart.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, r, fmt.Errorf("render %s chart: %w", kind, err))
		return
	}

	filename := chart.Filename(kind, s.now().In(s.svc.Location()))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
