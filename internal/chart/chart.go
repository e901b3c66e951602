// Package chart renders pipeline and spending charts as PNG images.
package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

// ErrNoData indicates there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// Distribution renders a pie chart of leads per status.
func Distribution(counts []models.StatusCount) ([]byte, error) {
	values := make([]float64, 0, len(counts))
	labels := make([]string, 0, len(counts))
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		values = append(values, float64(c.Count))
		labels = append(labels, string(c.Status))
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{Text: "Leads by status"}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}
	return render(p)
}

// Trend renders a line chart of leads created per day.
func Trend(points []models.TrendPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	values := make([]float64, len(points))
	labels := make([]string, len(points))
	for i, pt := range points {
		values[i] = float64(pt.Count)
		labels[i] = pt.Date
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleOptionFunc(charts.TitleOption{Text: "New leads per day"}),
		charts.XAxisLabelsOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"leads"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}
	return render(p)
}

// Expenses renders a bar chart of spending per category, in category
// order.
func Expenses(stats models.ExpenseStats) ([]byte, error) {
	values := make([]float64, len(models.ExpenseCategories))
	labels := make([]string, len(models.ExpenseCategories))
	hasData := false
	for i, c := range models.ExpenseCategories {
		amount := stats.ByCategory[c]
		values[i] = amount.InexactFloat64()
		labels[i] = string(c)
		if !amount.IsZero() {
			hasData = true
		}
	}
	if !hasData {
		return nil, ErrNoData
	}

	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleOptionFunc(charts.TitleOption{Text: "Expenses by category"}),
		charts.XAxisLabelsOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"amount"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}
	return render(p)
}

// Filename returns a download name like "pipeline_2026-10-15.png".
func Filename(kind string, now time.Time) string {
	return fmt.Sprintf("%s_%s.png", kind, now.Format(time.DateOnly))
}

func render(p *charts.Painter) ([]byte, error) {
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}
