package crm

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

// ConfirmedEvents returns the won leads ordered by event date, undated
// events last.
func ConfirmedEvents(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, 0)
	for i := range leads {
		if leads[i].Status == models.LeadStatusWon {
			out = append(out, leads[i])
		}
	}
	slices.SortStableFunc(out, func(a, b models.Lead) int {
		switch {
		case a.EventDate == nil && b.EventDate == nil:
			return 0
		case a.EventDate == nil:
			return 1
		case b.EventDate == nil:
			return -1
		default:
			return a.EventDate.Compare(*b.EventDate)
		}
	})
	return out
}

// SummarizeEvents counts confirmed events and totals their revenue.
func SummarizeEvents(events []models.Lead) models.EventsSummary {
	summary := models.EventsSummary{TotalRevenue: decimal.Zero}
	for i := range events {
		summary.Total++
		if events[i].EventDate != nil {
			summary.Dated++
		} else {
			summary.Undated++
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(events[i].Revenue())
	}
	return summary
}

// DateClash returns the confirmed event, other than id, already booked on
// date's calendar day, or nil.
func DateClash(events []models.Lead, id uuid.UUID, date time.Time) *models.Lead {
	day := date.Format(time.DateOnly)
	for i := range events {
		e := &events[i]
		if e.ID == id || e.EventDate == nil || e.Status != models.LeadStatusWon {
			continue
		}
		if e.EventDate.Format(time.DateOnly) == day {
			return e
		}
	}
	return nil
}
