package crm

import (
	"cmp"
	"slices"
	"time"

	"gitlab.com/yelinaung/event-crm/internal/models"
)

const (
	// DefaultWarningDays is the inactivity after which an open lead is flagged.
	DefaultWarningDays = 3
	// DefaultUrgentDays is the inactivity after which an open lead is urgent.
	DefaultUrgentDays = 5
)

// Thresholds configures the inactivity classifier, in whole days.
type Thresholds struct {
	WarningDays int
	UrgentDays  int
}

// DefaultThresholds returns the agency's standard follow-up thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{WarningDays: DefaultWarningDays, UrgentDays: DefaultUrgentDays}
}

// Classifier derives contact urgency from a lead's inactivity.
type Classifier struct {
	t Thresholds
}

// NewClassifier returns a Classifier. Non-positive thresholds fall back to
// the defaults, and a warning threshold above the urgent one is clamped.
func NewClassifier(t Thresholds) *Classifier {
	if t.UrgentDays <= 0 {
		t.UrgentDays = DefaultUrgentDays
	}
	if t.WarningDays <= 0 {
		t.WarningDays = DefaultWarningDays
	}
	t.WarningDays = min(t.WarningDays, t.UrgentDays)
	return &Classifier{t: t}
}

// Thresholds returns the effective thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.t
}

// DaysInactive returns the whole days elapsed since the last contact, or
// since creation when the lead was never contacted. Never negative.
func DaysInactive(l *models.Lead, now time.Time) int {
	ref := l.CreatedAt
	if l.LastContactDate != nil {
		ref = *l.LastContactDate
	}
	if !now.After(ref) {
		return 0
	}
	return int(now.Sub(ref) / (24 * time.Hour))
}

// Classify returns the alert status and inactivity of l at now. Closed
// leads (won or lost) are always ok.
func (c *Classifier) Classify(l *models.Lead, now time.Time) (models.AlertStatus, int) {
	days := DaysInactive(l, now)
	if !l.IsActive() {
		return models.AlertOK, days
	}
	switch {
	case days >= c.t.UrgentDays:
		return models.AlertUrgent, days
	case days >= c.t.WarningDays:
		return models.AlertWarning, days
	default:
		return models.AlertOK, days
	}
}

// WithAlerts annotates every lead, ordered by priority (highest first) and
// then by inactivity (longest first).
func (c *Classifier) WithAlerts(leads []models.Lead, now time.Time) []models.LeadWithAlert {
	out := make([]models.LeadWithAlert, 0, len(leads))
	for i := range leads {
		status, days := c.Classify(&leads[i], now)
		out = append(out, models.LeadWithAlert{
			Lead:         leads[i],
			AlertStatus:  status,
			DaysInactive: days,
		})
	}
	slices.SortStableFunc(out, func(a, b models.LeadWithAlert) int {
		if r := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); r != 0 {
			return r
		}
		return cmp.Compare(b.DaysInactive, a.DaysInactive)
	})
	return out
}

// CountUrgent counts the urgent entries.
func CountUrgent(alerts []models.LeadWithAlert) int {
	n := 0
	for i := range alerts {
		if alerts[i].AlertStatus == models.AlertUrgent {
			n++
		}
	}
	return n
}

// Urgent returns only the urgent entries, preserving order.
func Urgent(alerts []models.LeadWithAlert) []models.LeadWithAlert {
	out := make([]models.LeadWithAlert, 0)
	for i := range alerts {
		if alerts[i].AlertStatus == models.AlertUrgent {
			out = append(out, alerts[i])
		}
	}
	return out
}
