package crm

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

// TrendWindowDays is the trailing window covered by Trend.
const TrendWindowDays = 30

var hundred = decimal.NewFromInt(100)

// MonthStart returns the first instant of now's month in loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// ComputePipelineStats derives the pipeline summary from the full lead set.
// Empty input yields zeroed stats.
func ComputePipelineStats(leads []models.Lead, now time.Time, loc *time.Location) models.PipelineStats {
	stats := models.PipelineStats{
		PipelineValue:  decimal.Zero,
		RevenueTotal:   decimal.Zero,
		AvgDealSize:    decimal.Zero,
		ConversionRate: decimal.Zero,
	}
	monthStart := MonthStart(now, loc)

	for i := range leads {
		l := &leads[i]
		stats.Total++
		switch l.Status {
		case models.LeadStatusNew:
			stats.New++
		case models.LeadStatusContacted:
			stats.Contacted++
		case models.LeadStatusProposal:
			stats.Proposal++
		case models.LeadStatusWon:
			stats.Won++
			stats.RevenueTotal = stats.RevenueTotal.Add(l.Revenue())
			if l.WonAt != nil && !l.WonAt.Before(monthStart) {
				stats.WonThisMonth++
			}
		case models.LeadStatusLost:
			stats.Lost++
		}
		if l.IsActive() {
			stats.PipelineValue = stats.PipelineValue.Add(l.EstimatedValue)
		}
		if !l.CreatedAt.Before(monthStart) {
			stats.NewThisMonth++
		}
	}

	stats.Active = stats.New + stats.Contacted + stats.Proposal
	stats.AvgDealSize = SafeDiv(stats.RevenueTotal, decimal.NewFromInt(int64(stats.Won)))
	stats.ConversionRate = Percent(int64(stats.Won), int64(stats.Total))
	return stats
}

// Distribution groups leads by status with count and total estimated
// value. Only observed statuses appear.
func Distribution(leads []models.Lead) []models.StatusCount {
	byStatus := make(map[models.LeadStatus]*models.StatusCount)
	for i := range leads {
		l := &leads[i]
		entry, ok := byStatus[l.Status]
		if !ok {
			entry = &models.StatusCount{Status: l.Status, TotalValue: decimal.Zero}
			byStatus[l.Status] = entry
		}
		entry.Count++
		entry.TotalValue = entry.TotalValue.Add(l.EstimatedValue)
	}

	out := make([]models.StatusCount, 0, len(byStatus))
	for _, entry := range byStatus {
		out = append(out, *entry)
	}
	slices.SortFunc(out, func(a, b models.StatusCount) int {
		return cmp.Compare(statusOrder(a.Status), statusOrder(b.Status))
	})
	return out
}

// Trend counts leads created per calendar day (in loc) over the trailing
// TrendWindowDays. Days without leads are absent. Points are ascending.
func Trend(leads []models.Lead, now time.Time, loc *time.Location) []models.TrendPoint {
	if loc == nil {
		loc = time.UTC
	}
	since := now.AddDate(0, 0, -TrendWindowDays)

	counts := make(map[string]int)
	for i := range leads {
		created := leads[i].CreatedAt
		if created.Before(since) || created.After(now) {
			continue
		}
		counts[created.In(loc).Format(time.DateOnly)]++
	}

	out := make([]models.TrendPoint, 0, len(counts))
	for day, n := range counts {
		out = append(out, models.TrendPoint{Date: day, Count: n})
	}
	slices.SortFunc(out, func(a, b models.TrendPoint) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// ComputeExpenseStats sums expenses overall, by status, for the current
// month (in loc) and per category. Every category appears in ByCategory.
func ComputeExpenseStats(expenses []models.Expense, now time.Time, loc *time.Location) models.ExpenseStats {
	stats := models.ExpenseStats{
		Total:      decimal.Zero,
		Pending:    decimal.Zero,
		Paid:       decimal.Zero,
		ThisMonth:  decimal.Zero,
		ByCategory: make(map[models.ExpenseCategory]decimal.Decimal, len(models.ExpenseCategories)),
	}
	for _, c := range models.ExpenseCategories {
		stats.ByCategory[c] = decimal.Zero
	}
	monthStart := MonthStart(now, loc)

	for i := range expenses {
		e := &expenses[i]
		stats.Total = stats.Total.Add(e.Amount)
		switch e.Status {
		case models.ExpenseStatusPending:
			stats.Pending = stats.Pending.Add(e.Amount)
		case models.ExpenseStatusPaid:
			stats.Paid = stats.Paid.Add(e.Amount)
		}
		if !e.CreatedAt.Before(monthStart) {
			stats.ThisMonth = stats.ThisMonth.Add(e.Amount)
		}
		category := e.Category
		if !category.Valid() {
			category = models.ExpenseCategoryOther
		}
		stats.ByCategory[category] = stats.ByCategory[category].Add(e.Amount)
	}
	return stats
}

// ComputeInventoryStats values owned stock at cost over the total
// quantity and counts items by status and low-stock condition.
func ComputeInventoryStats(items []models.InventoryItem) models.InventoryStats {
	stats := models.InventoryStats{TotalValue: decimal.Zero}
	for i := range items {
		item := &items[i]
		stats.TotalItems++
		if item.UnitCost.Valid {
			stats.TotalValue = stats.TotalValue.Add(item.UnitCost.Decimal.Mul(decimal.NewFromInt(int64(item.TotalQty))))
		}
		switch item.Status {
		case models.InventoryStatusAvailable:
			stats.Available++
		case models.InventoryStatusInUse:
			stats.InUse++
		}
		if IsLowStock(item) {
			stats.LowStock++
		}
	}
	return stats
}

// ComputeNotificationStats counts unread notifications by severity.
func ComputeNotificationStats(notifications []models.Notification) models.NotificationStats {
	var stats models.NotificationStats
	for i := range notifications {
		n := &notifications[i]
		stats.Total++
		if n.Read {
			continue
		}
		stats.Unread++
		switch n.Kind {
		case models.NotificationWarning:
			stats.UnreadWarnings++
		case models.NotificationError:
			stats.UnreadErrors++
		}
	}
	return stats
}

// SafeDiv divides a by b rounded to two places, returning zero when b is
// zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, 2)
}

// Percent returns part/whole*100 rounded to two places, zero when whole
// is zero.
func Percent(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).DivRound(decimal.NewFromInt(whole), 2)
}

func statusOrder(s models.LeadStatus) int {
	if i := slices.Index(models.LeadStatuses, s); i >= 0 {
		return i
	}
	return len(models.LeadStatuses)
}
