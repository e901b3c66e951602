package crm

import (
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

// ComputeEventProfit returns the margin of one event. Income is the lead's
// actual value, else its estimate. Only expenses linked to the lead count
// towards cost, so a nil lead yields all zeros. The margin is zero when
// there is no income.
func ComputeEventProfit(lead *models.Lead, expenses []models.Expense) models.EventProfit {
	if lead == nil {
		return models.EventProfit{
			Income:        decimal.Zero,
			Expenses:      decimal.Zero,
			Profit:        decimal.Zero,
			MarginPercent: decimal.Zero,
		}
	}

	income := lead.Revenue()
	cost := decimal.Zero
	for i := range expenses {
		e := &expenses[i]
		if e.LeadID == nil || *e.LeadID != lead.ID {
			continue
		}
		cost = cost.Add(e.Amount)
	}

	profit := income.Sub(cost)
	margin := decimal.Zero
	if income.IsPositive() {
		margin = profit.Mul(hundred).DivRound(income, 2)
	}

	return models.EventProfit{
		Income:        income,
		Expenses:      cost,
		Profit:        profit,
		MarginPercent: margin,
	}
}
