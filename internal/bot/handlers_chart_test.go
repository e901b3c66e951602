package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/event-crm/internal/bot/mocks"
	appmodels "gitlab.com/yelinaung/event-crm/internal/models"
)

func TestHandleChartCore(t *testing.T) {
	t.Parallel()

	t.Run("pipeline is the default", func(t *testing.T) {
		t.Parallel()
		b, crm, mockBot := setupTestBot(t)
		crm.distribution = []appmodels.StatusCount{
			{Status: appmodels.LeadStatusNew, Count: 3, TotalValue: dec("300")},
			{Status: appmodels.LeadStatusWon, Count: 1, TotalValue: dec("100")},
		}

		b.handleChartCore(context.Background(), mockBot, mocks.CommandUpdate(100, 100, "/chart"))

		require.Equal(t, 1, mockBot.SentDocumentCount())
		doc := mockBot.LastSentDocument()
		require.Equal(t, "pipeline_2026-10-15.png", doc.Filename)
		require.Equal(t, "📊 Leads by status", doc.Caption)
		require.Positive(t, doc.Size)
	})

	t.Run("trend", func(t *testing.T) {
		t.Parallel()
		b, crm, mockBot := setupTestBot(t)
		crm.trend = []appmodels.TrendPoint{{Date: "2026-10-14", Count: 2}, {Date: "2026-10-15", Count: 1}}

		b.handleChartCore(context.Background(), mockBot, mocks.CommandUpdate(100, 100, "/chart trend"))

		require.Equal(t, "trend_2026-10-15.png", mockBot.LastSentDocument().Filename)
		require.Contains(t, mockBot.LastSentDocument().Caption, "last 30 days")
	})

	t.Run("expenses", func(t *testing.T) {
		t.Parallel()
		b, crm, mockBot := setupTestBot(t)
		crm.expenseStats = appmodels.ExpenseStats{ByCategory: map[appmodels.ExpenseCategory]decimal.Decimal{
			appmodels.ExpenseCategoryCatering: dec("300000"),
		}}

		b.handleChartCore(context.Background(), mockBot, mocks.CommandUpdate(100, 100, "/chart EXPENSES"))
		require.Equal(t, "expenses_2026-10-15.png", mockBot.LastSentDocument().Filename)
	})

	t.Run("no data", func(t *testing.T) {
		t.Parallel()
		b, _, mockBot := setupTestBot(t)
		b.handleChartCore(context.Background(), mockBot, mocks.CommandUpdate(100, 100, "/chart trend"))

		require.Zero(t, mockBot.SentDocumentCount())
		require.Contains(t, mockBot.LastSentMessage().Text, "Not enough data")
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		b, _, mockBot := setupTestBot(t)
		b.handleChartCore(context.Background(), mockBot, mocks.CommandUpdate(100, 100, "/chart donut"))
		require.Contains(t, mockBot.LastSentMessage().Text, "Usage")
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		b, crm, mockBot := setupTestBot(t)
		crm.err = errors.New("timeout")
		b.handleChartCore(context.Background(), mockBot, mocks.CommandUpdate(100, 100, "/chart pipeline"))
		require.Contains(t, mockBot.LastSentMessage().Text, "Something went wrong")
	})

	t.Run("send failure is logged only", func(t *testing.T) {
		t.Parallel()
		b, crm, mockBot := setupTestBot(t)
		crm.distribution = []appmodels.StatusCount{{Status: appmodels.LeadStatusNew, Count: 1, TotalValue: dec("1")}}
		mockBot.SendDocumentError = errors.New("file too large")

		b.handleChartCore(context.Background(), mockBot, mocks.CommandUpdate(100, 100, "/chart"))
		require.Zero(t, mockBot.SentDocumentCount())
		require.Zero(t, mockBot.SentMessageCount())
	})
}
