package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/event-crm/internal/chart"
	"gitlab.com/yelinaung/event-crm/internal/crm"
	"gitlab.com/yelinaung/event-crm/internal/logger"
)

// Chart kinds accepted by /chart.
const (
	chartPipeline = "pipeline"
	chartTrend    = "trend"
	chartExpenses = "expenses"
)

// handleChart handles the /chart command.
func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

// handleChartCore is the testable implementation of handleChart.
func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	kind := strings.ToLower(extractCommandArgs(update.Message.Text, "/chart"))
	if kind == "" {
		kind = chartPipeline
	}

	png, caption, err := b.renderChart(ctx, kind)
	switch {
	case errors.Is(err, errUnknownChart):
		sendHTML(ctx, tg, chatID, "Usage: <code>/chart pipeline|trend|expenses</code>")
		return
	case errors.Is(err, chart.ErrNoData):
		sendHTML(ctx, tg, chatID, "📭 Not enough data for that chart yet.")
		return
	case err != nil:
		replyError(ctx, tg, chatID, "render chart", err)
		return
	}

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: chart.Filename(kind, b.now().In(b.cfg.Location())),
			Data:     bytes.NewReader(png),
		},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("kind", kind).Msg("Failed to send chart")
	}
}

var errUnknownChart = errors.New("unknown chart kind")

func (b *Bot) renderChart(ctx context.Context, kind string) ([]byte, string, error) {
	switch kind {
	case chartPipeline:
		counts, err := b.crm.Distribution(ctx)
		if err != nil {
			return nil, "", err
		}
		png, err := chart.Distribution(counts)
		return png, "📊 Leads by status", err
	case chartTrend:
		points, err := b.crm.Trend(ctx)
		if err != nil {
			return nil, "", err
		}
		png, err := chart.Trend(points)
		return png, fmt.Sprintf("📈 New leads, last %d days", crm.TrendWindowDays), err
	case chartExpenses:
		stats, err := b.crm.ExpenseStats(ctx)
		if err != nil {
			return nil, "", err
		}
		png, err := chart.Expenses(stats)
		return png, "💸 Expenses by category", err
	default:
		return nil, "", errUnknownChart
	}
}
