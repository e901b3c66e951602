package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/event-crm/internal/logger"
	appmodels "gitlab.com/yelinaung/event-crm/internal/models"
)

// maxListedLeads caps lead lists in a single message.
const maxListedLeads = 20

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I keep an eye on your event pipeline.

<b>Quick Start:</b>
• /pipeline for today's numbers
• /alerts for leads waiting on a follow-up
• Forward a client inquiry and I'll turn it into a lead

Use /help to see all available commands.`,
		formatGreeting(firstName))

	sendHTML(ctx, tg, update.Message.Chat.ID, text)
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := `<b>📖 Commands</b>

<b>Pipeline</b>
/pipeline - Pipeline summary
/leads [status] - List leads (new, contacted, proposal, won, lost)
/alerts - Active leads without recent contact
/won &lt;id&gt; [value] - Mark a lead as won
/lost &lt;id&gt; [reason] - Mark a lead as lost

<b>Events</b>
/events - Confirmed events
/profit &lt;id&gt; - Margin of one event

<b>Operations</b>
/expenses - Spending summary
/stock - Items at or below minimum stock
/notifications - Unread notifications
/readall - Mark all notifications read

<b>Charts</b>
/chart pipeline|trend|expenses

Lead ids can be shortened to their first characters.
Any other text is read as a client inquiry and saved as a new lead.`

	sendHTML(ctx, tg, update.Message.Chat.ID, text)
}

// handlePipeline handles the /pipeline command.
func (b *Bot) handlePipeline(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handlePipelineCore(ctx, tgBot, update)
}

// handlePipelineCore is the testable implementation of handlePipeline.
func (b *Bot) handlePipelineCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	stats, err := b.crm.PipelineStats(ctx)
	if err != nil {
		replyError(ctx, tg, chatID, "pipeline stats", err)
		return
	}

	sendHTML(ctx, tg, chatID, formatPipeline(stats))
}

func formatPipeline(s appmodels.PipelineStats) string {
	var sb strings.Builder
	sb.WriteString("<b>📊 Pipeline</b>\n\n")
	fmt.Fprintf(&sb, "🆕 New: %d\n", s.New)
	fmt.Fprintf(&sb, "📞 Contacted: %d\n", s.Contacted)
	fmt.Fprintf(&sb, "📝 Proposal: %d\n", s.Proposal)
	fmt.Fprintf(&sb, "🏆 Won: %d\n", s.Won)
	fmt.Fprintf(&sb, "❌ Lost: %d\n\n", s.Lost)
	fmt.Fprintf(&sb, "Pipeline value: <b>%s</b>\n", formatMoney(s.PipelineValue))
	fmt.Fprintf(&sb, "Revenue: <b>%s</b>\n", formatMoney(s.RevenueTotal))
	fmt.Fprintf(&sb, "Average deal: %s\n", formatMoney(s.AvgDealSize))
	fmt.Fprintf(&sb, "Conversion: %s\n\n", formatPercent(s.ConversionRate))
	fmt.Fprintf(&sb, "This month: %d new, %d won", s.NewThisMonth, s.WonThisMonth)
	return sb.String()
}

// handleAlerts handles the /alerts command.
func (b *Bot) handleAlerts(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAlertsCore(ctx, tgBot, update)
}

// handleAlertsCore is the testable implementation of handleAlerts.
func (b *Bot) handleAlertsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	leads, err := b.crm.LeadsWithAlerts(ctx)
	if err != nil {
		replyError(ctx, tg, chatID, "lead alerts", err)
		return
	}

	flagged := make([]appmodels.LeadWithAlert, 0, len(leads))
	for _, l := range leads {
		if l.AlertStatus != appmodels.AlertOK {
			flagged = append(flagged, l)
		}
	}
	if len(flagged) == 0 {
		sendHTML(ctx, tg, chatID, "✅ Every active lead has been contacted recently.")
		return
	}

	sendHTML(ctx, tg, chatID, "<b>⏰ Follow-ups due</b>\n\n"+formatAlertLines(flagged))
}

func formatAlertLines(leads []appmodels.LeadWithAlert) string {
	var sb strings.Builder
	for i, l := range leads {
		if i == maxListedLeads {
			fmt.Fprintf(&sb, "… and %d more", len(leads)-maxListedLeads)
			break
		}
		icon := "🟡"
		if l.AlertStatus == appmodels.AlertUrgent {
			icon = "🔴"
		}
		fmt.Fprintf(&sb, "%s <code>%s</code> %s · %d days · %s\n",
			icon, shortID(l.ID), escapeHTML(l.Name), l.DaysInactive, l.Status)
	}
	return sb.String()
}

// handleLeads handles the /leads command.
func (b *Bot) handleLeads(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleLeadsCore(ctx, tgBot, update)
}

// handleLeadsCore is the testable implementation of handleLeads.
func (b *Bot) handleLeadsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	var filter appmodels.LeadFilter
	if arg := extractCommandArgs(update.Message.Text, "/leads"); arg != "" {
		status, err := appmodels.ParseLeadStatus(arg)
		if err != nil {
			replyError(ctx, tg, chatID, "parse status", err)
			return
		}
		filter.Status = &status
	}

	leads, err := b.crm.ListLeads(ctx, filter)
	if err != nil {
		replyError(ctx, tg, chatID, "list leads", err)
		return
	}
	if len(leads) == 0 {
		sendHTML(ctx, tg, chatID, "📭 No leads found.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>📋 Leads (%d)</b>\n\n", len(leads))
	for i := range leads {
		if i == maxListedLeads {
			fmt.Fprintf(&sb, "… and %d more", len(leads)-maxListedLeads)
			break
		}
		l := &leads[i]
		fmt.Fprintf(&sb, "<code>%s</code> %s · %s · %s\n",
			shortID(l.ID), escapeHTML(l.Name), l.Status, formatMoney(l.EstimatedValue))
	}
	sendHTML(ctx, tg, chatID, sb.String())
}

// handleWon handles the /won command.
func (b *Bot) handleWon(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleWonCore(ctx, tgBot, update)
}

// handleWonCore is the testable implementation of handleWon. An optional
// second argument records the closing value.
func (b *Bot) handleWonCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	fields := strings.Fields(extractCommandArgs(update.Message.Text, "/won"))
	if len(fields) == 0 || len(fields) > 2 {
		sendHTML(ctx, tg, chatID, "Usage: <code>/won &lt;id&gt; [value]</code>")
		return
	}

	id, err := b.resolveLeadID(ctx, fields[0])
	if err != nil {
		replyError(ctx, tg, chatID, "resolve lead", err)
		return
	}

	extra := &appmodels.LeadUpdate{}
	if len(fields) == 2 {
		value, err := parseDecimalArg(fields[1])
		if err != nil {
			sendHTML(ctx, tg, chatID, "❌ Invalid value. Example: <code>/won 3f2a 1500000</code>")
			return
		}
		extra.ActualValue = &value
	}

	lead, err := b.crm.UpdateLeadStatus(ctx, id, appmodels.LeadStatusWon, extra)
	if err != nil {
		replyError(ctx, tg, chatID, "mark lead won", err)
		return
	}

	logger.Log.Info().Str("lead_id", lead.ID.String()).Msg("Lead marked won from bot")
	sendHTML(ctx, tg, chatID, fmt.Sprintf("🏆 <b>%s</b> is won. Revenue: %s",
		escapeHTML(lead.Name), formatMoney(lead.Revenue())))
}

// handleLost handles the /lost command.
func (b *Bot) handleLost(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleLostCore(ctx, tgBot, update)
}

// handleLostCore is the testable implementation of handleLost. Everything
// after the id is the lost reason.
func (b *Bot) handleLostCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := extractCommandArgs(update.Message.Text, "/lost")
	idArg, reason, _ := strings.Cut(args, " ")
	if idArg == "" {
		sendHTML(ctx, tg, chatID, "Usage: <code>/lost &lt;id&gt; [reason]</code>")
		return
	}

	id, err := b.resolveLeadID(ctx, idArg)
	if err != nil {
		replyError(ctx, tg, chatID, "resolve lead", err)
		return
	}

	extra := &appmodels.LeadUpdate{}
	if reason = strings.TrimSpace(reason); reason != "" {
		extra.LostReason = &reason
	}

	lead, err := b.crm.UpdateLeadStatus(ctx, id, appmodels.LeadStatusLost, extra)
	if err != nil {
		replyError(ctx, tg, chatID, "mark lead lost", err)
		return
	}

	sendHTML(ctx, tg, chatID, fmt.Sprintf("📉 <b>%s</b> marked as lost.", escapeHTML(lead.Name)))
}

// handleEvents handles the /events command.
func (b *Bot) handleEvents(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleEventsCore(ctx, tgBot, update)
}

// handleEventsCore is the testable implementation of handleEvents.
func (b *Bot) handleEventsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	events, summary, err := b.crm.ConfirmedEvents(ctx)
	if err != nil {
		replyError(ctx, tg, chatID, "confirmed events", err)
		return
	}
	if len(events) == 0 {
		sendHTML(ctx, tg, chatID, "📭 No confirmed events yet.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>🎉 Confirmed events (%d)</b>\n", summary.Total)
	fmt.Fprintf(&sb, "Revenue: <b>%s</b> · %d without date\n\n", formatMoney(summary.TotalRevenue), summary.Undated)
	for i := range events {
		if i == maxListedLeads {
			fmt.Fprintf(&sb, "… and %d more", len(events)-maxListedLeads)
			break
		}
		e := &events[i]
		date := "no date"
		if e.EventDate != nil {
			date = e.EventDate.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "%s · <code>%s</code> %s · %s\n",
			date, shortID(e.ID), escapeHTML(e.Name), formatMoney(e.Revenue()))
	}
	sendHTML(ctx, tg, chatID, sb.String())
}

// handleProfit handles the /profit command.
func (b *Bot) handleProfit(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleProfitCore(ctx, tgBot, update)
}

// handleProfitCore is the testable implementation of handleProfit.
func (b *Bot) handleProfitCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	arg := extractCommandArgs(update.Message.Text, "/profit")
	if arg == "" {
		sendHTML(ctx, tg, chatID, "Usage: <code>/profit &lt;id&gt;</code>")
		return
	}

	id, err := b.resolveLeadID(ctx, arg)
	if err != nil {
		replyError(ctx, tg, chatID, "resolve lead", err)
		return
	}
	lead, err := b.crm.GetLead(ctx, id)
	if err != nil {
		replyError(ctx, tg, chatID, "get lead", err)
		return
	}
	profit, err := b.crm.EventProfit(ctx, id)
	if err != nil {
		replyError(ctx, tg, chatID, "event profit", err)
		return
	}

	icon := "📈"
	if profit.Profit.IsNegative() {
		icon = "📉"
	}
	text := fmt.Sprintf(`<b>%s %s</b>

Income: %s
Expenses: %s
Profit: <b>%s</b>
Margin: %s`,
		icon, escapeHTML(lead.Name),
		formatMoney(profit.Income),
		formatMoney(profit.Expenses),
		formatMoney(profit.Profit),
		formatPercent(profit.MarginPercent))
	sendHTML(ctx, tg, chatID, text)
}
