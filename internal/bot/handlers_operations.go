package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	appmodels "gitlab.com/yelinaung/event-crm/internal/models"
)

// handleExpenses handles the /expenses command.
func (b *Bot) handleExpenses(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExpensesCore(ctx, tgBot, update)
}

// handleExpensesCore is the testable implementation of handleExpenses.
func (b *Bot) handleExpensesCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	stats, err := b.crm.ExpenseStats(ctx)
	if err != nil {
		replyError(ctx, tg, chatID, "expense stats", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>💸 Expenses</b>\n\n")
	fmt.Fprintf(&sb, "Total: <b>%s</b>\n", formatMoney(stats.Total))
	fmt.Fprintf(&sb, "Pending: %s\n", formatMoney(stats.Pending))
	fmt.Fprintf(&sb, "Paid: %s\n", formatMoney(stats.Paid))
	fmt.Fprintf(&sb, "This month: %s\n", formatMoney(stats.ThisMonth))

	var lines []string
	for _, c := range appmodels.ExpenseCategories {
		if amount := stats.ByCategory[c]; amount.IsPositive() {
			lines = append(lines, fmt.Sprintf("• %s: %s", c, formatMoney(amount)))
		}
	}
	if len(lines) > 0 {
		sb.WriteString("\n<b>By category</b>\n")
		sb.WriteString(strings.Join(lines, "\n"))
	}
	sendHTML(ctx, tg, chatID, sb.String())
}

// handleStock handles the /stock command.
func (b *Bot) handleStock(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStockCore(ctx, tgBot, update)
}

// handleStockCore is the testable implementation of handleStock.
func (b *Bot) handleStockCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	items, err := b.crm.LowStock(ctx)
	if err != nil {
		replyError(ctx, tg, chatID, "low stock", err)
		return
	}
	if len(items) == 0 {
		sendHTML(ctx, tg, chatID, "✅ Stock levels are fine.")
		return
	}

	sendHTML(ctx, tg, chatID, "<b>📦 Low stock</b>\n\n"+formatStockLines(items))
}

func formatStockLines(items []appmodels.InventoryItem) string {
	var sb strings.Builder
	for i := range items {
		item := &items[i]
		minQty := 0
		if item.MinQty != nil {
			minQty = *item.MinQty
		}
		fmt.Fprintf(&sb, "• %s: %d available (min %d)\n", escapeHTML(item.Name), item.AvailableQty, minQty)
	}
	return sb.String()
}

// handleNotifications handles the /notifications command.
func (b *Bot) handleNotifications(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleNotificationsCore(ctx, tgBot, update)
}

// handleNotificationsCore is the testable implementation of handleNotifications.
func (b *Bot) handleNotificationsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	unread, err := b.crm.ListUnreadNotifications(ctx)
	if err != nil {
		replyError(ctx, tg, chatID, "unread notifications", err)
		return
	}
	if len(unread) == 0 {
		sendHTML(ctx, tg, chatID, "🔕 No unread notifications.")
		return
	}

	loc := b.cfg.Location()
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>🔔 Unread (%d)</b>\n\n", len(unread))
	for i := range unread {
		n := &unread[i]
		fmt.Fprintf(&sb, "%s %s %s\n", notificationIcon(n.Kind), n.CreatedAt.In(loc).Format("Jan 2 15:04"), escapeHTML(n.Message))
	}
	sb.WriteString("\nUse /readall to clear them.")
	sendHTML(ctx, tg, chatID, sb.String())
}

func notificationIcon(kind appmodels.NotificationKind) string {
	switch kind {
	case appmodels.NotificationSuccess:
		return "✅"
	case appmodels.NotificationWarning:
		return "⚠️"
	case appmodels.NotificationError:
		return "🛑"
	default:
		return "ℹ️"
	}
}

// handleReadAll handles the /readall command.
func (b *Bot) handleReadAll(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleReadAllCore(ctx, tgBot, update)
}

// handleReadAllCore is the testable implementation of handleReadAll.
func (b *Bot) handleReadAllCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	n, err := b.crm.MarkAllNotificationsRead(ctx)
	if err != nil {
		replyError(ctx, tg, chatID, "mark notifications read", err)
		return
	}
	sendHTML(ctx, tg, chatID, fmt.Sprintf("✅ Marked %d notifications as read.", n))
}
