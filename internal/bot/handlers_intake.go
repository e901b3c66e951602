package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/event-crm/internal/gemini"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	appmodels "gitlab.com/yelinaung/event-crm/internal/models"
)

// minInquiryLength is the shortest text treated as an inquiry.
const minInquiryLength = 10

// handleInquiryCore turns a forwarded client inquiry into a lead and
// leaves an info notification for the web dashboard.
func (b *Bot) handleInquiryCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if text == "" || strings.HasPrefix(text, "/") {
		sendHTML(ctx, tg, chatID, "I don't know that command. Use /help to see what I can do.")
		return
	}
	if b.intake == nil {
		sendHTML(ctx, tg, chatID, "Lead intake is not configured. Use /help to see what I can do.")
		return
	}
	if len([]rune(text)) < minInquiryLength {
		sendHTML(ctx, tg, chatID, "Forward a client inquiry (name, email, event details) and I'll save it as a lead.")
		return
	}

	inquiry, err := b.intake.ParseLeadInquiry(ctx, text)
	switch {
	case errors.Is(err, gemini.ErrNoLeadData):
		sendHTML(ctx, tg, chatID, "🤔 I couldn't find a name or email in that message.")
		return
	case errors.Is(err, gemini.ErrLeadParseTimeout):
		sendHTML(ctx, tg, chatID, "⏱ Reading the inquiry took too long. Please try again.")
		return
	case err != nil:
		replyError(ctx, tg, chatID, "parse inquiry", err)
		return
	}

	lead, err := b.crm.CreateLead(ctx, inquiry.NewLead(appmodels.LeadSourceReferral, text))
	if err != nil {
		replyError(ctx, tg, chatID, "create lead", err)
		return
	}

	_, err = b.crm.Notify(ctx, &appmodels.NewNotification{
		Message:  "New lead received via Telegram",
		Kind:     appmodels.NotificationInfo,
		LeadName: lead.Name,
	})
	if err != nil {
		logger.Log.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("Failed to record intake notification")
	}

	sendHTML(ctx, tg, chatID, formatNewLead(lead))
}

func formatNewLead(lead *appmodels.Lead) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Lead saved: <b>%s</b> <code>%s</code>\n", escapeHTML(lead.Name), shortID(lead.ID))
	if lead.Email != "" {
		fmt.Fprintf(&sb, "📧 %s\n", escapeHTML(lead.Email))
	}
	if lead.Phone != "" {
		fmt.Fprintf(&sb, "📱 %s\n", escapeHTML(lead.Phone))
	}
	if lead.EventType != "" {
		fmt.Fprintf(&sb, "🎉 %s\n", escapeHTML(lead.EventType))
	}
	if lead.EventDate != nil {
		fmt.Fprintf(&sb, "📅 %s\n", lead.EventDate.Format("2006-01-02"))
	}
	if lead.Attendees != nil {
		fmt.Fprintf(&sb, "👥 %d guests\n", *lead.Attendees)
	}
	if lead.EstimatedValue.IsPositive() {
		fmt.Fprintf(&sb, "💰 %s\n", formatMoney(lead.EstimatedValue))
	}
	return sb.String()
}
