package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	appmodels "gitlab.com/yelinaung/event-crm/internal/models"
)

// shortIDLength is how many characters of a lead ID are shown in lists.
// Commands accept any unique prefix of at least minIDPrefix characters.
const (
	shortIDLength = 8
	minIDPrefix   = 4
)

var (
	errAmbiguousID = errors.New("more than one lead matches that id")
	errIDTooShort  = fmt.Errorf("lead id must have at least %d characters", minIDPrefix)
)

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

// commandName returns the bare command of a message, without arguments or
// @botname.
func commandName(text string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@")
	return name
}

// escapeHTML escapes special HTML characters for Telegram HTML parse mode.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}

// formatMoney renders a whole-peso amount with thousands separators.
func formatMoney(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

// formatPercent renders a percentage with up to two decimals.
func formatPercent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

func shortID(id uuid.UUID) string {
	return id.String()[:shortIDLength]
}

func stripThousands(s string) string {
	return strings.NewReplacer(",", "", "_", "", "$", "").Replace(strings.TrimSpace(s))
}

// resolveLeadID accepts a full lead ID or a unique prefix of one.
func (b *Bot) resolveLeadID(ctx context.Context, arg string) (uuid.UUID, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	if len(arg) < minIDPrefix {
		return uuid.Nil, errIDTooShort
	}

	leads, err := b.crm.ListLeads(ctx, appmodels.LeadFilter{})
	if err != nil {
		return uuid.Nil, err
	}
	var match uuid.UUID
	for _, l := range leads {
		if !strings.HasPrefix(l.ID.String(), arg) {
			continue
		}
		if match != uuid.Nil {
			return uuid.Nil, errAmbiguousID
		}
		match = l.ID
	}
	if match == uuid.Nil {
		return uuid.Nil, fmt.Errorf("lead %s: %w", arg, apperr.ErrNotFound)
	}
	return match, nil
}

// sendHTML sends an HTML message and logs failures.
func sendHTML(ctx context.Context, tg TelegramAPI, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// userMessage turns a service error into something safe to show.
func userMessage(err error) string {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return "❌ " + escapeHTML(ve.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return "❌ Not found."
	case errors.Is(err, errAmbiguousID), errors.Is(err, errIDTooShort):
		return "❌ " + escapeHTML(err.Error()) + "."
	default:
		return "❌ Something went wrong. Please try again."
	}
}

// replyError logs err and sends its user-facing form.
func replyError(ctx context.Context, tg TelegramAPI, chatID int64, op string, err error) {
	if !apperr.IsValidation(err) && !errors.Is(err, apperr.ErrNotFound) {
		logger.Log.Error().Err(err).Str("op", op).Msg("Bot command failed")
	}
	sendHTML(ctx, tg, chatID, userMessage(err))
}
