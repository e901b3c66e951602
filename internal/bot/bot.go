// Package bot provides the Telegram front end of the CRM: pipeline summaries,
// alerts, charts, lead intake from forwarded inquiries and a daily digest.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/event-crm/internal/config"
	"gitlab.com/yelinaung/event-crm/internal/gemini"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

// CRM is the part of the service layer the bot talks to.
type CRM interface {
	ListLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	CreateLead(ctx context.Context, in *models.NewLead) (*models.Lead, error)
	UpdateLeadStatus(ctx context.Context, id uuid.UUID, status models.LeadStatus, extra *models.LeadUpdate) (*models.Lead, error)
	PipelineStats(ctx context.Context) (models.PipelineStats, error)
	Distribution(ctx context.Context) ([]models.StatusCount, error)
	Trend(ctx context.Context) ([]models.TrendPoint, error)
	LeadsWithAlerts(ctx context.Context) ([]models.LeadWithAlert, error)
	UrgentLeads(ctx context.Context) ([]models.LeadWithAlert, error)
	EventProfit(ctx context.Context, leadID uuid.UUID) (models.EventProfit, error)
	ConfirmedEvents(ctx context.Context) ([]models.Lead, models.EventsSummary, error)
	ExpenseStats(ctx context.Context) (models.ExpenseStats, error)
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
	ListUnreadNotifications(ctx context.Context) ([]models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
	Notify(ctx context.Context, in *models.NewNotification) (*models.Notification, error)
}

// LeadParser extracts lead data from free text.
type LeadParser interface {
	ParseLeadInquiry(ctx context.Context, text string) (*gemini.LeadInquiry, error)
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot           *bot.Bot
	cfg           *config.Config
	crm           CRM
	intake        LeadParser
	messageSender TelegramAPI
	now           func() time.Time
}

// New creates a new Bot instance. intake may be nil, in which case free
// text is answered with a usage hint.
func New(cfg *config.Config, crm CRM, intake LeadParser) (*Bot, error) {
	b := &Bot{
		cfg:    cfg,
		crm:    crm,
		intake: intake,
		now:    time.Now,
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot
	b.registerHandlers()

	return b, nil
}

// newTestBot builds a Bot without a Telegram connection.
func newTestBot(cfg *config.Config, crm CRM, intake LeadParser, sender TelegramAPI, now func() time.Time) *Bot {
	return &Bot{cfg: cfg, crm: crm, intake: intake, messageSender: sender, now: now}
}

// Start runs the digest loop and begins polling for updates. It blocks
// until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go b.startDailyDigestLoop(ctx)

	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/pipeline", bot.MatchTypePrefix, b.handlePipeline)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/alerts", bot.MatchTypePrefix, b.handleAlerts)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/leads", bot.MatchTypePrefix, b.handleLeads)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/won", bot.MatchTypePrefix, b.handleWon)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/lost", bot.MatchTypePrefix, b.handleLost)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/profit", bot.MatchTypePrefix, b.handleProfit)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/events", bot.MatchTypePrefix, b.handleEvents)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/expenses", bot.MatchTypePrefix, b.handleExpenses)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stock", bot.MatchTypePrefix, b.handleStock)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/notifications", bot.MatchTypePrefix, b.handleNotifications)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/readall", bot.MatchTypePrefix, b.handleReadAll)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chart", bot.MatchTypePrefix, b.handleChart)
}

// whitelistMiddleware checks if the user is whitelisted before processing.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		if !b.authorize(ctx, tgBot, update) {
			return
		}
		next(ctx, tgBot, update)
	}
}

// authorize reports whether the update comes from a whitelisted user and
// tells everyone else they are not allowed in.
func (b *Bot) authorize(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) bool {
	userID := extractUserID(update)
	if userID == 0 {
		return false
	}

	username := extractUsername(update)
	logUserAction(userID, username, update)

	if b.cfg.IsUserWhitelisted(userID, username) {
		return true
	}

	logger.Log.Warn().
		Str("user_hash", logger.HashUserID(userID)).
		Msg("Blocked non-whitelisted user")
	if update.Message != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "⛔ Sorry, you are not authorized to use this bot.",
		})
	}
	return false
}

// logUserAction logs the user's input without its content.
func logUserAction(userID int64, username string, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Bool("has_username", username != "").
			Int("text_length", len(msg.Text))
		if msg.Text != "" && msg.Text[0] == '/' {
			event = event.Str("command", commandName(msg.Text))
		}
		event.Msg("User input")

	case update.EditedMessage != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Msg("Edited message ignored")
	}
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.Username
	}
	return ""
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.ID
	}
	return 0
}

// defaultHandler treats any non-command text as a lead inquiry.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleInquiryCore(ctx, tgBot, update)
}

// parseDecimalArg parses a money argument, accepting thousands separators.
func parseDecimalArg(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(stripThousands(s))
}
