package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/event-crm/internal/logger"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

const (
	// DigestCheckInterval is how often the digest loop checks whether to send.
	DigestCheckInterval = 30 * time.Minute
	// DigestTimeout is the maximum time a single digest check can take.
	DigestTimeout = 2 * time.Minute
)

// startDailyDigestLoop periodically sends whitelisted users a summary of
// urgent leads and low stock, once per day at the configured hour.
func (b *Bot) startDailyDigestLoop(ctx context.Context) {
	if !b.cfg.DailyDigestEnabled {
		logger.Log.Info().Msg("Daily digest is disabled")
		return
	}
	if len(b.cfg.WhitelistedUserIDs) == 0 {
		logger.Log.Warn().Msg("Daily digest needs WHITELISTED_USER_IDS, usernames cannot be messaged first")
		return
	}

	loc := b.cfg.Location()
	logger.Log.Info().
		Int("hour", b.cfg.DigestHour).
		Str("timezone", loc.String()).
		Msg("Daily digest loop started")

	sent := make(map[int64]string)
	ticker := time.NewTicker(DigestCheckInterval)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		logger.Log.Info().Msg("Daily digest loop stopped")
		return
	default:
	}

	// Check once right away so a start during the digest hour still sends.
	b.checkAndSendDigest(ctx, sent, b.now().In(loc))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Daily digest loop stopped")
			return
		case <-ticker.C:
			b.checkAndSendDigest(ctx, sent, b.now().In(loc))
		}
	}
}

// checkAndSendDigest sends the digest when now falls in the digest hour.
// sent records, per user, the day the digest went out.
func (b *Bot) checkAndSendDigest(ctx context.Context, sent map[int64]string, now time.Time) {
	if now.Hour() != b.cfg.DigestHour {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, DigestTimeout)
	defer cancel()

	todayStr := now.Format("2006-01-02")

	// Prune entries from previous days so the map doesn't grow unbounded.
	for uid, dateStr := range sent {
		if dateStr != todayStr {
			delete(sent, uid)
		}
	}

	pending := make([]int64, 0, len(b.cfg.WhitelistedUserIDs))
	for _, id := range b.cfg.WhitelistedUserIDs {
		if sent[id] != todayStr {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return
	}

	urgent, err := b.crm.UrgentLeads(checkCtx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load urgent leads for digest")
		return
	}
	lowStock, err := b.crm.LowStock(checkCtx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load low stock for digest")
		return
	}

	if len(urgent) == 0 && len(lowStock) == 0 {
		for _, id := range pending {
			sent[id] = todayStr
		}
		logger.Log.Debug().Msg("Nothing to report in daily digest")
		return
	}

	text := formatDigest(urgent, lowStock)
	for _, id := range pending {
		_, err := b.messageSender.SendMessage(checkCtx, &tgbot.SendMessageParams{
			ChatID:    id,
			Text:      text,
			ParseMode: tgmodels.ParseModeHTML,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Str("user_hash", logger.HashUserID(id)).Msg("Failed to send daily digest")
			continue
		}
		sent[id] = todayStr
		logger.Log.Debug().Str("user_hash", logger.HashUserID(id)).Msg("Sent daily digest")
	}
}

func formatDigest(urgent []models.LeadWithAlert, lowStock []models.InventoryItem) string {
	var sb strings.Builder
	sb.WriteString("<b>☀️ Daily digest</b>\n")
	if len(urgent) > 0 {
		fmt.Fprintf(&sb, "\n<b>🔴 %d leads need contact</b>\n", len(urgent))
		sb.WriteString(formatAlertLines(urgent))
	}
	if len(lowStock) > 0 {
		fmt.Fprintf(&sb, "\n<b>📦 %d items low on stock</b>\n", len(lowStock))
		sb.WriteString(formatStockLines(lowStock))
	}
	return sb.String()
}
