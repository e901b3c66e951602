package bot

import "gitlab.com/yelinaung/event-crm/internal/bot/mocks"

// TelegramAPI is the subset of the Telegram client used by handlers.
type TelegramAPI = mocks.TelegramAPI
