package publisher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"journal-post-bot/internal/domain"
	"journal-post-bot/internal/infra/metrics"
)

// Telegram публикует готовые посты в канал пользователя через Bot API.
type Telegram struct {
	bot   *tgbotapi.BotAPI
	users domain.UserRepo
}

var _ domain.Publisher = (*Telegram)(nil)

// NewTelegram создаёт публикатора.
func NewTelegram(bot *tgbotapi.BotAPI, users domain.UserRepo) *Telegram {
	return &Telegram{bot: bot, users: users}
}

// Publish отправляет текст в канал пользователя и возвращает id сообщения.
func (t *Telegram) Publish(ctx context.Context, userID int64, text string) (string, error) {
	user, err := t.users.GetByID(userID)
	if err != nil {
		return "", fmt.Errorf("получение пользователя: %w", err)
	}
	if user.TGChannelID == 0 {
		return "", fmt.Errorf("у пользователя %d не настроен канал публикации", userID)
	}

	msg := tgbotapi.NewMessage(user.TGChannelID, text)
	msg.DisableWebPagePreview = true

	start := time.Now()
	sent, err := t.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram", "send_message", "bot_api", start, err)
	if err != nil {
		metrics.IncPublishError()
		return "", fmt.Errorf("отправка поста: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}
