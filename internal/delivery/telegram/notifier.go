package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// Notifier bildirishnomalarni bitta dayjest ko'rinishida Telegram chat/topic ga yuboradi
type Notifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	threadID int
}

// NewNotifier yangi Telegram notifier
func NewNotifier(bot *tgbotapi.BotAPI, chatID int64, threadID int) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, threadID: threadID}
}

// Notify dayjestni yuboradi; bo'sh ro'yxat uchun hech narsa qilmaydi
func (n *Notifier) Notify(ctx context.Context, notifications []entity.Notification) error {
	text := formatDigest(notifications)
	if text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sendLong(n.bot, n.chatID, n.threadID, text); err != nil {
		return fmt.Errorf("telegram notify chat=%d: %w", n.chatID, err)
	}
	log.Printf("[telegram] %d ta bildirishnoma yuborildi (chat=%d thread=%d)", len(notifications), n.chatID, n.threadID)
	return nil
}
