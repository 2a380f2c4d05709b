package telegram

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramMessageLimit Telegram xabar uzunligi chegarasi (belgilarda)
const telegramMessageLimit = 4096

// sendText forum topic (message_thread_id) ni qo'llab-quvvatlagan holda xabar yuboradi
func sendText(bot *tgbotapi.BotAPI, chatID int64, threadID int, text string) (*tgbotapi.Message, error) {
	if bot == nil {
		return nil, fmt.Errorf("telegram bot is nil")
	}
	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_thread_id", threadID)
	params.AddNonEmpty("text", text)
	params.AddBool("disable_web_page_preview", true)

	resp, err := bot.MakeRequest("sendMessage", params)
	if err != nil {
		return nil, err
	}
	var msg tgbotapi.Message
	if err := json.Unmarshal(resp.Result, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// sendLong uzun matnni qatorlar bo'yicha bo'lib yuboradi
func sendLong(bot *tgbotapi.BotAPI, chatID int64, threadID int, text string) error {
	for _, chunk := range splitIntoChunks(text, telegramMessageLimit) {
		if _, err := sendText(bot, chatID, threadID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// splitIntoChunks matnni limit belgidan oshmaydigan bo'laklarga ajratadi.
// Iloji bo'lsa qator chegarasida bo'linadi.
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 || len([]rune(s)) <= limit {
		return []string{s}
	}
	var chunks []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.TrimRight(string(current), "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.SplitAfter(s, "\n") {
		runes := []rune(line)
		if len(current)+len(runes) > limit {
			flush()
		}
		for len(runes) > limit {
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		current = append(current, runes...)
	}
	flush()
	return chunks
}
