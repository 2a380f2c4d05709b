package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
	"github.com/yourusername/shelfsync/internal/usecase"
)

const helpText = `Inventory bot commands:
/status - last sync and data counts
/search <text> - find products and their shelf positions
/shelf <id> - shelf grid and boxes (for example /shelf Kigali-3)
/shelves - list shelves
/mismatches - sheet vs store quantity differences
/sync - run a sync now`

// BotHandler faqat o'qish uchun komandalar (status, qidiruv, javonlar)
type BotHandler struct {
	bot      *tgbotapi.BotAPI
	sync     usecase.SyncUseCase
	chatID   int64
	threadID int
}

// NewBotHandler yangi handler. chatID 0 bo'lsa har qanday chatga javob beradi.
func NewBotHandler(bot *tgbotapi.BotAPI, sync usecase.SyncUseCase, chatID int64, threadID int) *BotHandler {
	return &BotHandler{bot: bot, sync: sync, chatID: chatID, threadID: threadID}
}

// Start botni ishga tushirish
func (h *BotHandler) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)
	log.Printf("[telegram] @%s komandalarni kutmoqda", h.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			go h.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage komandani bajarib javob yuboradi
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil || !h.allowed(message.Chat.ID) {
		return
	}
	text := h.reply(ctx, message.Command(), message.CommandArguments())
	threadID := 0
	if message.Chat.ID == h.chatID {
		threadID = h.threadID
	}
	if err := sendLong(h.bot, message.Chat.ID, threadID, text); err != nil {
		log.Printf("[telegram] javob yuborilmadi chat=%d: %v", message.Chat.ID, err)
	}
}

func (h *BotHandler) allowed(chatID int64) bool {
	return h.chatID == 0 || chatID == h.chatID
}

// reply komanda uchun javob matni
func (h *BotHandler) reply(ctx context.Context, command, args string) string {
	args = strings.TrimSpace(args)
	switch command {
	case "start", "help":
		return helpText
	case "status":
		snap, err := h.sync.Snapshot(ctx)
		if err != nil {
			return "Status unavailable: " + err.Error()
		}
		runs, err := h.sync.RecentRuns(ctx, 1)
		if err != nil {
			log.Printf("[telegram] sync tarixi o'qilmadi: %v", err)
		}
		return formatStatus(snap, runs)
	case "search":
		if args == "" {
			return "Usage: /search <sku, name or category>"
		}
		snap, err := h.sync.Snapshot(ctx)
		if err != nil {
			return "Search unavailable: " + err.Error()
		}
		return formatSearch(snap, args)
	case "shelf":
		if args == "" {
			return "Usage: /shelf <id>"
		}
		snap, err := h.sync.Snapshot(ctx)
		if err != nil {
			return "Shelf unavailable: " + err.Error()
		}
		shelf, err := inventory.FindShelf(snap.Shelves, args)
		if errors.Is(err, entity.ErrShelfNotFound) {
			return fmt.Sprintf("Shelf %q not found. Use /shelves to list them.", args)
		}
		return formatShelf(shelf)
	case "shelves":
		snap, err := h.sync.Snapshot(ctx)
		if err != nil {
			return "Shelves unavailable: " + err.Error()
		}
		return formatShelfList(inventory.SearchShelves(snap.Shelves, snap.Products, args))
	case "mismatches":
		report, err := h.sync.Report(ctx)
		if err != nil {
			return "Report unavailable: " + err.Error()
		}
		return formatMismatches(report)
	case "sync":
		syncCtx, cancel := context.WithTimeout(ctx, constants.SyncTimeout)
		defer cancel()
		run, err := h.sync.Sync(syncCtx)
		if err != nil {
			return "Sync failed: " + err.Error()
		}
		return fmt.Sprintf("Sync done in %s: %d products, %d shelves, %d mismatches",
			run.Duration().Round(time.Millisecond), run.Products, run.Shelves, run.Mismatches)
	default:
		return "Unknown command. " + helpText
	}
}

func formatShelfList(hits []inventory.ShelfHit) string {
	if len(hits) == 0 {
		return "No shelves"
	}
	var b strings.Builder
	for _, hit := range hits {
		st := inventory.Stats(hit.Shelf)
		fmt.Fprintf(&b, "%s - %d boxes, %.0f%%", hit.Shelf.ID, st.TotalBoxes, st.Utilization)
		if hit.Product != nil {
			fmt.Fprintf(&b, " (has %s)", hit.Product.SKU)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
