package repository

import (
	"context"

	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// Notifier bildirishnomalarni tashqi kanalga yuborish (Telegram yoki log)
type Notifier interface {
	Notify(ctx context.Context, notifications []entity.Notification) error
}

// Summarizer solishtirish hisobotidan qisqa matnli xulosa yaratish (ixtiyoriy, Gemini)
type Summarizer interface {
	Summarize(ctx context.Context, report entity.ReconciliationReport) (string, error)
}
