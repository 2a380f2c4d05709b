package usecase

import (
	"context"
	"log"

	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
)

type logNotifier struct{}

// NewLogNotifier Telegram sozlanmaganda bildirishnomalarni logga yozadi
func NewLogNotifier() repository.Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(ctx context.Context, notifications []entity.Notification) error {
	for _, n := range notifications {
		log.Printf("[notify] %s: %s - %s", n.Type, n.Title, n.Body)
	}
	return nil
}
