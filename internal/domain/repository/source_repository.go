package repository

import (
	"context"

	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// SheetSource mahsulot jadvalini o'qish uchun interface (Google Sheets yoki Excel fayl)
type SheetSource interface {
	// Fetch mahsulot va (bo'lsa) joylashuv varaqlarini xom qatorlar ko'rinishida qaytaradi
	Fetch(ctx context.Context) (entity.SheetData, error)

	// Describe manba nomi (log va sync yozuvlari uchun)
	Describe() string
}

// CatalogSource tashqi katalog (WooCommerce) uchun interface
type CatalogSource interface {
	// FetchProducts barcha sahifalarni yuklab bitta massiv qaytaradi
	FetchProducts(ctx context.Context) ([]entity.ExternalProduct, error)

	// Enabled integratsiya yoqilganmi
	Enabled() bool
}
