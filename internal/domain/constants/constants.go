package constants

import "time"

// WooCommerce konstantalari
const (
	// WooPerPage bitta sahifadagi mahsulotlar soni
	WooPerPage = 100

	// WooAPIPrefix REST API yo'li
	WooAPIPrefix = "/wp-json/wc/v3"

	// WooUserAgent so'rovlar uchun User-Agent
	WooUserAgent = "shelfsync-inventory"

	// WooRequestTimeout bitta so'rov uchun timeout
	WooRequestTimeout = 30 * time.Second
)

// Sinxronizatsiya konstantalari
const (
	// DefaultSyncInterval avtomatik sinxronizatsiya oralig'i
	DefaultSyncInterval = 15 * time.Minute

	// MinSyncInterval eng qisqa oraliq
	MinSyncInterval = 1 * time.Minute

	// MaxSyncInterval eng uzun oraliq
	MaxSyncInterval = 24 * time.Hour

	// SyncTimeout bitta sinxronizatsiya uchun umumiy timeout
	SyncTimeout = 2 * time.Minute
)

// Bildirishnoma konstantalari
const (
	// DefaultLowStockThreshold shu miqdordan kam yoki teng bo'lsa "low stock"
	DefaultLowStockThreshold = 3

	// MaxNotifications ro'yxatda saqlanadigan max bildirishnomalar
	MaxNotifications = 50

	// MaxMismatchNotifications bitta sinxronizatsiyada yuboriladigan max mismatch xabarlari
	MaxMismatchNotifications = 20
)

// Javon konstantalari
const (
	// UtilizationWarningPercent shu foizdan boshlab ogohlantirish
	UtilizationWarningPercent = 70

	// UtilizationCriticalPercent shu foizdan boshlab kritik
	UtilizationCriticalPercent = 90

	// PartialBoxMaxProducts katak "partial" hisoblanadigan max SKU soni
	PartialBoxMaxProducts = 3
)

// AI konstantalari
const (
	// GeminiModelName Gemini AI model nomi
	GeminiModelName = "gemini-2.5-flash"

	// AITemperature AI javob aniqlik darajasi (0.0-1.0)
	AITemperature = 0.2

	// MaxRetries AI ga so'rov yuborish uchun max urinishlar
	MaxRetries = 3

	// RetryDelay har bir urinish o'rtasidagi kutish vaqti
	RetryDelay = 5 * time.Second
)

// Ma'lumotlar bazasi konstantalari
const (
	// PostgresConnectAttempts ulanish urinishlari soni
	PostgresConnectAttempts = 20

	// PostgresConnectDelay urinishlar orasidagi kutish
	PostgresConnectDelay = 2 * time.Second

	// RecentRunsLimit CLI da ko'rsatiladigan oxirgi sinxronizatsiyalar
	RecentRunsLimit = 10
)
