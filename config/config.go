package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	// Jadval manbai: Google Sheets ID/URL, Drive fayl URL yoki lokal .xlsx yo'li
	SheetSource           string
	SheetsAPIKey          string
	GoogleCredentialsFile string

	WooEnabled        bool
	WooSiteURL        string
	WooConsumerKey    string
	WooConsumerSecret string
	WooVisibility     string

	LowStockThreshold int

	TelegramToken  string
	NotifyChatID   int64
	NotifyThreadID int

	GeminiAPIKey string

	PostgresDSN             string
	PostgresConnectAttempts int
	PostgresRetryDelay      time.Duration

	// Faqat o'qish uchun HTTP API. Bo'sh bo'lsa ishga tushmaydi.
	HTTPAddr       string
	AllowedOrigins []string

	LogLevel     string
	ReportPath   string
	SyncInterval time.Duration
}

// NotificationsEnabled Telegram xabarnomalari sozlanganmi
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && c.NotifyChatID != 0
}

// SummaryEnabled Gemini xulosasi yoqilganmi
func (c *Config) SummaryEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	cfg := &Config{
		SheetSource:           strings.TrimSpace(os.Getenv("SHEET_SOURCE")),
		SheetsAPIKey:          strings.TrimSpace(os.Getenv("GSHEETS_API_KEY")),
		GoogleCredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE")),
		WooEnabled:            getEnvBool("WOO_ENABLED", false),
		WooSiteURL:            strings.TrimRight(strings.TrimSpace(os.Getenv("WOO_SITE_URL")), "/"),
		WooConsumerKey:        strings.TrimSpace(os.Getenv("WOO_CONSUMER_KEY")),
		WooConsumerSecret:     strings.TrimSpace(os.Getenv("WOO_CONSUMER_SECRET")),
		WooVisibility:         strings.ToLower(strings.TrimSpace(os.Getenv("WOO_VISIBILITY"))),
		LowStockThreshold:     getEnvInt("LOW_STOCK_THRESHOLD", constants.DefaultLowStockThreshold),
		TelegramToken:         strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		HTTPAddr:              strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		AllowedOrigins:        splitList(os.Getenv("ALLOWED_ORIGINS")),
		LogLevel:              strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		ReportPath:            strings.TrimSpace(os.Getenv("REPORT_PATH")),
	}

	cfg.PostgresConnectAttempts = getEnvInt("POSTGRES_CONNECT_MAX_ATTEMPTS", constants.PostgresConnectAttempts)
	retrySeconds := getEnvInt("POSTGRES_CONNECT_RETRY_SECONDS", int(constants.PostgresConnectDelay/time.Second))
	cfg.PostgresRetryDelay = time.Duration(retrySeconds) * time.Second

	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = buildPostgresDSNFromEnv()
	}

	if rawTarget := os.Getenv("NOTIFY_CHAT_ID"); rawTarget != "" {
		chatID, threadID, err := parseChatTarget(rawTarget)
		if err != nil {
			return nil, fmt.Errorf("NOTIFY_CHAT_ID noto'g'ri formatda: %w", err)
		}
		cfg.NotifyChatID = chatID
		cfg.NotifyThreadID = threadID
	}

	interval, err := parseInterval(os.Getenv("SYNC_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("SYNC_INTERVAL noto'g'ri: %w", err)
	}
	cfg.SyncInterval = interval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate majburiy qiymatlarni tekshiradi
func (c *Config) Validate() error {
	if c.SheetSource == "" {
		return fmt.Errorf("SHEET_SOURCE bo'sh: %w", entity.ErrSourceNotConfigured)
	}
	if c.WooEnabled {
		missing := []string{}
		if c.WooSiteURL == "" {
			missing = append(missing, "WOO_SITE_URL")
		}
		if c.WooConsumerKey == "" {
			missing = append(missing, "WOO_CONSUMER_KEY")
		}
		if c.WooConsumerSecret == "" {
			missing = append(missing, "WOO_CONSUMER_SECRET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s bo'sh: %w", strings.Join(missing, ", "), entity.ErrCatalogNotConfigured)
		}
	}
	switch c.WooVisibility {
	case "":
		c.WooVisibility = "strict"
	case "strict", "permissive":
	default:
		return fmt.Errorf("WOO_VISIBILITY faqat strict yoki permissive bo'lishi mumkin, berilgan: %q", c.WooVisibility)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD manfiy bo'lmasligi kerak: %d", c.LowStockThreshold)
	}
	if c.PostgresConnectAttempts <= 0 {
		c.PostgresConnectAttempts = constants.PostgresConnectAttempts
	}
	if c.PostgresRetryDelay <= 0 {
		c.PostgresRetryDelay = constants.PostgresConnectDelay
	}
	return nil
}

// parseInterval "15m" kabi davomiylik yoki daqiqalar sonini qabul qiladi
func parseInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return constants.DefaultSyncInterval, nil
	}
	var d time.Duration
	if minutes, err := strconv.Atoi(raw); err == nil {
		d = time.Duration(minutes) * time.Minute
	} else {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d < constants.MinSyncInterval {
		log.Printf("[config] SYNC_INTERVAL %s juda kichik, %s ishlatiladi", d, constants.MinSyncInterval)
		d = constants.MinSyncInterval
	}
	if d > constants.MaxSyncInterval {
		log.Printf("[config] SYNC_INTERVAL %s juda katta, %s ishlatiladi", d, constants.MaxSyncInterval)
		d = constants.MaxSyncInterval
	}
	return d, nil
}

func parseChatTarget(raw string) (int64, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, nil
	}
	// Inline kommentariyalarni qo'llab-quvvatlash: "-100.../4  # izoh"
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	parts := strings.Split(raw, "/")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("noto'g'ri format, misol: -1001234567890 yoki -1001234567890/2")
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if chatID > 0 {
		// Supergroup/kanallarda manfiy bo'lishi kerak, shuning uchun avtomatik tuzatamiz
		chatID = -chatID
	}

	threadID := 0
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		tid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("topic ID noto'g'ri: %w", err)
		}
		if tid < 0 {
			tid = -tid
		}
		threadID = tid
	}

	return chatID, threadID, nil
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	password := os.Getenv("POSTGRES_PASSWORD")
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	sslmode := strings.TrimSpace(os.Getenv("POSTGRES_SSLMODE"))

	if host == "" || user == "" || db == "" {
		return ""
	}
	if port == "" {
		port = "5432"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	db = strings.TrimPrefix(db, "/")
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + db,
	}
	if password == "" {
		u.User = url.User(user)
	} else {
		u.User = url.UserPassword(user, password)
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnvInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[config] %s butun son emas (%q), standart %d ishlatiladi", key, raw, defaultValue)
		return defaultValue
	}
	return val
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
