package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/shelfsync/config"
	"github.com/yourusername/shelfsync/internal/delivery/api"
	"github.com/yourusername/shelfsync/internal/delivery/telegram"
	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
	"github.com/yourusername/shelfsync/internal/infrastructure/excel"
	"github.com/yourusername/shelfsync/internal/infrastructure/gemini"
	"github.com/yourusername/shelfsync/internal/infrastructure/sheets"
	"github.com/yourusername/shelfsync/internal/infrastructure/storage"
	"github.com/yourusername/shelfsync/internal/infrastructure/woocommerce"
	"github.com/yourusername/shelfsync/internal/inventory"
	"github.com/yourusername/shelfsync/internal/usecase"
	"github.com/yourusername/shelfsync/pkg/logger"
)

func main() {
	var (
		once   = flag.Bool("once", false, "Run a single sync and exit")
		check  = flag.Bool("check", false, "Test the sheet and catalog connections and exit")
		export = flag.String("export", "", "Sync once and write the xlsx analytics report to this path")
		search = flag.String("search", "", "Sync once and print products matching the query")
		shelf  = flag.String("shelf", "", "Sync once and print the shelf with this id (for example Kigali-3)")
		runs   = flag.Bool("runs", false, "Print recent sync runs and exit")
		format = flag.String("format", "text", "Output format for -search, -shelf and -runs: text, json")
	)
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Konfiguratsiya yuklanmadi: %v", err)
	}
	logger.InitLevel(cfg.LogLevel)
	logger.InfoLogger.Printf("shelfsync ishga tushmoqda (manba: %s)", cfg.SheetSource)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Ilova yaratilmadi: %v", err)
	}
	defer app.close()

	out := output{format: *format}
	switch {
	case *check:
		err = app.check(ctx)
	case *runs:
		list, listErr := app.sync.RecentRuns(ctx, constants.RecentRunsLimit)
		if err = listErr; err == nil {
			err = out.printRuns(list)
		}
	case *once, *export != "", *search != "", *shelf != "":
		err = app.runOnce(ctx, *export, *search, *shelf, out)
	default:
		err = app.serve(ctx, cfg.SyncInterval)
	}
	if err != nil && ctx.Err() == nil {
		logger.ErrorLogger.Printf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.InfoLogger.Println("shelfsync to'xtatildi")
}

type app struct {
	cfg           *config.Config
	source        repository.SheetSource
	catalog       *woocommerce.Client
	sync          usecase.SyncUseCase
	notifications repository.NotificationRepository
	bot           *tgbotapi.BotAPI
	closers       []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	source, err := sheets.Open(ctx, cfg.SheetSource, cfg.SheetsAPIKey, cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheet source: %w", err)
	}
	a.source = source
	logger.InfoLogger.Printf("Jadval manbai tayyor: %s", source.Describe())

	a.catalog = woocommerce.NewClient(woocommerce.Config{
		Enabled:        cfg.WooEnabled,
		SiteURL:        cfg.WooSiteURL,
		ConsumerKey:    cfg.WooConsumerKey,
		ConsumerSecret: cfg.WooConsumerSecret,
	}).OnProgress(func(loaded, total int) {
		log.Printf("[woocommerce] %d/%d mahsulot yuklandi", loaded, total)
	})

	var runRepo repository.RunRepository = storage.NewMemoryRunRepository()
	if cfg.PostgresDSN != "" {
		pg, err := storage.OpenPostgresRunRepository(ctx, cfg.PostgresDSN, cfg.PostgresConnectAttempts, cfg.PostgresRetryDelay)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		runRepo = pg
		logger.InfoLogger.Println("Sinxronizatsiya tarixi: postgres")
	}

	var notifier repository.Notifier
	if cfg.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create bot: %w", err)
		}
		a.bot = bot
		logger.InfoLogger.Printf("Telegram bot tayyor: @%s", bot.Self.UserName)
		if cfg.NotificationsEnabled() {
			notifier = telegram.NewNotifier(bot, cfg.NotifyChatID, cfg.NotifyThreadID)
		}
	}

	var summarizer repository.Summarizer
	if cfg.SummaryEnabled() {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		summarizer = client
		logger.InfoLogger.Printf("Gemini xulosa yoqildi (%s)", constants.GeminiModelName)
	}

	a.notifications = storage.NewMemoryNotificationRepository(constants.MaxNotifications)
	a.sync = usecase.NewSyncUseCase(usecase.SyncDeps{
		Source:        source,
		Catalog:       a.catalog,
		State:         storage.NewMemoryStateRepository(),
		Runs:          runRepo,
		Notifications: a.notifications,
		Notifier:      notifier,
		Summarizer:    summarizer,
	}, usecase.SyncOptions{
		LowStockThreshold: cfg.LowStockThreshold,
		Visibility:        inventory.PolicyByName(cfg.WooVisibility),
	})
	return a, nil
}

func (a *app) close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			logger.WarnLogger.Printf("yopishda xato: %v", err)
		}
	}
}

// serve har SYNC_INTERVAL da sinxronlaydi. Token bo'lsa bot komandalarini, HTTP_ADDR bo'lsa API so'rovlarini ham qabul qiladi.
func (a *app) serve(ctx context.Context, interval time.Duration) error {
	if a.cfg.HTTPAddr != "" {
		if a.cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewHandler(a.sync, a.notifications).Router(a.cfg.AllowedOrigins)
		go func() {
			if err := api.Serve(ctx, a.cfg.HTTPAddr, router); err != nil {
				logger.ErrorLogger.Printf("HTTP server xatosi: %v", err)
			}
		}()
	}
	if a.bot != nil {
		handler := telegram.NewBotHandler(a.bot, a.sync, a.cfg.NotifyChatID, a.cfg.NotifyThreadID)
		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorLogger.Printf("Bot xatosi: %v", err)
			}
		}()
	}

	a.syncWithTimeout(ctx)
	logger.InfoLogger.Printf("Har %s da sinxronizatsiya. To'xtatish uchun Ctrl+C ni bosing.", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.InfoLogger.Println("To'xtatish signali qabul qilindi...")
			return nil
		case <-ticker.C:
			a.syncWithTimeout(ctx)
		}
	}
}

func (a *app) syncWithTimeout(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, constants.SyncTimeout)
	defer cancel()
	if _, err := a.sync.Sync(syncCtx); err != nil {
		logger.ErrorLogger.Printf("Sinxronizatsiya xatosi: %v", err)
	}
}

func (a *app) runOnce(ctx context.Context, exportPath, query, shelfID string, out output) error {
	syncCtx, cancel := context.WithTimeout(ctx, constants.SyncTimeout)
	defer cancel()
	run, err := a.sync.Sync(syncCtx)
	if err != nil {
		return err
	}
	logger.InfoLogger.Printf("Sinxronizatsiya tugadi: %d mahsulot, %d javon, %d mismatch (%s)",
		run.Products, run.Shelves, run.Mismatches, run.Duration().Round(time.Millisecond))

	snap, err := a.sync.Snapshot(ctx)
	if err != nil {
		return err
	}

	if exportPath != "" {
		report, err := a.sync.Report(ctx)
		if err != nil {
			return err
		}
		if err := excel.WriteReport(exportPath, snap, report, time.Now()); err != nil {
			return err
		}
		logger.InfoLogger.Printf("Hisobot yozildi: %s", exportPath)
	}
	if query != "" {
		if err := out.printProducts(snap, inventory.FilterProducts(snap.Products, query)); err != nil {
			return err
		}
	}
	if shelfID != "" {
		found, err := inventory.FindShelf(snap.Shelves, shelfID)
		if err != nil {
			return err
		}
		if err := out.printShelf(found); err != nil {
			return err
		}
	}
	if exportPath == "" && query == "" && shelfID == "" {
		return out.printRuns([]entity.SyncRun{run})
	}
	return nil
}

func (a *app) check(ctx context.Context) error {
	type tester interface {
		TestConnection(ctx context.Context) (sheets.Info, error)
	}
	if t, ok := a.source.(tester); ok {
		info, err := t.TestConnection(ctx)
		if err != nil {
			return fmt.Errorf("sheet connection: %w", err)
		}
		fmt.Printf("Sheet: %s (%s) tabs=%v\n", info.Title, info.SourceType, info.Tabs)
	} else {
		data, err := a.source.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("sheet file: %w", err)
		}
		fmt.Printf("Sheet: %s product tab=%q location tab=%q\n", data.Title, data.ProductTab, data.LocationTab)
	}

	if !a.catalog.Enabled() {
		fmt.Println("Catalog: disabled")
		return nil
	}
	total, err := a.catalog.TestConnection(ctx)
	if err != nil {
		return fmt.Errorf("catalog connection: %w", err)
	}
	fmt.Printf("Catalog: %s (%d products)\n", a.cfg.WooSiteURL, total)
	return nil
}
