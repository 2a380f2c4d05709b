package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
	"github.com/yourusername/shelfsync/internal/inventory"
	"golang.org/x/sync/errgroup"
)

// SyncUseCase jadval va katalogni sinxronlash, solishtirish va bildirishnomalar
type SyncUseCase interface {
	Sync(ctx context.Context) (entity.SyncRun, error)
	Snapshot(ctx context.Context) (entity.Snapshot, error)
	Report(ctx context.Context) (entity.ReconciliationReport, error)
	RecentRuns(ctx context.Context, limit int) ([]entity.SyncRun, error)
	NotificationGroups(ctx context.Context) ([]entity.NotificationGroup, error)
}

// SyncDeps sinxronizatsiya bog'liqliklari. Catalog, Notifier va Summarizer ixtiyoriy.
type SyncDeps struct {
	Source        repository.SheetSource
	Catalog       repository.CatalogSource
	State         repository.StateRepository
	Runs          repository.RunRepository
	Notifications repository.NotificationRepository
	Notifier      repository.Notifier
	Summarizer    repository.Summarizer
}

// SyncOptions sozlamalar
type SyncOptions struct {
	LowStockThreshold int
	Visibility        inventory.VisibilityPolicy
}

type syncUseCase struct {
	deps    SyncDeps
	opts    SyncOptions
	matcher *inventory.Matcher
	mu      sync.Mutex
	now     func() time.Time
	newID   func() string
}

// NewSyncUseCase yangi SyncUseCase yaratish
func NewSyncUseCase(deps SyncDeps, opts SyncOptions) SyncUseCase {
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier()
	}
	return &syncUseCase{
		deps:    deps,
		opts:    opts,
		matcher: inventory.NewMatcher(opts.Visibility),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Sync bitta to'liq sinxronizatsiya. Bir vaqtda faqat bittasi ishlaydi.
func (u *syncUseCase) Sync(ctx context.Context) (entity.SyncRun, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	run := entity.SyncRun{
		ID:        u.newID(),
		StartedAt: u.now(),
		Source:    u.deps.Source.Describe(),
	}
	catalogEnabled := u.deps.Catalog != nil && u.deps.Catalog.Enabled()

	u.setLoading(ctx, repository.AreaInventory, true)
	defer u.setLoading(ctx, repository.AreaInventory, false)
	if catalogEnabled {
		u.setLoading(ctx, repository.AreaCatalog, true)
		defer u.setLoading(ctx, repository.AreaCatalog, false)
	}

	var (
		data       entity.SheetData
		external   []entity.ExternalProduct
		catalogErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = u.deps.Source.Fetch(gctx)
		if err != nil {
			return fmt.Errorf("fetch sheet %s: %w", run.Source, err)
		}
		return nil
	})
	if catalogEnabled {
		g.Go(func() error {
			// katalog xatosi sinxronizatsiyani to'xtatmaydi
			external, catalogErr = u.deps.Catalog.FetchProducts(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return u.fail(ctx, run, err)
	}

	result := inventory.ParseSheet(data)
	if result.Mapping.SerialFallback {
		log.Printf("[sync] SKU ustuni topilmadi, seriya raqami ustuni ishlatildi (%s)", run.Source)
	}
	shelves := inventory.BuildShelves(result.Locations)

	if err := u.deps.State.SetInventory(ctx, result.Products, result.Locations, shelves, u.now()); err != nil {
		return u.fail(ctx, run, fmt.Errorf("store inventory: %w", err))
	}

	switch {
	case !catalogEnabled:
		external = []entity.ExternalProduct{}
		if err := u.deps.State.SetCatalog(ctx, external, u.now()); err != nil {
			return u.fail(ctx, run, fmt.Errorf("store catalog: %w", err))
		}
	case catalogErr != nil:
		log.Printf("[sync] katalog yuklanmadi, oldingi nusxa ishlatiladi: %v", catalogErr)
		u.setError(ctx, repository.AreaCatalog, catalogErr)
		snap, err := u.deps.State.Snapshot(ctx)
		if err != nil {
			return u.fail(ctx, run, fmt.Errorf("read snapshot: %w", err))
		}
		external = snap.External
	default:
		if err := u.deps.State.SetCatalog(ctx, external, u.now()); err != nil {
			return u.fail(ctx, run, fmt.Errorf("store catalog: %w", err))
		}
	}

	records := u.matcher.Match(result.Products, external)
	if err := u.deps.State.SetMatches(ctx, records); err != nil {
		return u.fail(ctx, run, fmt.Errorf("store matches: %w", err))
	}
	report := inventory.Reconcile(records, result.Products, external, u.matcher.Policy())

	run.Products = len(result.Products)
	run.Locations = len(result.Locations)
	run.Shelves = len(shelves)
	run.External = len(external)
	run.PerfectMatches = len(report.PerfectMatches)
	run.Mismatches = len(report.Mismatches)
	run.SheetOnly = len(report.SheetOnly)
	run.ExternalOnly = len(report.ExternalOnly)
	run.SerialFallback = result.Mapping.SerialFallback

	notifications := BuildNotifications(NotificationInput{
		Report:            report,
		Products:          result.Products,
		LowStockThreshold: u.opts.LowStockThreshold,
		Now:               u.now(),
	})
	if u.deps.Summarizer != nil && len(notifications) > 0 {
		summary, err := u.deps.Summarizer.Summarize(ctx, report)
		switch {
		case err != nil:
			log.Printf("[sync] AI xulosa olinmadi: %v", err)
		case summary != "":
			run.Summary = summary
			notifications = append(notifications, newNotification(entity.NotificationSyncSummary, "Sync Summary", summary, nil, u.now()))
		}
	}
	run.FinishedAt = u.now()

	u.saveRun(ctx, run)
	u.publish(ctx, notifications)

	log.Printf("[sync] %s: %d mahsulot, %d javon, %d katalog, %d mismatch (%s)",
		run.Source, run.Products, run.Shelves, run.External, run.Mismatches, run.Duration())
	return run, nil
}

// Snapshot joriy holat
func (u *syncUseCase) Snapshot(ctx context.Context) (entity.Snapshot, error) {
	return u.deps.State.Snapshot(ctx)
}

// Report oxirgi snapshot bo'yicha to'rtta ko'rinish
func (u *syncUseCase) Report(ctx context.Context) (entity.ReconciliationReport, error) {
	snap, err := u.deps.State.Snapshot(ctx)
	if err != nil {
		return entity.ReconciliationReport{}, err
	}
	return inventory.Reconcile(snap.Matches, snap.Products, snap.External, u.matcher.Policy()), nil
}

// RecentRuns oxirgi sinxronizatsiyalar
func (u *syncUseCase) RecentRuns(ctx context.Context, limit int) ([]entity.SyncRun, error) {
	if u.deps.Runs == nil {
		return []entity.SyncRun{}, nil
	}
	return u.deps.Runs.ListRecent(ctx, limit)
}

// NotificationGroups saqlangan bildirishnomalar kun bo'yicha
func (u *syncUseCase) NotificationGroups(ctx context.Context) ([]entity.NotificationGroup, error) {
	if u.deps.Notifications == nil {
		return []entity.NotificationGroup{}, nil
	}
	list, err := u.deps.Notifications.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	return GroupByDay(list, u.now()), nil
}

func (u *syncUseCase) fail(ctx context.Context, run entity.SyncRun, err error) (entity.SyncRun, error) {
	log.Printf("[sync] xato: %v", err)
	u.setError(ctx, repository.AreaInventory, err)

	run.Error = err.Error()
	run.FinishedAt = u.now()
	u.saveRun(ctx, run)
	u.publish(ctx, []entity.Notification{SyncFailedNotification(err, run.Source, run.FinishedAt)})
	return run, err
}

func (u *syncUseCase) setLoading(ctx context.Context, area repository.Area, loading bool) {
	if err := u.deps.State.SetLoading(ctx, area, loading); err != nil {
		log.Printf("[sync] %s loading holati saqlanmadi: %v", area, err)
	}
}

func (u *syncUseCase) setError(ctx context.Context, area repository.Area, cause error) {
	if err := u.deps.State.SetError(ctx, area, cause); err != nil {
		log.Printf("[sync] %s xato holati saqlanmadi: %v", area, err)
	}
}

func (u *syncUseCase) saveRun(ctx context.Context, run entity.SyncRun) {
	if u.deps.Runs == nil {
		return
	}
	if err := u.deps.Runs.Save(ctx, run); err != nil {
		log.Printf("[sync] run %s saqlanmadi: %v", run.ID, err)
	}
}

func (u *syncUseCase) publish(ctx context.Context, notifications []entity.Notification) {
	if len(notifications) == 0 {
		return
	}
	if u.deps.Notifications != nil {
		if err := u.deps.Notifications.SaveMany(ctx, notifications); err != nil {
			log.Printf("[sync] bildirishnomalar saqlanmadi: %v", err)
		}
	}
	if err := u.deps.Notifier.Notify(ctx, notifications); err != nil {
		log.Printf("[sync] bildirishnomalar yuborilmadi: %v", err)
	}
}
