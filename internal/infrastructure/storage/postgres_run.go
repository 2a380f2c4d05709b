package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/yourusername/shelfsync/internal/domain/entity"
)

const (
	pqInvalidCatalogName = "3D000"
	pqDuplicateDatabase  = "42P04"
)

const syncRunsSchema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id              TEXT PRIMARY KEY,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL,
	source          TEXT NOT NULL DEFAULT '',
	products        INTEGER NOT NULL DEFAULT 0,
	locations       INTEGER NOT NULL DEFAULT 0,
	shelves         INTEGER NOT NULL DEFAULT 0,
	external        INTEGER NOT NULL DEFAULT 0,
	perfect_matches INTEGER NOT NULL DEFAULT 0,
	mismatches      INTEGER NOT NULL DEFAULT 0,
	sheet_only      INTEGER NOT NULL DEFAULT 0,
	external_only   INTEGER NOT NULL DEFAULT 0,
	serial_fallback BOOLEAN NOT NULL DEFAULT FALSE,
	summary         TEXT NOT NULL DEFAULT '',
	error           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS sync_runs_started_at_idx ON sync_runs (started_at DESC);
`

// PostgresRunRepository sinxronizatsiya tarixini Postgres da saqlaydi
type PostgresRunRepository struct {
	DB *sqlx.DB
}

// NewPostgresRunRepository tayyor ulanish ustida repository
func NewPostgresRunRepository(db *sqlx.DB) *PostgresRunRepository {
	return &PostgresRunRepository{DB: db}
}

// OpenPostgresRunRepository ulanadi (qayta urinish bilan), jadvalni yaratadi
func OpenPostgresRunRepository(ctx context.Context, dsn string, attempts int, delay time.Duration) (*PostgresRunRepository, error) {
	db, err := openPostgresWithRetry(ctx, dsn, attempts, delay)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, syncRunsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sync_runs schema: %w", err)
	}
	return NewPostgresRunRepository(db), nil
}

// Save yozuvni qo'shadi yoki yangilaydi
func (r *PostgresRunRepository) Save(ctx context.Context, run entity.SyncRun) error {
	query := `
        INSERT INTO sync_runs (id, started_at, finished_at, source, products, locations, shelves, external,
            perfect_matches, mismatches, sheet_only, external_only, serial_fallback, summary, error)
        VALUES (:id, :started_at, :finished_at, :source, :products, :locations, :shelves, :external,
            :perfect_matches, :mismatches, :sheet_only, :external_only, :serial_fallback, :summary, :error)
        ON CONFLICT (id) DO UPDATE SET
            finished_at = EXCLUDED.finished_at,
            products = EXCLUDED.products,
            locations = EXCLUDED.locations,
            shelves = EXCLUDED.shelves,
            external = EXCLUDED.external,
            perfect_matches = EXCLUDED.perfect_matches,
            mismatches = EXCLUDED.mismatches,
            sheet_only = EXCLUDED.sheet_only,
            external_only = EXCLUDED.external_only,
            serial_fallback = EXCLUDED.serial_fallback,
            summary = EXCLUDED.summary,
            error = EXCLUDED.error
    `
	if _, err := r.DB.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("save sync run %s: %w", run.ID, err)
	}
	return nil
}

// ListRecent oxirgi yozuvlar, eng yangisi birinchi
func (r *PostgresRunRepository) ListRecent(ctx context.Context, limit int) ([]entity.SyncRun, error) {
	if limit <= 0 {
		limit = memoryRunHistory
	}
	runs := []entity.SyncRun{}
	query := `SELECT * FROM sync_runs ORDER BY started_at DESC LIMIT $1`
	if err := r.DB.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}

// Close ulanishni yopadi
func (r *PostgresRunRepository) Close() error {
	return r.DB.Close()
}

func openPostgresWithRetry(ctx context.Context, dsn string, attempts int, delay time.Duration) (*sqlx.DB, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	created := false
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		if !created && isDatabaseMissing(err) {
			if createErr := createDatabase(ctx, dsn); createErr == nil {
				created = true
				log.Printf("[storage] ma'lumotlar bazasi yaratildi")
				continue
			} else {
				lastErr = createErr
			}
		}
		log.Printf("[storage] postgres ulanmadi (%d/%d): %v", attempt, attempts, err)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("postgres connection failed: %w", lastErr)
}

func createDatabase(ctx context.Context, dsn string) error {
	adminDSN, dbName, ok := maintenanceDSN(dsn)
	if !ok {
		return fmt.Errorf("database name not found in dsn")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", adminDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName)); err != nil && !isDuplicateDatabase(err) {
		return err
	}
	return nil
}

// maintenanceDSN URL ko'rinishidagi DSN dagi bazani "postgres" bilan almashtiradi
func maintenanceDSN(dsn string) (string, string, bool) {
	u, err := url.Parse(strings.TrimSpace(dsn))
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return "", "", false
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", false
	}
	u.Path = "/postgres"
	return u.String(), dbName, true
}

func isDatabaseMissing(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidCatalogName
}

func isDuplicateDatabase(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqDuplicateDatabase
}
