package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/infrastructure/storage"
	"github.com/yourusername/shelfsync/internal/inventory"
)

type fakeSync struct {
	snap    entity.Snapshot
	report  entity.ReconciliationReport
	runs    []entity.SyncRun
	syncErr error
	synced  int
	limit   int
}

func (f *fakeSync) Sync(ctx context.Context) (entity.SyncRun, error) {
	f.synced++
	if f.syncErr != nil {
		return entity.SyncRun{ID: "run-failed", Error: f.syncErr.Error()}, f.syncErr
	}
	return entity.SyncRun{ID: "run-1", Products: len(f.snap.Products)}, nil
}

func (f *fakeSync) Snapshot(ctx context.Context) (entity.Snapshot, error) { return f.snap, nil }

func (f *fakeSync) Report(ctx context.Context) (entity.ReconciliationReport, error) {
	return f.report, nil
}

func (f *fakeSync) RecentRuns(ctx context.Context, limit int) ([]entity.SyncRun, error) {
	f.limit = limit
	return f.runs, nil
}

func (f *fakeSync) NotificationGroups(ctx context.Context) ([]entity.NotificationGroup, error) {
	return nil, nil
}

func intPtr(v int) *int { return &v }

func newTestRouter(t *testing.T) (*gin.Engine, *fakeSync, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	locations := []entity.Location{
		{SKU: "L-1", Branch: "Kigali", Shelf: "3", Row: "1", Column: "A"},
		{SKU: "L-2", Branch: "Kigali", Shelf: "3", Row: "2", Column: "B"},
		{SKU: "L-1", Branch: "Huye", Shelf: "1", Box: "B7"},
	}
	svc := &fakeSync{
		snap: entity.Snapshot{
			Products: []entity.Product{
				{SKU: "L-1", ProductName: "Desk Lamp", Quantity: "4"},
				{SKU: "L-2", ProductName: "Floor Lamp", Quantity: "1"},
				{SKU: "F-1", ProductName: "Fan", Quantity: "9"},
			},
			Locations: locations,
			Shelves:   inventory.BuildShelves(locations),
		},
		report: entity.ReconciliationReport{
			Mismatches: []entity.MatchRecord{
				{SKU: "L-1", SheetProduct: entity.Product{ProductName: "Desk Lamp"}, SheetQuantity: 4, ExternalQuantity: intPtr(6), Matched: true},
				{SKU: "F-1", SheetProduct: entity.Product{ProductName: "Fan"}, SheetQuantity: 9, ExternalQuantity: intPtr(2), Matched: true},
			},
		},
		runs: []entity.SyncRun{{ID: "run-1"}},
	}

	notifications := storage.NewMemoryNotificationRepository(constants.MaxNotifications)
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	err := notifications.SaveMany(context.Background(), []entity.Notification{
		{ID: "n1", Type: entity.NotificationLowStock, Title: "Low Stock Alert", Timestamp: now.Add(-time.Hour)},
		{ID: "n2", Type: entity.NotificationQtyMismatch, Title: "Quantity Mismatch", Timestamp: now.Add(-30 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("SaveMany() error = %v", err)
	}

	h := NewHandler(svc, notifications)
	h.now = func() time.Time { return now }
	return h.Router(nil), svc, h
}

func doRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) error = %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/health")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestStatus(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/v1/status")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status = %d", w.Code)
	}
	var got map[string]any
	decode(t, w, &got)
	if got["products"] != float64(3) || got["shelves"] != float64(2) || got["unread_notifications"] != float64(2) {
		t.Fatalf("status = %v", got)
	}
}

func TestProductsAndLocations(t *testing.T) {
	r, _, _ := newTestRouter(t)

	var products []entity.Product
	decode(t, doRequest(r, http.MethodGet, "/api/v1/products?q=lamp"), &products)
	if len(products) != 2 {
		t.Fatalf("products = %+v, want 2 lamps", products)
	}

	var locations []entity.ProductLocation
	decode(t, doRequest(r, http.MethodGet, "/api/v1/products/L-1/locations"), &locations)
	if len(locations) != 2 {
		t.Fatalf("locations = %+v, want 2", locations)
	}

	w := doRequest(r, http.MethodGet, "/api/v1/products/NOPE/locations")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("missing locations = %s, want []", w.Body.String())
	}
}

func TestShelves(t *testing.T) {
	r, _, _ := newTestRouter(t)

	var hits []shelfResponse
	decode(t, doRequest(r, http.MethodGet, "/api/v1/shelves?q=floor"), &hits)
	if len(hits) != 1 || hits[0].ID != "Kigali-3" || hits[0].Product == nil || hits[0].Product.SKU != "L-2" {
		t.Fatalf("shelf hits = %+v", hits)
	}
	if hits[0].Stats.TotalBoxes != 2 {
		t.Fatalf("stats = %+v", hits[0].Stats)
	}

	w := doRequest(r, http.MethodGet, "/api/v1/shelves/Kigali-3")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /shelves/Kigali-3 = %d", w.Code)
	}
	var detail struct {
		Shelf entity.Shelf `json:"shelf"`
		Grid  [][]string   `json:"grid"`
	}
	decode(t, w, &detail)
	if len(detail.Grid) != 2 || len(detail.Grid[0]) != 2 || detail.Grid[0][0] == "" || detail.Grid[1][0] != "" {
		t.Fatalf("grid = %v", detail.Grid)
	}

	if w := doRequest(r, http.MethodGet, "/api/v1/shelves/Nope-1"); w.Code != http.StatusNotFound {
		t.Fatalf("GET /shelves/Nope-1 = %d, want 404", w.Code)
	}
}

func TestReportFilter(t *testing.T) {
	r, _, _ := newTestRouter(t)
	var report entity.ReconciliationReport
	decode(t, doRequest(r, http.MethodGet, "/api/v1/report?q=fan"), &report)
	if len(report.Mismatches) != 1 || report.Mismatches[0].SKU != "F-1" {
		t.Fatalf("mismatches = %+v", report.Mismatches)
	}
}

func TestExportReport(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/v1/report.xlsx")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /report.xlsx = %d %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "shelfsync-report-20240502-1200.xlsx") {
		t.Fatalf("Content-Disposition = %q", got)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) == 0 {
		t.Fatalf("workbook has no sheets")
	}
}

func TestSyncAndRuns(t *testing.T) {
	r, svc, _ := newTestRouter(t)

	if w := doRequest(r, http.MethodPost, "/api/v1/sync"); w.Code != http.StatusOK || svc.synced != 1 {
		t.Fatalf("POST /sync = %d, synced %d", w.Code, svc.synced)
	}

	svc.syncErr = errors.New("sheet unreachable")
	w := doRequest(r, http.MethodPost, "/api/v1/sync")
	if w.Code != http.StatusBadGateway || !strings.Contains(w.Body.String(), "sheet unreachable") {
		t.Fatalf("POST /sync failure = %d %s", w.Code, w.Body.String())
	}

	doRequest(r, http.MethodGet, "/api/v1/runs")
	if svc.limit != constants.RecentRunsLimit {
		t.Fatalf("default limit = %d, want %d", svc.limit, constants.RecentRunsLimit)
	}
	doRequest(r, http.MethodGet, "/api/v1/runs?limit=3")
	if svc.limit != 3 {
		t.Fatalf("limit = %d, want 3", svc.limit)
	}
	doRequest(r, http.MethodGet, "/api/v1/runs?limit=-1")
	if svc.limit != constants.RecentRunsLimit {
		t.Fatalf("negative limit = %d, want default", svc.limit)
	}
}

func TestNotifications(t *testing.T) {
	r, _, _ := newTestRouter(t)

	var groups []entity.NotificationGroup
	decode(t, doRequest(r, http.MethodGet, "/api/v1/notifications"), &groups)
	if len(groups) != 2 || groups[0].Label != "Today" || groups[1].Label != "Yesterday" {
		t.Fatalf("groups = %+v", groups)
	}

	var unread struct {
		Unread int `json:"unread"`
	}
	decode(t, doRequest(r, http.MethodPost, "/api/v1/notifications/n1/read"), &unread)
	if unread.Unread != 1 {
		t.Fatalf("unread after mark read = %d, want 1", unread.Unread)
	}
	if w := doRequest(r, http.MethodPost, "/api/v1/notifications/missing/read"); w.Code != http.StatusNotFound {
		t.Fatalf("mark missing = %d, want 404", w.Code)
	}

	decode(t, doRequest(r, http.MethodPost, "/api/v1/notifications/read-all"), &unread)
	if unread.Unread != 0 {
		t.Fatalf("unread after read-all = %d, want 0", unread.Unread)
	}

	if w := doRequest(r, http.MethodDelete, "/api/v1/notifications/n2"); w.Code != http.StatusOK {
		t.Fatalf("DELETE n2 = %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/api/v1/notifications"); w.Code != http.StatusOK {
		t.Fatalf("DELETE all = %d", w.Code)
	}
	decode(t, doRequest(r, http.MethodGet, "/api/v1/notifications"), &groups)
	if len(groups) != 0 {
		t.Fatalf("groups after clear = %+v", groups)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&fakeSync{}, storage.NewMemoryNotificationRepository(constants.MaxNotifications))
	r := h.Router([]string{"https://dash.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Fatalf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin = %d, want 403", w.Code)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve() did not stop after cancel")
	}
}
