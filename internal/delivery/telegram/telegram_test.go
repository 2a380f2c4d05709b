package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
)

type fakeTelegram struct {
	mu   sync.Mutex
	sent []url.Values
	fail bool
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Shelf","username":"shelf_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail {
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		f.sent = append(f.sent, r.PostForm)
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":1,"type":"supergroup"}}}`, len(f.sent))
	default:
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func (f *fakeTelegram) messages() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.sent...)
}

func newTestBot(t *testing.T) (*tgbotapi.BotAPI, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("123:abc", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient() error = %v", err)
	}
	return bot, fake
}

type fakeSync struct {
	snap    entity.Snapshot
	report  entity.ReconciliationReport
	runs    []entity.SyncRun
	syncErr error
	synced  int
}

func (f *fakeSync) Sync(ctx context.Context) (entity.SyncRun, error) {
	f.synced++
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return entity.SyncRun{StartedAt: start, FinishedAt: start.Add(1200 * time.Millisecond), Products: 3, Shelves: 2, Mismatches: 1}, f.syncErr
}

func (f *fakeSync) Snapshot(ctx context.Context) (entity.Snapshot, error) { return f.snap, nil }

func (f *fakeSync) Report(ctx context.Context) (entity.ReconciliationReport, error) {
	return f.report, nil
}

func (f *fakeSync) RecentRuns(ctx context.Context, limit int) ([]entity.SyncRun, error) {
	return f.runs, nil
}

func (f *fakeSync) NotificationGroups(ctx context.Context) ([]entity.NotificationGroup, error) {
	return nil, nil
}

func intPtr(v int) *int { return &v }

func sampleSnapshot() entity.Snapshot {
	locations := []entity.Location{
		{SKU: "L-1", Branch: "Kigali", Shelf: "3", Row: "1", Column: "A"},
		{SKU: "L-2", Branch: "Kigali", Shelf: "3", Row: "2", Column: "B"},
		{SKU: "L-1", Branch: "Huye", Shelf: "1", Box: "B7"},
	}
	return entity.Snapshot{
		Products: []entity.Product{
			{SKU: "L-1", ProductName: "Desk Lamp", Category: "Lighting", Quantity: "4"},
			{SKU: "L-2", ProductName: "Floor Lamp", Category: "Lighting", Quantity: "1"},
			{SKU: "F-1", ProductName: "Fan", Quantity: "9"},
		},
		Locations: locations,
		Shelves:   inventory.BuildShelves(locations),
		Inventory: entity.AreaStatus{LastSync: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		Catalog:   entity.AreaStatus{Error: "401 unauthorized"},
	}
}

func TestSplitIntoChunks(t *testing.T) {
	if got := splitIntoChunks("short", 10); len(got) != 1 || got[0] != "short" {
		t.Fatalf("splitIntoChunks(short) = %q", got)
	}
	got := splitIntoChunks("aaaa\nbbbb\ncccc", 10)
	if len(got) != 2 || got[0] != "aaaa\nbbbb" || got[1] != "cccc" {
		t.Fatalf("splitIntoChunks(lines) = %q", got)
	}
	got = splitIntoChunks(strings.Repeat("ж", 25), 10)
	if len(got) != 3 || len([]rune(got[0])) != 10 || len([]rune(got[2])) != 5 {
		t.Fatalf("splitIntoChunks(long line) = %q", got)
	}
}

func TestFormatDigest(t *testing.T) {
	if formatDigest(nil) != "" {
		t.Fatalf("formatDigest(nil) should be empty")
	}
	got := formatDigest([]entity.Notification{
		{Type: entity.NotificationQtyMismatch, Title: "Quantity Mismatch", Body: "Alpha - Sheet 5, Store 3"},
		{Type: entity.NotificationLowStock, Title: "Low Stock Alert", Body: "Lamp - Only 2 left"},
		{Type: entity.NotificationQtyMismatch, Title: "Quantity Mismatch", Body: "Beta - Sheet 1, Store 0"},
		{Type: entity.NotificationSyncSummary, Title: "Sync Summary", Body: "Two mismatches."},
	})
	want := "Inventory alerts (4)\n\n" +
		"Quantity Mismatch (2)\n- Alpha - Sheet 5, Store 3\n- Beta - Sheet 1, Store 0\n\n" +
		"Low Stock Alert (1)\n- Lamp - Only 2 left\n\n" +
		"Sync Summary\nTwo mismatches."
	if got != want {
		t.Fatalf("formatDigest() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatShelf(t *testing.T) {
	snap := sampleSnapshot()
	shelf, err := inventory.FindShelf(snap.Shelves, "Kigali-3")
	if err != nil {
		t.Fatalf("FindShelf() error = %v", err)
	}
	got := formatShelf(shelf)
	for _, want := range []string{
		"Kigali - Shelf 3 (Kigali-3)",
		"Grid 2x2, 2/2 boxes filled, 2 SKUs, 50.0% ok",
		"    A B",
		"  1 o .",
		"  2 . o",
		"1A: L-1",
		"2B: L-2",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("formatShelf() missing %q:\n%s", want, got)
		}
	}
}

func TestReply(t *testing.T) {
	svc := &fakeSync{
		snap: sampleSnapshot(),
		report: entity.ReconciliationReport{
			Mismatches: []entity.MatchRecord{{SKU: "L-1", SheetProduct: entity.Product{ProductName: "Desk Lamp"}, SheetQuantity: 4, ExternalQuantity: intPtr(6)}},
		},
		runs: []entity.SyncRun{{PerfectMatches: 2, Mismatches: 1}},
	}
	h := NewBotHandler(nil, svc, 0, 0)
	ctx := context.Background()

	tests := []struct {
		command, args string
		want          []string
	}{
		{"help", "", []string{"/search <text>"}},
		{"status", "", []string{"Products: 3", "Inventory: synced 2024-05-01 08:00", "Catalog: error: 401 unauthorized", "2 perfect, 1 mismatched"}},
		{"search", " lamp ", []string{"Found 2 products", "L-1 - Desk Lamp (qty 4)", "Kigali - Shelf 3, box 1A", "Huye - Shelf 1, box B7"}},
		{"search", "", []string{"Usage: /search"}},
		{"search", "zzz", []string{`Nothing found for "zzz"`}},
		{"shelf", "Huye-1", []string{"Huye - Shelf 1 (Huye-1)", "B7: L-1"}},
		{"shelf", "Nope-9", []string{`Shelf "Nope-9" not found`}},
		{"shelves", "", []string{"Huye-1 - 1 boxes", "Kigali-3 - 2 boxes, 50%"}},
		{"shelves", "fan", []string{"No shelves"}},
		{"mismatches", "", []string{"Quantity mismatches: 1", "L-1 Desk Lamp: sheet 4, store 6"}},
		{"sync", "", []string{"Sync done in 1.2s: 3 products, 2 shelves, 1 mismatches"}},
		{"dance", "", []string{"Unknown command."}},
	}
	for _, tt := range tests {
		got := h.reply(ctx, tt.command, tt.args)
		for _, want := range tt.want {
			if !strings.Contains(got, want) {
				t.Fatalf("reply(%q, %q) missing %q:\n%s", tt.command, tt.args, want, got)
			}
		}
	}

	svc.syncErr = errors.New("sheet offline")
	if got := h.reply(ctx, "sync", ""); got != "Sync failed: sheet offline" {
		t.Fatalf("reply(sync) = %q", got)
	}
}

func TestNotifier_SendsToTopic(t *testing.T) {
	bot, fake := newTestBot(t)
	n := NewNotifier(bot, -1001234567890, 7)

	err := n.Notify(context.Background(), []entity.Notification{
		{Type: entity.NotificationLowStock, Title: "Low Stock Alert", Body: "Lamp - Only 2 left"},
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	sent := fake.messages()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if sent[0].Get("chat_id") != "-1001234567890" || sent[0].Get("message_thread_id") != "7" {
		t.Fatalf("target = (%s, %s)", sent[0].Get("chat_id"), sent[0].Get("message_thread_id"))
	}
	if !strings.Contains(sent[0].Get("text"), "Lamp - Only 2 left") {
		t.Fatalf("text = %q", sent[0].Get("text"))
	}

	if err := n.Notify(context.Background(), nil); err != nil || len(fake.messages()) != 1 {
		t.Fatalf("Notify(nil) should not send")
	}
}

func TestNotifier_APIError(t *testing.T) {
	bot, fake := newTestBot(t)
	fake.fail = true
	err := NewNotifier(bot, 1, 0).Notify(context.Background(), []entity.Notification{{Title: "x", Body: "y"}})
	if err == nil {
		t.Fatalf("Notify() error = nil, want API error")
	}
}

func TestHandleMessage(t *testing.T) {
	bot, fake := newTestBot(t)
	h := NewBotHandler(bot, &fakeSync{snap: sampleSnapshot()}, -100, 5)

	command := func(chatID int64, text string) *tgbotapi.Message {
		end := strings.IndexByte(text, ' ')
		if end < 0 {
			end = len(text)
		}
		return &tgbotapi.Message{
			Text:     text,
			Chat:     &tgbotapi.Chat{ID: chatID},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}},
		}
	}

	h.handleMessage(context.Background(), command(999, "/status"))
	if len(fake.messages()) != 0 {
		t.Fatalf("message from foreign chat should be ignored")
	}

	h.handleMessage(context.Background(), command(-100, "/search fan"))
	sent := fake.messages()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if sent[0].Get("message_thread_id") != "5" || !strings.Contains(sent[0].Get("text"), "F-1 - Fan (qty 9)") {
		t.Fatalf("reply = %v", sent[0])
	}
}
