package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
	"github.com/yourusername/shelfsync/internal/infrastructure/excel"
	"github.com/yourusername/shelfsync/internal/inventory"
	"github.com/yourusername/shelfsync/internal/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler inventar holatini JSON ko'rinishida beradi
type Handler struct {
	sync          usecase.SyncUseCase
	notifications repository.NotificationRepository
	now           func() time.Time
}

// NewHandler yangi HTTP handler
func NewHandler(sync usecase.SyncUseCase, notifications repository.NotificationRepository) *Handler {
	return &Handler{sync: sync, notifications: notifications, now: time.Now}
}

// Router gin routerini yaratadi. allowedOrigins bo'sh bo'lsa barcha originlarga ruxsat.
func (h *Handler) Router(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	corsCfg := cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", h.status)
		v1.POST("/sync", h.runSync)
		v1.GET("/runs", h.runs)
		v1.GET("/products", h.products)
		v1.GET("/products/:sku/locations", h.productLocations)
		v1.GET("/shelves", h.shelves)
		v1.GET("/shelves/:id", h.shelf)
		v1.GET("/report", h.report)
		v1.GET("/report.xlsx", h.exportReport)
		v1.GET("/notifications", h.listNotifications)
		v1.POST("/notifications/read-all", h.markAllRead)
		v1.POST("/notifications/:id/read", h.markRead)
		v1.DELETE("/notifications/:id", h.deleteNotification)
		v1.DELETE("/notifications", h.clearNotifications)
	}
	return r
}

func (h *Handler) snapshot(c *gin.Context) (entity.Snapshot, bool) {
	snap, err := h.sync.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return entity.Snapshot{}, false
	}
	return snap, true
}

func (h *Handler) status(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	unread := 0
	if h.notifications != nil {
		unread, _ = h.notifications.UnreadCount(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{
		"products":             len(snap.Products),
		"locations":            len(snap.Locations),
		"shelves":              len(snap.Shelves),
		"external":             len(snap.External),
		"inventory":            snap.Inventory,
		"catalog":              snap.Catalog,
		"unread_notifications": unread,
	})
}

func (h *Handler) runSync(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.SyncTimeout)
	defer cancel()
	run, err := h.sync.Sync(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "run": run})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) runs(c *gin.Context) {
	limit := queryInt(c, "limit", constants.RecentRunsLimit)
	runs, err := h.sync.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *Handler) products(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, inventory.FilterProducts(snap.Products, c.Query("q")))
}

func (h *Handler) productLocations(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	locations := inventory.FindProductLocations(snap.Locations, c.Param("sku"))
	if locations == nil {
		locations = []entity.ProductLocation{}
	}
	c.JSON(http.StatusOK, locations)
}

type shelfResponse struct {
	entity.Shelf
	Stats   entity.ShelfStats `json:"stats"`
	Product *entity.Product   `json:"matched_product,omitempty"`
}

func (h *Handler) shelves(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	hits := inventory.SearchShelves(snap.Shelves, snap.Products, c.Query("q"))
	out := make([]shelfResponse, 0, len(hits))
	for _, hit := range hits {
		out = append(out, shelfResponse{Shelf: hit.Shelf, Stats: inventory.Stats(hit.Shelf), Product: hit.Product})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) shelf(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	shelf, err := inventory.FindShelf(snap.Shelves, c.Param("id"))
	if errors.Is(err, entity.ErrShelfNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	grid := inventory.Grid(shelf)
	cells := make([][]string, len(grid))
	for r, row := range grid {
		cells[r] = make([]string, len(row))
		for col, box := range row {
			if box != nil {
				cells[r][col] = string(inventory.Fill(*box))
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"shelf": shelf,
		"stats": inventory.Stats(shelf),
		"grid":  cells,
	})
}

func (h *Handler) report(c *gin.Context) {
	report, err := h.sync.Report(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if q := c.Query("q"); q != "" {
		report.PerfectMatches = inventory.FilterMatches(report.PerfectMatches, q)
		report.Mismatches = inventory.FilterMatches(report.Mismatches, q)
		report.SheetOnly = inventory.FilterMatches(report.SheetOnly, q)
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) exportReport(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	report, err := h.sync.Report(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	now := h.now()
	data, err := excel.BuildReport(snap, report, now)
	if err != nil {
		log.Printf("[api] hisobot yaratilmadi: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	filename := fmt.Sprintf("shelfsync-report-%s.xlsx", now.Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) listNotifications(c *gin.Context) {
	if h.notifications == nil {
		c.JSON(http.StatusOK, []entity.NotificationGroup{})
		return
	}
	list, err := h.notifications.List(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, usecase.GroupByDay(list, h.now()))
}

func (h *Handler) markRead(c *gin.Context) {
	h.notificationOp(c, func(ctx context.Context) error {
		return h.notifications.MarkRead(ctx, c.Param("id"))
	})
}

func (h *Handler) markAllRead(c *gin.Context) {
	h.notificationOp(c, h.notifications.MarkAllRead)
}

func (h *Handler) deleteNotification(c *gin.Context) {
	h.notificationOp(c, func(ctx context.Context) error {
		return h.notifications.Delete(ctx, c.Param("id"))
	})
}

func (h *Handler) clearNotifications(c *gin.Context) {
	h.notificationOp(c, h.notifications.Clear)
}

func (h *Handler) notificationOp(c *gin.Context, op func(context.Context) error) {
	ctx := c.Request.Context()
	if err := op(ctx); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotificationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	unread, _ := h.notifications.UnreadCount(ctx)
	c.JSON(http.StatusOK, gin.H{"unread": unread})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[api] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
