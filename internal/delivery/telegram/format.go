package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
)

const (
	maxListedProducts   = 10
	maxListedMismatches = 20
)

// formatDigest bildirishnomalarni tur bo'yicha guruhlab bitta matnga jamlaydi
func formatDigest(notifications []entity.Notification) string {
	if len(notifications) == 0 {
		return ""
	}
	var order []entity.NotificationType
	byType := make(map[entity.NotificationType][]entity.Notification)
	for _, n := range notifications {
		if _, ok := byType[n.Type]; !ok {
			order = append(order, n.Type)
		}
		byType[n.Type] = append(byType[n.Type], n)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Inventory alerts (%d)\n", len(notifications))
	for _, typ := range order {
		items := byType[typ]
		b.WriteString("\n")
		if typ == entity.NotificationSyncSummary {
			b.WriteString(items[0].Title + "\n" + items[0].Body + "\n")
			continue
		}
		fmt.Fprintf(&b, "%s (%d)\n", items[0].Title, len(items))
		for _, n := range items {
			b.WriteString("- " + n.Body + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStatus(snap entity.Snapshot, runs []entity.SyncRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Products: %d\nShelves: %d\nCatalog products: %d\n", len(snap.Products), len(snap.Shelves), len(snap.External))
	fmt.Fprintf(&b, "Inventory: %s\n", formatArea(snap.Inventory))
	fmt.Fprintf(&b, "Catalog: %s\n", formatArea(snap.Catalog))
	if len(runs) > 0 {
		last := runs[0]
		b.WriteString("\nLast sync: ")
		if last.Error != "" {
			fmt.Fprintf(&b, "failed (%s)", last.Error)
		} else {
			fmt.Fprintf(&b, "%d perfect, %d mismatched, %d sheet only, %d store only",
				last.PerfectMatches, last.Mismatches, last.SheetOnly, last.ExternalOnly)
		}
		fmt.Fprintf(&b, " in %s", last.Duration().Round(time.Millisecond))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatArea(st entity.AreaStatus) string {
	switch {
	case st.Loading:
		return "syncing"
	case st.Error != "":
		return "error: " + st.Error
	case st.LastSync.IsZero():
		return "never synced"
	default:
		return "synced " + st.LastSync.Format("2006-01-02 15:04")
	}
}

func formatSearch(snap entity.Snapshot, query string) string {
	products := inventory.FilterProducts(snap.Products, query)
	if len(products) == 0 {
		return fmt.Sprintf("Nothing found for %q", strings.TrimSpace(query))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d products\n", len(products))
	for i, p := range products {
		if i == maxListedProducts {
			fmt.Fprintf(&b, "\n...and %d more", len(products)-maxListedProducts)
			break
		}
		fmt.Fprintf(&b, "\n%s - %s (qty %d)\n", p.SKU, nonEmpty(p.ProductName, "unnamed"), inventory.ParseQuantity(p.Quantity))
		for _, loc := range inventory.FindProductLocations(snap.Locations, p.SKU) {
			fmt.Fprintf(&b, "  %s, box %s\n", loc.ShelfName, nonEmpty(loc.Position, "?"))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatShelf(shelf entity.Shelf) string {
	st := inventory.Stats(shelf)
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", shelf.Name, shelf.ID)
	fmt.Fprintf(&b, "Grid %dx%d, %d/%d boxes filled, %d SKUs, %.1f%% %s\n",
		shelf.MaxRow, shelf.MaxColumn, st.FilledBoxes, st.TotalBoxes, st.TotalProducts, st.Utilization, st.Level)

	if grid := inventory.Grid(shelf); len(grid) > 0 {
		b.WriteString("\n   ")
		for c := 0; c < shelf.MaxColumn; c++ {
			b.WriteString(" " + string(rune('A'+c%26)))
		}
		b.WriteString("\n")
		for r, row := range grid {
			fmt.Fprintf(&b, "%3d", r+1)
			for _, box := range row {
				b.WriteString(" " + fillMark(box))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	for _, box := range shelf.Boxes {
		fmt.Fprintf(&b, "%s: %s\n", box.Position, strings.Join(box.Products, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func fillMark(box *entity.Box) string {
	if box == nil {
		return "."
	}
	switch inventory.Fill(*box) {
	case entity.BoxFilled:
		return "#"
	case entity.BoxPartial:
		return "o"
	default:
		return "_"
	}
}

func formatMismatches(report entity.ReconciliationReport) string {
	if len(report.Mismatches) == 0 {
		return fmt.Sprintf("No quantity mismatches (%d perfect matches)", len(report.PerfectMatches))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Quantity mismatches: %d\n", len(report.Mismatches))
	for i, r := range report.Mismatches {
		if i == maxListedMismatches {
			fmt.Fprintf(&b, "...and %d more\n", len(report.Mismatches)-maxListedMismatches)
			break
		}
		ext := 0
		if r.ExternalQuantity != nil {
			ext = *r.ExternalQuantity
		}
		label := r.SKU
		if name := strings.TrimSpace(r.SheetProduct.ProductName); name != "" {
			label += " " + name
		}
		fmt.Fprintf(&b, "%s: sheet %d, store %d\n", label, r.SheetQuantity, ext)
	}
	return strings.TrimRight(b.String(), "\n")
}

func nonEmpty(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
