package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
)

type output struct {
	format string
	w      io.Writer
}

func (o output) writer() io.Writer {
	if o.w == nil {
		return os.Stdout
	}
	return o.w
}

func (o output) json(v interface{}) error {
	enc := json.NewEncoder(o.writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type productView struct {
	entity.Product
	Locations []entity.ProductLocation `json:"locations"`
}

func (o output) printProducts(snap entity.Snapshot, products []entity.Product) error {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Product: p, Locations: inventory.FindProductLocations(snap.Locations, p.SKU)})
	}
	if o.format == "json" {
		return o.json(views)
	}

	tw := tabwriter.NewWriter(o.writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tNAME\tQTY\tLOCATIONS")
	for _, v := range views {
		locs := make([]string, 0, len(v.Locations))
		for _, l := range v.Locations {
			locs = append(locs, l.ShelfID+"/"+l.Position)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", v.SKU, v.ProductName, inventory.ParseQuantity(v.Quantity), strings.Join(locs, ", "))
	}
	return tw.Flush()
}

type shelfView struct {
	entity.Shelf
	Stats entity.ShelfStats `json:"stats"`
}

func (o output) printShelf(shelf entity.Shelf) error {
	stats := inventory.Stats(shelf)
	if o.format == "json" {
		return o.json(shelfView{Shelf: shelf, Stats: stats})
	}

	w := o.writer()
	fmt.Fprintf(w, "%s (%s) grid %dx%d, %d/%d boxes filled, %.1f%% %s\n",
		shelf.Name, shelf.ID, shelf.MaxRow, shelf.MaxColumn, stats.FilledBoxes, stats.TotalBoxes, stats.Utilization, stats.Level)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOX\tFILL\tSKUS")
	for _, box := range shelf.Boxes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", box.Position, inventory.Fill(box), strings.Join(box.Products, ", "))
	}
	return tw.Flush()
}

func (o output) printRuns(runs []entity.SyncRun) error {
	if o.format == "json" {
		return o.json(runs)
	}
	tw := tabwriter.NewWriter(o.writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tDURATION\tPRODUCTS\tSHELVES\tCATALOG\tPERFECT\tMISMATCH\tSHEET ONLY\tSTORE ONLY\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Duration().Round(time.Millisecond),
			r.Products, r.Shelves, r.External, r.PerfectMatches, r.Mismatches, r.SheetOnly, r.ExternalOnly, r.Error)
	}
	return tw.Flush()
}
