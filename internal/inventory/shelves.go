package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
)

const unknownPosition = "unknown"

// ShelfKey javonning tarkibiy identifikatori
func ShelfKey(branch, shelf string) string {
	return branch + "-" + shelf
}

// ShelfName javonning ko'rsatiladigan nomi
func ShelfName(branch, shelf string) string {
	return fmt.Sprintf("%s - Shelf %s", branch, shelf)
}

// BoxPosition qator va ustun bo'lsa "{row}{column}", aks holda katak yorlig'i,
// u ham bo'lmasa "unknown".
func BoxPosition(row, column, box string) string {
	row = strings.TrimSpace(row)
	column = strings.ToUpper(strings.TrimSpace(column))
	if row != "" && column != "" {
		return row + column
	}
	if box = strings.TrimSpace(box); box != "" {
		return box
	}
	return unknownPosition
}

type shelfBuilder struct {
	shelf    entity.Shelf
	boxes    map[string]*entity.Box
	labels   map[string]string
	boxOrder []string
}

// BuildShelves lokatsiyalarni javon va kataklarga yig'adi. Natija lokatsiyalar
// tartibiga bog'liq emas: bir xil kalitga tushgan javon va kataklar uchun
// metama'lumot qat'iy qoida bo'yicha tanlanadi.
func BuildShelves(locations []entity.Location) []entity.Shelf {
	builders := make(map[string]*shelfBuilder)

	for _, loc := range locations {
		branch := strings.TrimSpace(loc.Branch)
		shelfNumber := strings.TrimSpace(loc.Shelf)
		sku := strings.TrimSpace(loc.SKU)
		if branch == "" || shelfNumber == "" || sku == "" {
			continue
		}
		row := strings.TrimSpace(loc.Row)
		column := strings.ToUpper(strings.TrimSpace(loc.Column))
		label := strings.TrimSpace(loc.Box)

		key := ShelfKey(branch, shelfNumber)
		sb, ok := builders[key]
		if !ok {
			sb = &shelfBuilder{
				shelf: entity.Shelf{
					ID:          key,
					Name:        ShelfName(branch, shelfNumber),
					Branch:      branch,
					ShelfNumber: shelfNumber,
				},
				boxes:  make(map[string]*entity.Box),
				labels: make(map[string]string),
			}
			builders[key] = sb
		} else if branch < sb.shelf.Branch || (branch == sb.shelf.Branch && shelfNumber < sb.shelf.ShelfNumber) {
			// "A-1"/"2" va "A"/"1-2" bir kalitga tushadi; eng kichik juftlik olinadi
			sb.shelf.Branch = branch
			sb.shelf.ShelfNumber = shelfNumber
			sb.shelf.Name = ShelfName(branch, shelfNumber)
		}

		var rowNum *int
		if row != "" {
			if n, ok := parseLeadingInt(row); ok {
				rowNum = &n
				if n > sb.shelf.MaxRow {
					sb.shelf.MaxRow = n
				}
			}
		}
		if col := ColumnIndex(column); col > sb.shelf.MaxColumn {
			sb.shelf.MaxColumn = col
		}

		position := BoxPosition(row, column, label)
		boxID := key + "-" + position
		box, ok := sb.boxes[boxID]
		if !ok {
			box = &entity.Box{
				ID:       boxID,
				Row:      rowNum,
				Column:   column,
				Position: position,
				Products: []string{},
			}
			sb.boxes[boxID] = box
			sb.boxOrder = append(sb.boxOrder, boxID)
		} else if preferCell(rowNum, column, box) {
			box.Row = rowNum
			box.Column = column
		}
		if current, seen := sb.labels[boxID]; label != "" && (!seen || label < current) {
			sb.labels[boxID] = label
		}
		if !containsString(box.Products, sku) {
			box.Products = append(box.Products, sku)
		}
	}

	shelves := make([]entity.Shelf, 0, len(builders))
	for _, sb := range builders {
		shelf := sb.shelf
		shelf.Boxes = make([]entity.Box, 0, len(sb.boxOrder))
		for _, id := range sb.boxOrder {
			box := *sb.boxes[id]
			box.BoxNumber = box.Position
			if label, ok := sb.labels[id]; ok {
				box.BoxNumber = label
			}
			shelf.Boxes = append(shelf.Boxes, box)
		}
		sortBoxes(shelf.Boxes)
		shelves = append(shelves, shelf)
	}
	sortShelves(shelves)
	return shelves
}

// preferCell (row, column) katakning joriy koordinatasidan ustunmi: grid katak
// (raqamli qator va ustun harfi) birinchi, keyin kichik qator, keyin kichik ustun.
func preferCell(row *int, column string, box *entity.Box) bool {
	if grid, boxGrid := row != nil && column != "", box.HasGridCell(); grid != boxGrid {
		return grid
	}
	if (row != nil) != (box.Row != nil) {
		return row != nil
	}
	if row != nil && *row != *box.Row {
		return *row < *box.Row
	}
	if (column != "") != (box.Column != "") {
		return column != ""
	}
	return column < box.Column
}

// Grid kataklar (raqamli qator va ustun harfi) (qator, ustun) bo'yicha birinchi,
// qolganlari pozitsiya bo'yicha keyin.
func sortBoxes(boxes []entity.Box) {
	sort.SliceStable(boxes, func(i, j int) bool {
		a, b := boxes[i], boxes[j]
		ag, bg := a.HasGridCell(), b.HasGridCell()
		if ag != bg {
			return ag
		}
		if ag {
			if *a.Row != *b.Row {
				return *a.Row < *b.Row
			}
			if a.Column != b.Column {
				return a.Column < b.Column
			}
		}
		return a.Position < b.Position
	})
}

func sortShelves(shelves []entity.Shelf) {
	sort.SliceStable(shelves, func(i, j int) bool {
		a, b := shelves[i], shelves[j]
		if a.Branch != b.Branch {
			return a.Branch < b.Branch
		}
		an, aok := parseLeadingInt(a.ShelfNumber)
		bn, bok := parseLeadingInt(b.ShelfNumber)
		if aok && bok && an != bn {
			return an < bn
		}
		if a.ShelfNumber != b.ShelfNumber {
			return a.ShelfNumber < b.ShelfNumber
		}
		return a.ID < b.ID
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Stats javon kartasi uchun statistika. Grid bo'lmasa 0%.
func Stats(shelf entity.Shelf) entity.ShelfStats {
	stats := entity.ShelfStats{
		TotalBoxes: len(shelf.Boxes),
		TotalSlots: shelf.MaxRow * shelf.MaxColumn,
	}
	for _, box := range shelf.Boxes {
		stats.TotalProducts += len(box.Products)
		if len(box.Products) > 0 {
			stats.FilledBoxes++
		}
	}
	if stats.TotalSlots > 0 {
		stats.Utilization = float64(stats.FilledBoxes) / float64(stats.TotalSlots) * 100
	}
	switch {
	case stats.Utilization >= constants.UtilizationCriticalPercent:
		stats.Level = entity.UtilizationCritical
	case stats.Utilization >= constants.UtilizationWarningPercent:
		stats.Level = entity.UtilizationWarning
	default:
		stats.Level = entity.UtilizationOK
	}
	return stats
}

// Grid javonni MaxRow x MaxColumn matritsa ko'rinishida beradi. Katak yo'q joylar nil.
func Grid(shelf entity.Shelf) [][]*entity.Box {
	grid := make([][]*entity.Box, shelf.MaxRow)
	for r := range grid {
		grid[r] = make([]*entity.Box, shelf.MaxColumn)
	}
	for i := range shelf.Boxes {
		box := &shelf.Boxes[i]
		if !box.HasGridCell() {
			continue
		}
		r := *box.Row - 1
		c := ColumnIndex(box.Column) - 1
		if r < 0 || r >= shelf.MaxRow || c < 0 || c >= shelf.MaxColumn {
			continue
		}
		if grid[r][c] == nil {
			grid[r][c] = box
		}
	}
	return grid
}

// Fill katakni undagi SKU soniga qarab tasniflaydi
func Fill(box entity.Box) entity.BoxFill {
	switch n := len(box.Products); {
	case n == 0:
		return entity.BoxEmpty
	case n <= constants.PartialBoxMaxProducts:
		return entity.BoxPartial
	default:
		return entity.BoxFilled
	}
}

// FindShelf javonni id bo'yicha topadi
func FindShelf(shelves []entity.Shelf, id string) (entity.Shelf, error) {
	for _, s := range shelves {
		if s.ID == id {
			return s, nil
		}
	}
	return entity.Shelf{}, fmt.Errorf("%w: %s", entity.ErrShelfNotFound, id)
}

// FindBox javon ichidan katakni id bo'yicha topadi
func FindBox(shelf entity.Shelf, id string) (entity.Box, error) {
	for _, b := range shelf.Boxes {
		if b.ID == id {
			return b, nil
		}
	}
	return entity.Box{}, fmt.Errorf("%w: %s", entity.ErrBoxNotFound, id)
}

// FindProductLocations sku joylashgan barcha joylar
func FindProductLocations(locations []entity.Location, sku string) []entity.ProductLocation {
	var out []entity.ProductLocation
	for _, l := range locations {
		if l.SKU != sku {
			continue
		}
		position := l.Box
		if l.Row != "" && l.Column != "" {
			position = l.Row + l.Column
		}
		out = append(out, entity.ProductLocation{
			Branch:    l.Branch,
			Shelf:     l.Shelf,
			Row:       l.Row,
			Column:    l.Column,
			Box:       l.Box,
			Position:  position,
			ShelfName: ShelfName(l.Branch, l.Shelf),
			ShelfID:   ShelfKey(l.Branch, l.Shelf),
		})
	}
	return out
}
