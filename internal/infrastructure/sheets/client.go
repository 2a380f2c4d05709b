package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/infrastructure/excel"
	"github.com/yourusername/shelfsync/internal/inventory"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultPublicDownloadURL = "https://drive.google.com/uc?export=download&id=%s"

// Client fetches a spreadsheet from Google Sheets, or an .xlsx file stored on Drive.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service

	source     string
	fileID     string
	sourceType SourceType

	httpClient        *http.Client
	publicDownloadURL string
}

// Info describes a reachable source.
type Info struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	SourceType SourceType `json:"source_type"`
	Tabs       []string   `json:"tabs"`
}

// NewClient wires ready-made services.
func NewClient(source string, sheetsSvc *sheets.Service, driveSvc *drive.Service) *Client {
	return &Client{
		sheets:            sheetsSvc,
		drive:             driveSvc,
		source:            source,
		fileID:            ExtractFileID(source),
		sourceType:        DetectSourceType(source),
		httpClient:        &http.Client{Timeout: 60 * time.Second},
		publicDownloadURL: defaultPublicDownloadURL,
	}
}

// NewClientFromOptions creates the Sheets and Drive services from shared options.
func NewClientFromOptions(ctx context.Context, source string, opts ...option.ClientOption) (*Client, error) {
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return NewClient(source, sheetsSvc, driveSvc), nil
}

func (c *Client) Describe() string {
	if c.sourceType == SourceDriveExcel {
		return "drive:" + c.fileID
	}
	return "gsheet:" + c.fileID
}

// Fetch downloads the product tab and, when present, the location tab.
func (c *Client) Fetch(ctx context.Context) (entity.SheetData, error) {
	if c.isExcel(ctx) {
		return c.fetchWorkbook(ctx)
	}
	return c.fetchSpreadsheet(ctx)
}

// TestConnection reports the title and tabs of the configured source.
func (c *Client) TestConnection(ctx context.Context) (Info, error) {
	if c.isExcel(ctx) {
		data, err := c.fetchWorkbook(ctx)
		if err != nil {
			return Info{}, err
		}
		tabs := []string{data.ProductTab}
		if data.HasLocationTab() {
			tabs = append(tabs, data.LocationTab)
		}
		return Info{ID: c.fileID, Title: data.Title, SourceType: SourceDriveExcel, Tabs: tabs}, nil
	}

	ss, err := c.sheets.Spreadsheets.Get(c.fileID).
		Fields("spreadsheetId", "properties.title", "sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return Info{}, fmt.Errorf("spreadsheet %s: %w", c.fileID, err)
	}
	info := Info{ID: ss.SpreadsheetId, SourceType: SourceGoogleSheet, Tabs: tabTitles(ss)}
	if ss.Properties != nil {
		info.Title = ss.Properties.Title
	}
	return info, nil
}

// The Drive mime type overrides the URL shape: a shared .xlsx often has a docs.google.com link.
func (c *Client) isExcel(ctx context.Context) bool {
	if c.sourceType == SourceDriveExcel {
		return true
	}
	if c.drive == nil {
		return false
	}
	f, err := c.drive.Files.Get(c.fileID).Fields("mimeType").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		log.Printf("[sheets] mime type tekshirilmadi (%s): %v", c.fileID, err)
		return false
	}
	return f.MimeType == xlsxMimeType
}

func (c *Client) fetchSpreadsheet(ctx context.Context) (entity.SheetData, error) {
	ss, err := c.sheets.Spreadsheets.Get(c.fileID).
		Fields("spreadsheetId", "properties.title", "sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return entity.SheetData{}, fmt.Errorf("spreadsheet %s metadata: %w", c.fileID, err)
	}

	productTab, locationTab := inventory.PickTabs(tabTitles(ss))
	if productTab == "" {
		productTab = "Sheet1"
	}

	data := entity.SheetData{ProductTab: productTab}
	if ss.Properties != nil {
		data.Title = ss.Properties.Title
	}

	data.ProductRows, err = c.values(ctx, productTab)
	if err != nil {
		return entity.SheetData{}, err
	}
	if locationTab != "" {
		data.LocationTab = locationTab
		data.LocationRows, err = c.values(ctx, locationTab)
		if err != nil {
			return entity.SheetData{}, err
		}
	}

	log.Printf("[sheets] %s: product tab %q (%d rows), location tab %q", c.fileID, productTab, len(data.ProductRows), locationTab)
	return data, nil
}

func (c *Client) values(ctx context.Context, tab string) ([][]string, error) {
	vr, err := c.sheets.Spreadsheets.Values.Get(c.fileID, quoteTab(tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("values %q: %w", tab, err)
	}
	rows := make([][]string, 0, len(vr.Values))
	for _, raw := range vr.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = cellString(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) fetchWorkbook(ctx context.Context) (entity.SheetData, error) {
	resp, err := c.drive.Files.Get(c.fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		log.Printf("[sheets] Drive API yuklab olmadi (%s): %v; ommaviy havola sinab ko'riladi", c.fileID, err)
		resp, err = c.publicDownload(ctx)
		if err != nil {
			return entity.SheetData{}, fmt.Errorf("download %s: %w", c.fileID, err)
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 50<<20))
	if err != nil {
		return entity.SheetData{}, fmt.Errorf("download %s: %w", c.fileID, err)
	}
	if len(body) == 0 {
		return entity.SheetData{}, fmt.Errorf("download %s: empty file", c.fileID)
	}
	return excel.Read(bytes.NewReader(body), c.fileID)
}

func (c *Client) publicDownload(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.publicDownloadURL, c.fileID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("status=%d", resp.StatusCode)
	}
	return resp, nil
}

func tabTitles(ss *sheets.Spreadsheet) []string {
	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s == nil || s.Properties == nil {
			continue
		}
		titles = append(titles, s.Properties.Title)
	}
	return titles
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
