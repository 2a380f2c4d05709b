package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
	"github.com/yourusername/shelfsync/internal/infrastructure/excel"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SourceType tells how a configured sheet source is fetched.
type SourceType string

const (
	SourceGoogleSheet SourceType = "google_sheet"
	SourceDriveExcel  SourceType = "excel_file"
	SourceLocalFile   SourceType = "local_file"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var fileIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
}

func isGoogleURL(s string) bool {
	return strings.Contains(s, "drive.google.com") || strings.Contains(s, "docs.google.com")
}

// ExtractFileID pulls the file/spreadsheet ID out of a Google URL. Anything
// that is not a Google URL is returned unchanged.
func ExtractFileID(input string) string {
	input = strings.TrimSpace(input)
	if !isGoogleURL(input) {
		return input
	}
	for _, re := range fileIDPatterns {
		if m := re.FindStringSubmatch(input); len(m) == 2 {
			return m[1]
		}
	}
	return input
}

// DetectSourceType classifies a configured source string.
func DetectSourceType(source string) SourceType {
	source = strings.TrimSpace(source)
	if isGoogleURL(source) {
		if strings.Contains(source, "spreadsheets") {
			return SourceGoogleSheet
		}
		return SourceDriveExcel
	}
	lower := strings.ToLower(source)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
		return SourceLocalFile
	}
	return SourceGoogleSheet
}

// ClientOptions builds Google API options. A service account file wins over an API key.
func ClientOptions(apiKey, credentialsFile string) ([]option.ClientOption, error) {
	switch {
	case credentialsFile != "":
		return []option.ClientOption{
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope, drive.DriveReadonlyScope),
		}, nil
	case apiKey != "":
		return []option.ClientOption{option.WithAPIKey(apiKey)}, nil
	default:
		return nil, fmt.Errorf("GSHEETS_API_KEY yoki GOOGLE_CREDENTIALS_FILE kerak: %w", entity.ErrSourceNotConfigured)
	}
}

// Open returns the sheet source for a configured SHEET_SOURCE value.
func Open(ctx context.Context, source, apiKey, credentialsFile string) (repository.SheetSource, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, entity.ErrSourceNotConfigured
	}
	if DetectSourceType(source) == SourceLocalFile {
		if _, err := os.Stat(source); err != nil {
			return nil, fmt.Errorf("workbook %s: %w", source, err)
		}
		return excel.NewFileSource(source), nil
	}

	opts, err := ClientOptions(apiKey, credentialsFile)
	if err != nil {
		return nil, err
	}
	return NewClientFromOptions(ctx, source, opts...)
}
