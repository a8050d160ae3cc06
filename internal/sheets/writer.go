package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

// Writer implements the service.ResultExporter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets result exporter.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: svc,
		logger:  logger,
	}, nil
}

// Export writes the aggregated listings to a new tab named by label and
// returns the spreadsheet URL.
func (w *Writer) Export(ctx context.Context, listings []model.Listing, label string) (string, error) {
	w.logger.Info("starting result export",
		"listings", len(listings),
		"label", label)

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetTitle := "Scan " + label
	if err := w.addSheet(ctx, spreadsheetID, sheetTitle); err != nil {
		return "", fmt.Errorf("failed to add sheet: %w", err)
	}

	values := w.prepareRows(listings)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeRows(ctx, spreadsheetID, sheetTitle, values)
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}

	location := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", spreadsheetID)

	w.logger.Info("result export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return location, nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken})
	}

	return sheets.NewService(ctx, option.WithTokenSource(tokenSource))
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		return w.config.SpreadsheetID, nil
	}

	spreadsheet, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: w.config.SpreadsheetName,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	w.logger.Info("created spreadsheet", "spreadsheet_id", spreadsheet.SpreadsheetId)
	return spreadsheet.SpreadsheetId, nil
}

func (w *Writer) addSheet(ctx context.Context, spreadsheetID, title string) error {
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", title, err)
	}
	return nil
}

func (w *Writer) prepareRows(listings []model.Listing) [][]any {
	values := [][]any{
		{"Item ID", "Title", "Price", "Currency", "Seller", "URL", "First Found"},
	}
	for _, l := range listings {
		firstFound := l.FirstFoundAt
		if firstFound.IsZero() {
			firstFound = time.Now()
		}
		values = append(values, []any{
			l.ItemID,
			l.Title,
			l.Price,
			l.Currency,
			l.Seller,
			l.URL,
			firstFound.Format("2006-01-02"),
		})
	}
	return values
}

func (w *Writer) writeRows(ctx context.Context, spreadsheetID, sheetTitle string, values [][]any) error {
	rangeRef := fmt.Sprintf("'%s'!A1", sheetTitle)

	_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeRef, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update values: %w", err)
	}
	return nil
}
