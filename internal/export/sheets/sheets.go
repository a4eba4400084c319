// Package sheets appends recorded budget alerts to a Google Sheets log so
// they can be reviewed outside the app. The export is optional and config
// gated.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"smartspend/internal/config"
	"smartspend/internal/storage"
)

// AlertExporter appends alert rows to a spreadsheet.
type AlertExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New builds an exporter from the OAuth client and token in the config.
// Returns an error when the sheets export is not configured.
func New(ctx context.Context, cfg *config.Config) (*AlertExporter, error) {
	if !cfg.SheetsEnabled() {
		return nil, errors.New("sheets export not configured")
	}

	clientJSON, err := readJSON(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	tokenJSON, err := readJSON(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &AlertExporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// AppendAlert writes one alert as a row: timestamp, user, category, type,
// percentage, spent, message.
func (e *AlertExporter) AppendAlert(ctx context.Context, a storage.Alert, categoryName string) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{
		a.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		a.UserID,
		categoryName,
		a.Type,
		a.Percentage,
		float64(a.Spent.Cents) / 100.0,
		a.Message,
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := e.svc.Spreadsheets.Values.
		Append(e.spreadsheetID, e.sheetName+"!A:G", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append alert row: %w", err)
	}
	return nil
}

func readJSON(inline, file string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if file != "" {
		return os.ReadFile(file)
	}
	return nil, errors.New("no credentials provided")
}
