// Package google exports courier data to Google Sheets: a ledger sheet
// mirroring delivered parcels and a report sheet receiving daily COD
// summaries.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"courierops/internal/core"
	"courierops/internal/report"
	ports "courierops/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	reportSheet   string
}

// Ensure interface conformance
var (
	_ ports.LedgerWriter = (*Client)(nil)
	_ ports.ReportWriter = (*Client)(nil)
	_ ports.Exporter     = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS; otherwise GOOGLE_OAUTH_CLIENT_FILE
// plus the token file written by oauth-init.
// Sheet names: GOOGLE_LEDGER_SHEET_NAME (default "Ledger"),
// GOOGLE_REPORT_SHEET_NAME (default "Daily Report"); the current year is
// prefixed so each year gets its own tabs.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledgerBase := strings.TrimSpace(os.Getenv("GOOGLE_LEDGER_SHEET_NAME"))
	if ledgerBase == "" {
		ledgerBase = "Ledger"
	}
	reportBase := strings.TrimSpace(os.Getenv("GOOGLE_REPORT_SHEET_NAME"))
	if reportBase == "" {
		reportBase = "Daily Report"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	year := time.Now().Year()
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerSheet:   fmt.Sprintf("%d %s", year, ledgerBase),
		reportSheet:   fmt.Sprintf("%d %s", year, reportBase),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(serviceAccountJSON)),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		credentialsJSON, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	default:
		return newOAuthSheetsService(ctx)
	}
}

// newOAuthSheetsService falls back to the OAuth client plus the saved
// token produced by the oauth-init binary.
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if clientFile == "" || tokenFile == "" {
		return nil, errors.New("missing Google credentials (set service account variables or GOOGLE_OAUTH_CLIENT_FILE and GOOGLE_OAUTH_TOKEN_FILE)")
	}

	clientJSON, err := os.ReadFile(clientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	cfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	tokenJSON, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	slog.InfoContext(ctx, "Using saved OAuth token", "path", tokenFile)
	return gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &tok)))
}

// AppendParcel writes one delivered parcel to the ledger sheet and
// returns the written range.
func (c *Client) AppendParcel(ctx context.Context, p core.Parcel) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Next empty row from the current sheet height.
	rng := fmt.Sprintf("%s!A:A", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get ledger dimensions: %w", err)
	}
	nextRow := len(resp.Values) + 1

	day := ""
	if !p.CreatedAt.IsZero() {
		day = core.DayKey(p.CreatedAt)
	}
	dataRange := fmt.Sprintf("%s!A%d:H%d", c.ledgerSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		day,
		p.ID,
		p.VendorName,
		p.RecipientName,
		p.Address,
		core.FormatAmount(p.COD()),
		p.Status,
		p.RiderName,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write ledger row: %w", err)
	}

	return dataRange, nil
}

// AppendDailyReport appends the daily financial summary, one row per
// (day, status) cell followed by the grand total.
func (c *Client) AppendDailyReport(ctx context.Context, rep report.DailyReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	var values [][]any
	for _, day := range rep.Days {
		for _, cell := range day.Statuses {
			values = append(values, []any{day.Date, cell.Label, cell.Parcels, cell.TotalCOD})
		}
		values = append(values, []any{day.Date, "Day Total", day.Parcels, day.TotalCOD})
	}
	values = append(values, []any{"", "Grand Total", rep.TotalParcels, rep.GrandTotal})

	rng := fmt.Sprintf("%s!A:D", c.reportSheet)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append daily report: %w", err)
	}

	slog.InfoContext(ctx, "Appended daily report",
		"sheet", c.reportSheet,
		"days", len(rep.Days),
		"rows", len(values))
	return nil
}
