package ledger

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsConfig identifies the remote spreadsheet and its credentials.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string // service account JSON
	Worksheet       string // tab name, defaults to Sheet1
}

// SheetsLedger is the Google Sheets implementation of Ledger.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// Connect authenticates with the service account, opens the spreadsheet and
// writes the header row if the sheet is still empty. Callers should fall
// back to the Disabled ledger on error instead of refusing to start.
func Connect(ctx context.Context, cfg SheetsConfig) (*SheetsLedger, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is not configured")
	}
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("sheets credentials file is not configured")
	}
	worksheet := cfg.Worksheet
	if worksheet == "" {
		worksheet = "Sheet1"
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	l := &SheetsLedger{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     worksheet,
	}

	rows, err := l.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet %s: %w", cfg.SpreadsheetID, err)
	}
	if len(rows) == 0 {
		header := make([]any, len(Header))
		for i, col := range Header {
			header[i] = col
		}
		if err := l.appendRow(ctx, header); err != nil {
			return nil, fmt.Errorf("writing header row: %w", err)
		}
	}

	return l, nil
}

// Append writes one annotation row to the sheet.
func (l *SheetsLedger) Append(ctx context.Context, rec AnnotationRecord) error {
	if err := l.appendRow(ctx, rec.Row()); err != nil {
		return fmt.Errorf("appending annotation for pair %d: %w", rec.PairIndex, err)
	}
	return nil
}

// CompletedPairs reads all rows and returns the pair indices recorded for
// the annotator. Read failures and unparsable rows are swallowed: a
// transient outage at login means "no progress known", not a blocked
// session.
func (l *SheetsLedger) CompletedPairs(ctx context.Context, annotatorID string) []int {
	if annotatorID == "" {
		return nil
	}
	rows, err := l.Rows(ctx)
	if err != nil {
		log.Printf("ledger read failed for %q, assuming no prior progress: %v", annotatorID, err)
		return nil
	}

	var completed []int
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		annotator, index, ok := parseRow(row)
		if !ok || annotator != annotatorID {
			continue
		}
		completed = append(completed, index)
	}
	return completed
}

// Rows returns the raw sheet contents, header included.
func (l *SheetsLedger) Rows(ctx context.Context) ([][]any, error) {
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, l.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet values: %w", err)
	}
	return resp.Values, nil
}

func (l *SheetsLedger) appendRow(ctx context.Context, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, l.worksheet, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
