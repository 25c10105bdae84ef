package export

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const (
	holdingsSheet = "HOLDINGS"
	vaultsSheet   = "VAULTS"
)

// SheetsWriter implements ReportWriter using the Google Sheets API.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write ensures required sheets exist, then clears and rewrites them.
func (w *SheetsWriter) Write(ctx context.Context, report Report) error {
	if err := w.ensureSheets(ctx, holdingsSheet, vaultsSheet); err != nil {
		return err
	}

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: []string{holdingsSheet + "!A:G", vaultsSheet + "!A:E"},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: []*sheets.ValueRange{
				{Range: holdingsSheet + "!A1", Values: buildHoldings(report)},
				{Range: vaultsSheet + "!A1", Values: buildVaults(report)},
			},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	return nil
}

// buildHoldings builds the HOLDINGS sheet data.
// Columns: ID | Name | Symbol | Amount | Price | Fiat Value | Allocation
func buildHoldings(report Report) [][]any {
	data := make([][]any, 0, len(report.Holdings)+1)
	data = append(data, []any{
		"ID", "Name", "Symbol", "Amount", "Price", "Fiat Value", "Allocation",
	})

	for _, h := range report.Holdings {
		data = append(data, []any{
			h.ID, h.Name, h.Symbol, h.CryptoAmount, h.Price, h.FiatValue, h.Allocation,
		})
	}

	return data
}

// buildVaults builds the VAULTS sheet data.
// Columns: Vault | Name | Amount | Fiat Value | APY
func buildVaults(report Report) [][]any {
	data := make([][]any, 0, len(report.Vaults)+2)
	data = append(data, []any{"Vault", "Name", "Amount", "Fiat Value", "APY"})

	for _, v := range report.Vaults {
		var apy any
		if v.APY != nil {
			f, _ := v.APY.Float64()
			apy = f
		}
		data = append(data, []any{
			v.VaultAddress, v.Name, v.CryptoAmount, v.FiatAmount, apy,
		})
	}

	total, _ := report.TotalVaultValue.Float64()
	data = append(data, []any{"Total", "", "", total, ""})

	return data
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}
