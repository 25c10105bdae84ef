package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements ReportWriter by writing an .xlsx file to disk.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates an XLSXWriter that saves reports to the given path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write renders the report into HOLDINGS and VAULTS sheets and saves the file.
// Each run overwrites the previous file.
func (w *XLSXWriter) Write(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, holdingsSheet, buildHoldings(report)); err != nil {
		return err
	}
	if err := writeSheet(f, vaultsSheet, buildVaults(report)); err != nil {
		return err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving report to %s: %w", w.path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}
	for i, cells := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}
