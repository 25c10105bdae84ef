package export

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/earnview/portfolio/internal/portfolio"
	"github.com/earnview/portfolio/internal/row"
)

// HoldingRow is one asset line in an exported report.
type HoldingRow struct {
	ID           string
	Name         string
	Symbol       string
	CryptoAmount string
	Price        string
	FiatValue    string
	Allocation   string
}

// VaultRow is one vault position line in an exported report.
type VaultRow struct {
	VaultAddress string
	Name         string
	CryptoAmount string
	FiatAmount   string
	APY          *decimal.Decimal
}

// Report is a flattened portfolio view ready for spreadsheet export.
type Report struct {
	Account         string
	GeneratedAt     time.Time
	Holdings        []HoldingRow
	Vaults          []VaultRow
	TotalVaultValue decimal.Decimal
}

// ReportWriter writes a report to a spreadsheet destination.
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}

// Service flattens portfolio views and delegates writing to one or more writers.
type Service struct {
	writers []ReportWriter
}

// NewService creates a new export Service.
func NewService(writers ...ReportWriter) *Service {
	return &Service{writers: writers}
}

// Export builds a report from the view and writes it to all configured writers.
// Implements worker.AfterSnapshotHook.
func (s *Service) Export(ctx context.Context, view portfolio.View) error {
	report := BuildReport(view)

	var errs []error
	for _, w := range s.writers {
		if err := w.Write(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildReport flattens a portfolio view into export rows. Vault rows are
// ordered by vault address for stable output.
func BuildReport(view portfolio.View) Report {
	holdings := lo.Map(view.Rows, func(r row.Row, _ int) HoldingRow {
		return HoldingRow{
			ID:           r.ID,
			Name:         r.Name,
			Symbol:       r.Symbol,
			CryptoAmount: r.CryptoAmount,
			Price:        r.Price,
			FiatValue:    r.FiatValue,
			Allocation:   r.Allocation,
		}
	})

	addresses := lo.Keys(view.Vaults)
	sort.Strings(addresses)

	vaults := make([]VaultRow, 0, len(addresses))
	for _, addr := range addresses {
		v := view.Vaults[addr]
		vaults = append(vaults, VaultRow{
			VaultAddress: addr,
			Name:         v.Definition.Name,
			CryptoAmount: v.CryptoAmount,
			FiatAmount:   v.FiatAmount,
			APY:          v.APY,
		})
	}

	return Report{
		Account:         view.Account,
		GeneratedAt:     view.GeneratedAt,
		Holdings:        holdings,
		Vaults:          vaults,
		TotalVaultValue: view.TotalVaultValue,
	}
}
