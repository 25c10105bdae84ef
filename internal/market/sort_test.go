package market

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/earnview/portfolio/internal/domain"
)

func asset(symbol, name string) domain.AssetRecord {
	return domain.AssetRecord{
		ID:        domain.TokenAssetID("ethereum", "mainnet", domain.ContractTypeERC20, "0x"+symbol),
		Name:      name,
		Symbol:    symbol,
		Precision: 18,
	}
}

func ranked(id domain.AssetID, rank int) domain.MarketRecord {
	price := decimal.NewFromInt(1)
	return domain.MarketRecord{ID: id, Price: &price, MarketCapRank: &rank}
}

func TestSortedByMarketCap(t *testing.T) {
	a := asset("AAA", "Alpha")
	b := asset("BBB", "Beta")
	c := asset("CCC", "Gamma")

	assets := map[string]domain.AssetRecord{
		a.ID.Canonical(): a,
		b.ID.Canonical(): b,
		c.ID.Canonical(): c,
	}
	market := map[string]domain.MarketRecord{
		a.ID.Canonical(): ranked(a.ID, 2),
		b.ID.Canonical(): ranked(b.ID, 1),
	}

	got := SortedByMarketCap(assets, market)
	want := []string{"BBB", "AAA", "CCC"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Errorf("position %d = %s, want %s", i, got[i].Symbol, sym)
		}
	}
}

func TestSortedByMarketCapUnrankedLexicographic(t *testing.T) {
	// Two assets share a name; the symbol breaks the tie.
	x := asset("XXX", "Same")
	y := asset("YYY", "Same")
	z := asset("ZZZ", "Earlier")

	assets := map[string]domain.AssetRecord{
		x.ID.Canonical(): x,
		y.ID.Canonical(): y,
		z.ID.Canonical(): z,
	}

	got := SortedByMarketCap(assets, nil)
	want := []string{"ZZZ", "XXX", "YYY"}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Errorf("position %d = %s, want %s", i, got[i].Symbol, sym)
		}
	}
}

func TestSortedByMarketCapDoesNotMutateInputs(t *testing.T) {
	a := asset("AAA", "Alpha")
	assets := map[string]domain.AssetRecord{a.ID.Canonical(): a}
	market := map[string]domain.MarketRecord{a.ID.Canonical(): ranked(a.ID, 1)}

	_ = SortedByMarketCap(assets, market)

	if len(assets) != 1 || len(market) != 1 {
		t.Error("input maps were mutated")
	}
	if assets[a.ID.Canonical()].Symbol != "AAA" {
		t.Error("asset record was mutated")
	}
}
