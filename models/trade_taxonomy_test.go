package models

import (
	"sort"
	"testing"
)

func TestAllTradesSortedAndResolvable(t *testing.T) {
	trades := AllTrades()
	if len(trades) != len(tradeNames) {
		t.Fatalf("AllTrades returned %d entries, dictionary has %d", len(trades), len(tradeNames))
	}
	if !sort.SliceIsSorted(trades, func(i, j int) bool { return trades[i].Code < trades[j].Code }) {
		t.Fatalf("AllTrades not sorted by code: %+v", trades)
	}
	for _, ref := range trades {
		name, ok := TradeName(ref.Code)
		if !ok || name != ref.Name {
			t.Fatalf("trade %s resolves to %q, ref carries %q", ref.Code, name, ref.Name)
		}
	}
}

func TestTradeNameLookups(t *testing.T) {
	if name, ok := TradeName("DRY"); !ok || name != "Drywall" {
		t.Fatalf("TradeName(DRY) = %q, %v", name, ok)
	}
	if _, ok := TradeName("XYZ"); ok {
		t.Fatalf("unknown code resolved")
	}
	if !IsKnownTrade(TradeDrywall) || !IsKnownTrade(TradePainting) {
		t.Fatalf("named trade constants missing from dictionary")
	}
}

func TestFlooringTradesAreKnown(t *testing.T) {
	for code := range floorCoveringTrades {
		if !IsKnownTrade(code) {
			t.Fatalf("flooring trade %s missing from dictionary", code)
		}
	}
	if IsFlooringTrade("DRY") {
		t.Fatalf("DRY classified as flooring")
	}
	if !IsFlooringTrade("FCW") {
		t.Fatalf("FCW not classified as flooring")
	}
}

// Every code referenced by an expectation matrix must exist in the
// dictionary, and tier tables must be sorted and mutually disjoint.
func TestExpectationMatricesReferenceKnownTrades(t *testing.T) {
	for lossType, matrix := range lossExpectations {
		seen := map[string]bool{}
		for _, tier := range [][]string{matrix.Required, matrix.Common, matrix.Conditional} {
			if !sort.StringsAreSorted(tier) {
				t.Fatalf("%s: tier not sorted: %v", lossType, tier)
			}
			for _, code := range tier {
				if !IsKnownTrade(code) {
					t.Fatalf("%s: unknown trade %s in matrix", lossType, code)
				}
				if seen[code] {
					t.Fatalf("%s: trade %s appears in more than one tier", lossType, code)
				}
				seen[code] = true
			}
		}
	}
}

func TestParseLossTypeFallsBackToOther(t *testing.T) {
	cases := map[string]LossType{
		"water":     LossTypeWater,
		" WATER ":   LossTypeWater,
		"Hail":      LossTypeHail,
		"collision": LossTypeCollision,
		"mudslide":  LossTypeOther,
		"":          LossTypeOther,
	}
	for in, want := range cases {
		if got := ParseLossType(in); got != want {
			t.Fatalf("ParseLossType(%q) = %s, want %s", in, got, want)
		}
	}
}
