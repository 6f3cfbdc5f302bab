package workflow

import (
	"testing"

	"bitbucket.org/claimlens/estimates_backend/models"
)

// Scenario: sizable estimate with money columns, no O&P line, no withheld
// depreciation. Only the estimate-wide gap fires.
func TestOP_MissingOnEstimate(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "RFG", desc: "Replace roof covering", qty: "24", unit: models.UnitSquare, rcv: "15500.00"},
		{trade: "GTR", desc: "Replace gutters", qty: "120", unit: models.UnitLinearFoot, rcv: "3225.00"},
		{trade: "SDG", desc: "Replace siding section", qty: "200", unit: models.UnitSquareFoot, rcv: "2000.00"},
	})

	analysis := AnalyzeOP(items)
	if analysis.HasOP {
		t.Fatalf("no O&P line present but hasOP = true")
	}

	gaps := gapsOfType(analysis.Gaps, models.OPGapMissingOnEstimate)
	if len(gaps) != 1 {
		t.Fatalf("gaps = %+v, want one MISSING_ON_ESTIMATE", analysis.Gaps)
	}
	if gaps[0].Severity != models.OPGapHigh {
		t.Fatalf("severity = %s, want HIGH", gaps[0].Severity)
	}
	// 20,725.00 x 20% = 4,145.00
	if !gaps[0].EstimatedImpact.Equal(dec(t, "4145.00")) {
		t.Fatalf("impact = %s, want 4145.00", gaps[0].EstimatedImpact)
	}
	if !analysis.TotalImpact.Equal(dec(t, "4145.00")) {
		t.Fatalf("total impact = %s, want 4145.00", analysis.TotalImpact)
	}
	// 100 - 30 (no O&P) - 15 (HIGH gap).
	if analysis.OPScore != 55 {
		t.Fatalf("score = %d, want 55", analysis.OPScore)
	}
}

func TestOP_SmallEstimateWithoutOPIsNotFlagged(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Patch drywall", qty: "20", unit: models.UnitSquareFoot, rcv: "300.00"},
		{trade: "PNT", desc: "Paint patch", qty: "40", unit: models.UnitSquareFoot, rcv: "150.00"},
	})
	analysis := AnalyzeOP(items)
	if len(analysis.Gaps) != 0 {
		t.Fatalf("estimate under size floor produced gaps: %+v", analysis.Gaps)
	}
	// The flat no-O&P deduction still applies on a non-empty estimate.
	if analysis.OPScore != 70 {
		t.Fatalf("score = %d, want 70", analysis.OPScore)
	}
}

func TestOP_RateBelowStandard(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "RFG", desc: "Replace roof covering", qty: "20", unit: models.UnitSquare, rcv: "10000.00"},
		{desc: "Overhead and profit", rcv: "1000.00"},
	})

	analysis := AnalyzeOP(items)
	if !analysis.HasOP {
		t.Fatalf("O&P line not recognized")
	}
	if !analysis.OPPercentage.Equal(dec(t, "10")) {
		t.Fatalf("O&P percentage = %s, want 10", analysis.OPPercentage)
	}

	gaps := gapsOfType(analysis.Gaps, models.OPGapRateBelowStandard)
	if len(gaps) != 1 || gaps[0].Severity != models.OPGapModerate {
		t.Fatalf("gaps = %+v, want one MODERATE RATE_BELOW_STANDARD", analysis.Gaps)
	}
	// 10,000 x 20% - 1,000 = 1,000
	if !gaps[0].EstimatedImpact.Equal(dec(t, "1000.00")) {
		t.Fatalf("impact = %s, want 1000.00", gaps[0].EstimatedImpact)
	}
	// 100 - 10 (MODERATE gap) - 10 (below 15%).
	if analysis.OPScore != 80 {
		t.Fatalf("score = %d, want 80", analysis.OPScore)
	}
}

func TestOP_RateGapUnderNoiseFloorSuppressed(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Replace drywall", qty: "80", unit: models.UnitSquareFoot, rcv: "1000.00"},
		{desc: "Overhead and profit", rcv: "100.00"},
	})

	analysis := AnalyzeOP(items)
	// Shortfall is exactly 100.00; the floor is strict.
	if g := gapsOfType(analysis.Gaps, models.OPGapRateBelowStandard); len(g) != 0 {
		t.Fatalf("shortfall at the noise floor was flagged: %+v", g)
	}
	// Only the rate deduction remains: 100 - 10 (below 15%).
	if analysis.OPScore != 90 {
		t.Fatalf("score = %d, want 90", analysis.OPScore)
	}
}

func TestOP_SelectiveApplication(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "RFG", desc: "Replace roof covering", qty: "20", unit: models.UnitSquare, rcv: "10000.00", dep: "500.00"},
		{desc: "Overhead and profit", rcv: "1800.00"},
	})

	analysis := AnalyzeOP(items)
	gaps := gapsOfType(analysis.Gaps, models.OPGapSelectiveApplication)
	if len(gaps) != 1 || gaps[0].Severity != models.OPGapModerate {
		t.Fatalf("gaps = %+v, want one MODERATE SELECTIVE_APPLICATION", analysis.Gaps)
	}
	// Flag only: no dollar claim.
	if !gaps[0].EstimatedImpact.IsZero() {
		t.Fatalf("selective-application impact = %s, want 0", gaps[0].EstimatedImpact)
	}
	// O&P is at 18%; only the MODERATE gap deducts. 100 - 10.
	if analysis.OPScore != 90 {
		t.Fatalf("score = %d, want 90", analysis.OPScore)
	}
}

func TestOP_EmptyListScoresFull(t *testing.T) {
	analysis := AnalyzeOP(nil)
	if analysis.OPScore != 100 {
		t.Fatalf("empty list score = %d, want 100", analysis.OPScore)
	}
	if len(analysis.Gaps) != 0 || !analysis.TotalImpact.IsZero() {
		t.Fatalf("empty list produced gaps: %+v", analysis)
	}
}

func TestOP_ScoreNeverNegative(t *testing.T) {
	// Pile on every deduction the detector can emit.
	items := buildItems(t, []itemSpec{
		{trade: "RFG", desc: "Replace roof covering", qty: "20", unit: models.UnitSquare, rcv: "10000.00", dep: "2000.00"},
		{trade: "GTR", desc: "Replace gutters", qty: "120", unit: models.UnitLinearFoot, rcv: "3000.00", dep: "600.00"},
	})
	analysis := AnalyzeOP(items)
	if analysis.OPScore < 0 || analysis.OPScore > 100 {
		t.Fatalf("score %d outside [0,100]", analysis.OPScore)
	}
}
