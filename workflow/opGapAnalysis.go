package workflow

import (
	"fmt"
	"regexp"

	"bitbucket.org/claimlens/estimates_backend/config"
	"bitbucket.org/claimlens/estimates_backend/models"
	"github.com/shopspring/decimal"
)

// Overhead-and-profit constants. Conventional contractor markup is 10%
// overhead plus 10% profit on direct costs.
var (
	OverheadRate   = decimal.RequireFromString("0.10")
	ProfitRate     = decimal.RequireFromString("0.10")
	CombinedOPRate = OverheadRate.Add(ProfitRate)

	// Rate floors, in percent of the non-O&P RCV total.
	StandardOPRatePercent  = decimal.NewFromInt(15)
	PreferredOPRatePercent = decimal.NewFromInt(18)

	// RateGapNoiseFloor suppresses rate-shortfall gaps under $100.
	RateGapNoiseFloor = decimal.NewFromInt(100)

	// EstimateSizeFloor is the non-O&P total below which a missing O&P line
	// is not flagged estimate-wide.
	EstimateSizeFloor = decimal.NewFromInt(5000)
)

// Score deductions. The detector emits HIGH and MODERATE gaps today;
// CRITICAL keeps its slot in the table.
const (
	deductNoOP           = 30
	deductCriticalGap    = 20
	deductHighGap        = 15
	deductModerateGap    = 10
	deductBelowStandard  = 10
	deductBelowPreferred = 5
)

var opLinePattern = regexp.MustCompile(`(?i)overhead|profit|o&p|o & p`)

func isOPItem(item *models.LineItem) bool {
	return opLinePattern.MatchString(item.Description)
}

// HasMoneyColumns reports whether any line item carries RCV/ACV/depreciation
// data. Without money columns the O&P stage has nothing to analyze and is
// skipped as an optional terminal stage.
func HasMoneyColumns(items []models.LineItem) bool {
	for i := range items {
		if items[i].RCV != nil || items[i].ACV != nil || items[i].Depreciation != nil {
			return true
		}
	}
	return false
}

// AnalyzeOP detects overhead-and-profit presence and adequacy over line
// items carrying RCV/ACV/depreciation columns. Each gap rule triggers
// independently and appends its own estimated impact; by default the two
// estimate-wide rules may both contribute to TotalImpact (see
// config.OPGapsExclusive for the mutually-exclusive variant).
func AnalyzeOP(items []models.LineItem) *models.OPAnalysis {
	var (
		recoverableDep        = decimal.Zero
		opAmount              = decimal.Zero
		nonOPTotal            = decimal.Zero
		opItemCount           int
		depreciatedOPItems    int
		depreciatedItemsTotal int
	)

	for i := range items {
		item := &items[i]
		if item.Depreciation != nil {
			recoverableDep = recoverableDep.Add(item.Depreciation.Abs())
			if item.Depreciation.Abs().IsPositive() {
				depreciatedItemsTotal++
				if isOPItem(item) {
					depreciatedOPItems++
				}
			}
		}
		if item.RCV == nil {
			continue
		}
		if isOPItem(item) {
			opItemCount++
			opAmount = opAmount.Add(*item.RCV)
		} else {
			nonOPTotal = nonOPTotal.Add(*item.RCV)
		}
	}

	hasOP := opItemCount > 0
	opPercentage := decimal.Zero
	if nonOPTotal.IsPositive() {
		opPercentage = opAmount.Div(nonOPTotal).Mul(decimal.NewFromInt(100)).Round(2)
	}
	expectedOnRecoverable := recoverableDep.Mul(CombinedOPRate).Round(2)

	analysis := &models.OPAnalysis{
		HasOP:                   hasOP,
		OPAmount:                opAmount,
		OPPercentage:            opPercentage,
		RecoverableDepreciation: recoverableDep,
		ExpectedOPOnRecoverable: expectedOnRecoverable,
		Gaps:                    []models.OPGap{},
		TotalImpact:             decimal.Zero,
	}

	missingOnEstimate := !hasOP && nonOPTotal.GreaterThan(EstimateSizeFloor)

	// Gap 1: no O&P line while depreciation is being withheld.
	if !hasOP && recoverableDep.IsPositive() {
		impact := expectedOnRecoverable
		if missingOnEstimate && config.OPGapsExclusive() {
			// Estimate-wide gap already claims the impact; keep the flag
			// without double-counting dollars.
			impact = decimal.Zero
		}
		analysis.Gaps = append(analysis.Gaps, models.OPGap{
			Type:     models.OPGapMissingOnRecoverable,
			Severity: models.OPGapHigh,
			Observation: fmt.Sprintf("No overhead and profit line item is present while recoverable depreciation totals %s.",
				recoverableDep.StringFixed(2)),
			EstimatedImpact: impact,
		})
	}

	// Gap 2: O&P present but below the standard rate.
	if hasOP && nonOPTotal.IsPositive() && opPercentage.LessThan(StandardOPRatePercent) {
		impact := nonOPTotal.Mul(CombinedOPRate).Sub(opAmount).Round(2)
		if impact.GreaterThan(RateGapNoiseFloor) {
			analysis.Gaps = append(analysis.Gaps, models.OPGap{
				Type:     models.OPGapRateBelowStandard,
				Severity: models.OPGapModerate,
				Observation: fmt.Sprintf("Overhead and profit is %s%% of the non-O&P total, below the 15%% standard rate.",
					opPercentage.StringFixed(2)),
				EstimatedImpact: impact,
			})
		}
	}

	// Gap 3: no O&P line on an estimate above the size floor. Scoped to the
	// whole estimate, while gap 1 is scoped to withheld depreciation; both
	// may fire on the same input.
	if missingOnEstimate {
		impact := nonOPTotal.Mul(CombinedOPRate).Round(2)
		analysis.Gaps = append(analysis.Gaps, models.OPGap{
			Type:     models.OPGapMissingOnEstimate,
			Severity: models.OPGapHigh,
			Observation: fmt.Sprintf("No overhead and profit line item is present on an estimate with a non-O&P total of %s.",
				nonOPTotal.StringFixed(2)),
			EstimatedImpact: impact,
		})
	}

	// Gap 4: O&P present but applied only outside the depreciated scope.
	// Flag only, no dollar claim.
	if hasOP && depreciatedItemsTotal > 0 && depreciatedOPItems == 0 {
		analysis.Gaps = append(analysis.Gaps, models.OPGap{
			Type:            models.OPGapSelectiveApplication,
			Severity:        models.OPGapModerate,
			Observation:     "Overhead and profit line items carry no depreciation while other depreciated line items are present.",
			EstimatedImpact: decimal.Zero,
		})
	}

	for _, gap := range analysis.Gaps {
		analysis.TotalImpact = analysis.TotalImpact.Add(gap.EstimatedImpact)
	}
	analysis.OPScore = scoreOP(analysis, nonOPTotal)
	return analysis
}

// scoreOP computes the 0-100 adequacy score: flat deduction for a missing
// O&P line on a non-empty estimate, per-gap deductions by severity, and a
// rate-shortfall deduction. Never negative.
func scoreOP(analysis *models.OPAnalysis, nonOPTotal decimal.Decimal) int {
	score := 100

	if !analysis.HasOP && nonOPTotal.IsPositive() {
		score -= deductNoOP
	}

	for _, gap := range analysis.Gaps {
		switch gap.Severity {
		case models.OPGapCritical:
			score -= deductCriticalGap
		case models.OPGapHigh:
			score -= deductHighGap
		case models.OPGapModerate:
			score -= deductModerateGap
		}
	}

	if analysis.HasOP && nonOPTotal.IsPositive() {
		if analysis.OPPercentage.LessThan(StandardOPRatePercent) {
			score -= deductBelowStandard
		} else if analysis.OPPercentage.LessThan(PreferredOPRatePercent) {
			score -= deductBelowPreferred
		}
	}

	if score < 0 {
		return 0
	}
	return score
}
