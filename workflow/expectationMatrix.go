package workflow

import (
	"fmt"
	"sort"

	"bitbucket.org/claimlens/estimates_backend/models"
)

// CompareExpectations compares the detected trade set against the loss-type
// expectation matrix. Pure lookup and set comparison; the observation is
// strictly factual and an unrecognized loss type yields the empty OTHER
// matrix, which can report nothing missing by construction.
func CompareExpectations(detected []models.TradeRef, lossType models.LossType) models.ExpectationFinding {
	matrix := models.MatrixFor(lossType)

	detectedSet := make(map[string]bool, len(detected))
	for _, ref := range detected {
		detectedSet[ref.Code] = true
	}

	expectedSet := map[string]bool{}
	var matched, missing models.ExpectationTierSet
	matched.Required, missing.Required = splitTier(matrix.Required, detectedSet, expectedSet)
	matched.Common, missing.Common = splitTier(matrix.Common, detectedSet, expectedSet)
	matched.Conditional, missing.Conditional = splitTier(matrix.Conditional, detectedSet, expectedSet)

	var unexpected []models.TradeRef
	for _, ref := range detected {
		if !expectedSet[ref.Code] {
			unexpected = append(unexpected, ref)
		}
	}
	sort.Slice(unexpected, func(i, j int) bool { return unexpected[i].Code < unexpected[j].Code })

	return models.ExpectationFinding{
		LossType:   lossType,
		Matched:    matched,
		Missing:    missing,
		Unexpected: unexpected,
		Observation: fmt.Sprintf(
			"For loss type %s: %d expected trade(s) detected, %d expected trade(s) not detected (%d required), %d detected trade(s) outside the expectation set.",
			lossType, matched.Total(), missing.Total(), len(missing.Required), len(unexpected)),
	}
}

// splitTier partitions one tier's codes into detected and not-detected,
// recording every expected code in expectedSet. Tier tables are already
// sorted; output order follows the table.
func splitTier(codes []string, detectedSet map[string]bool, expectedSet map[string]bool) (matched, missing []models.TradeRef) {
	for _, code := range codes {
		expectedSet[code] = true
		name, _ := models.TradeName(code)
		ref := models.TradeRef{Code: code, Name: name}
		if detectedSet[code] {
			matched = append(matched, ref)
		} else {
			missing = append(missing, ref)
		}
	}
	return matched, missing
}
