package models

import "strings"

// LossType classifies the cause of loss an estimate responds to. It selects
// which expectation matrix the detected trade set is compared against.
type LossType string

const (
	LossTypeWater     LossType = "WATER"
	LossTypeFire      LossType = "FIRE"
	LossTypeWind      LossType = "WIND"
	LossTypeHail      LossType = "HAIL"
	LossTypeCollision LossType = "COLLISION"
	LossTypeOther     LossType = "OTHER"
)

// ParseLossType normalizes free-form metadata to a LossType. Unrecognized
// values fall back to OTHER; an unknown loss type is not an error.
func ParseLossType(raw string) LossType {
	switch LossType(strings.ToUpper(strings.TrimSpace(raw))) {
	case LossTypeWater:
		return LossTypeWater
	case LossTypeFire:
		return LossTypeFire
	case LossTypeWind:
		return LossTypeWind
	case LossTypeHail:
		return LossTypeHail
	case LossTypeCollision:
		return LossTypeCollision
	default:
		return LossTypeOther
	}
}

// ExpectationTier is how strongly a trade is expected for a loss type.
type ExpectationTier string

const (
	TierRequired    ExpectationTier = "REQUIRED"
	TierCommon      ExpectationTier = "COMMON"
	TierConditional ExpectationTier = "CONDITIONAL"
)

// ExpectationMatrix lists the trade codes expected for one loss type,
// partitioned by tier. The three tiers are disjoint by construction.
type ExpectationMatrix struct {
	Required    []string
	Common      []string
	Conditional []string
}

// lossExpectations is the versioned per-loss-type matrix table. OTHER is
// deliberately empty: with nothing expected, nothing can be reported missing.
var lossExpectations = map[LossType]ExpectationMatrix{
	LossTypeWater: {
		Required:    []string{"DRY", "WTR"},
		Common:      []string{"FCC", "INS", "PNT"},
		Conditional: []string{"CAB", "CLN", "ELE", "FCW", "HVC", "PLM"},
	},
	LossTypeFire: {
		Required:    []string{"CLN", "PNT"},
		Common:      []string{"CNT", "DRY", "INS"},
		Conditional: []string{"ELE", "FRM", "HVC", "RFG", "STL"},
	},
	LossTypeWind: {
		Required:    []string{"RFG"},
		Common:      []string{"GTR", "SDG", "WDW"},
		Conditional: []string{"FNC", "FRM", "INS", "SCF"},
	},
	LossTypeHail: {
		Required:    []string{"RFG"},
		Common:      []string{"GTR", "SDG"},
		Conditional: []string{"PNT", "SCF", "WDW"},
	},
	LossTypeCollision: {
		Required:    []string{"FRM"},
		Common:      []string{"DRY", "SDG"},
		Conditional: []string{"DOR", "ELE", "MAS", "PLM", "WDW"},
	},
	LossTypeOther: {},
}

// MatrixFor returns the expectation matrix for a loss type, falling back to
// the empty OTHER matrix for anything unmapped.
func MatrixFor(lossType LossType) ExpectationMatrix {
	if m, ok := lossExpectations[lossType]; ok {
		return m
	}
	return lossExpectations[LossTypeOther]
}
