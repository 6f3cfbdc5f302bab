package models

import "github.com/shopspring/decimal"

// Severity ranks a finding. The ordinal is used for sorting and summary
// counts only; lower-severity findings are never suppressed.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
	SeverityInfo   Severity = "INFO"
)

var severityRank = map[Severity]int{
	SeverityHigh:   0,
	SeverityMedium: 1,
	SeverityLow:    2,
	SeverityInfo:   3,
}

// Rank returns the fixed ordinal for sorting (HIGH sorts first).
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// IntegrityFindingType is the closed enumeration of structural rule
// identifiers. New rules extend this list; nothing emits outside it.
type IntegrityFindingType string

const (
	FindingZeroQuantityWithLabor           IntegrityFindingType = "ZERO_QUANTITY_WITH_LABOR"
	FindingZeroQuantity                    IntegrityFindingType = "ZERO_QUANTITY"
	FindingRemovalWithoutReplacement       IntegrityFindingType = "REMOVAL_WITHOUT_REPLACEMENT"
	FindingReplacementWithoutRemoval       IntegrityFindingType = "REPLACEMENT_WITHOUT_REMOVAL"
	FindingDrywallWithoutPaint             IntegrityFindingType = "DRYWALL_WITHOUT_PAINT"
	FindingFlooringRemovalWithoutReinstall IntegrityFindingType = "FLOORING_REMOVAL_WITHOUT_REINSTALL"
	FindingLaborWithoutMaterial            IntegrityFindingType = "LABOR_WITHOUT_MATERIAL"
	FindingMaterialWithoutLabor            IntegrityFindingType = "MATERIAL_WITHOUT_LABOR"
	FindingInconsistentQuantities          IntegrityFindingType = "INCONSISTENT_QUANTITIES"
)

// IntegrityFinding is a single structural observation about the line-item
// set. Observation is one factual sentence; it carries no recommendation and
// no judgment language.
type IntegrityFinding struct {
	Type              IntegrityFindingType `json:"type"`
	Severity          Severity             `json:"severity"`
	Observation       string               `json:"observation"`
	Trade             *string              `json:"trade,omitempty"`
	Room              *string              `json:"room,omitempty"`
	LineItemsAffected []int                `json:"lineItemsAffected,omitempty"`
}

// ExpectationFinding is the outcome of comparing a detected trade set
// against a loss-type matrix. A trade code appears in at most one of the
// expected (matched/missing) and unexpected partitions.
type ExpectationFinding struct {
	LossType    LossType           `json:"lossType"`
	Matched     ExpectationTierSet `json:"matched"`
	Missing     ExpectationTierSet `json:"missing"`
	Unexpected  []TradeRef         `json:"unexpected"`
	Observation string             `json:"observation"`
}

// ExpectationTierSet splits one expected-trade partition by tier.
type ExpectationTierSet struct {
	Required    []TradeRef `json:"required"`
	Common      []TradeRef `json:"common"`
	Conditional []TradeRef `json:"conditional"`
}

// Total counts trades across all three tiers.
func (ts ExpectationTierSet) Total() int {
	return len(ts.Required) + len(ts.Common) + len(ts.Conditional)
}

// OPGapSeverity ranks an overhead-and-profit gap. The detector emits HIGH
// and MODERATE today; CRITICAL is reserved headroom in the score table.
type OPGapSeverity string

const (
	OPGapCritical OPGapSeverity = "CRITICAL"
	OPGapHigh     OPGapSeverity = "HIGH"
	OPGapModerate OPGapSeverity = "MODERATE"
)

// OPGapType is the closed enumeration of O&P gap rules.
type OPGapType string

const (
	OPGapMissingOnRecoverable OPGapType = "MISSING_ON_RECOVERABLE_DEPRECIATION"
	OPGapRateBelowStandard    OPGapType = "RATE_BELOW_STANDARD"
	OPGapMissingOnEstimate    OPGapType = "MISSING_ON_ESTIMATE"
	OPGapSelectiveApplication OPGapType = "SELECTIVE_APPLICATION"
)

// OPGap is one overhead-and-profit shortfall with its estimated dollar
// impact. Impact is zero for flag-only gaps.
type OPGap struct {
	Type            OPGapType       `json:"type"`
	Severity        OPGapSeverity   `json:"severity"`
	Observation     string          `json:"observation"`
	EstimatedImpact decimal.Decimal `json:"estimatedImpact"`
}

// OPAnalysis is the overhead-and-profit stage output. TotalImpact is the sum
// of gap impacts; depending on configuration the two estimate-wide gap rules
// may both contribute (see config.OPGapsExclusive).
type OPAnalysis struct {
	HasOP                   bool            `json:"hasOP"`
	OPAmount                decimal.Decimal `json:"opAmount"`
	OPPercentage            decimal.Decimal `json:"opPercentage"`
	RecoverableDepreciation decimal.Decimal `json:"recoverableDepreciation"`
	ExpectedOPOnRecoverable decimal.Decimal `json:"expectedOPOnRecoverable"`
	Gaps                    []OPGap         `json:"gaps"`
	TotalImpact             decimal.Decimal `json:"totalImpact"`
	OPScore                 int             `json:"opScore"`
}

// GuardrailCategory labels one prohibited-content category.
type GuardrailCategory string

const (
	GuardrailPaymentEntitlement     GuardrailCategory = "PAYMENT_ENTITLEMENT"
	GuardrailLegalAdversarial       GuardrailCategory = "LEGAL_ADVERSARIAL"
	GuardrailNegotiationDispute     GuardrailCategory = "NEGOTIATION_DISPUTE"
	GuardrailCoverageInterpretation GuardrailCategory = "COVERAGE_INTERPRETATION"
	GuardrailIntentPattern          GuardrailCategory = "INTENT_PATTERN"
	GuardrailCustomPhrase           GuardrailCategory = "CUSTOM_PHRASE"
)

// GuardrailViolation is one matched prohibited phrase or pattern.
type GuardrailViolation struct {
	Category GuardrailCategory `json:"category"`
	Matched  string            `json:"matched"`
}

// GuardrailVerdict is the classifier output. Violations lists every match,
// never just the first, so callers can log the complete violation surface.
// Violations is empty iff Approved is true.
type GuardrailVerdict struct {
	Approved   bool                 `json:"approved"`
	Violations []GuardrailViolation `json:"violations"`
}
