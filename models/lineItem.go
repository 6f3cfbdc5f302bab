package models

import (
	"github.com/shopspring/decimal"
)

// UnitOfMeasure is the closed set of quantity units recognized in estimate
// line items. Anything outside this set is ignored by the parser.
type UnitOfMeasure string

const (
	UnitSquareFoot  UnitOfMeasure = "SF"
	UnitSquareYard  UnitOfMeasure = "SY"
	UnitSquare      UnitOfMeasure = "SQ" // roofing square, 100 SF
	UnitLinearFoot  UnitOfMeasure = "LF"
	UnitEach        UnitOfMeasure = "EA"
	UnitHour        UnitOfMeasure = "HR"
	UnitCubicFoot   UnitOfMeasure = "CF"
	UnitCubicYard   UnitOfMeasure = "CY"
	UnitPound       UnitOfMeasure = "LB"
	UnitTon         UnitOfMeasure = "TN"
	UnitGallon      UnitOfMeasure = "GL"
	UnitRoom        UnitOfMeasure = "RM"
	UnitDay         UnitOfMeasure = "DA"
	UnitWeek        UnitOfMeasure = "WK"
	UnitMonth       UnitOfMeasure = "MO"
)

// AllUnits is the recognized unit set, used to build the parser's
// quantity+unit pattern. Order is not significant.
var AllUnits = []UnitOfMeasure{
	UnitSquareFoot, UnitSquareYard, UnitSquare, UnitLinearFoot, UnitEach,
	UnitHour, UnitCubicFoot, UnitCubicYard, UnitPound, UnitTon, UnitGallon,
	UnitRoom, UnitDay, UnitWeek, UnitMonth,
}

// IsHourUnit reports whether the unit denotes labor time.
func (u UnitOfMeasure) IsHourUnit() bool {
	return u == UnitHour || u == UnitDay || u == UnitWeek || u == UnitMonth
}

// IsMaterialUnit reports whether the unit denotes a physical quantity
// (area, length, volume, weight, or count).
func (u UnitOfMeasure) IsMaterialUnit() bool {
	switch u {
	case UnitSquareFoot, UnitSquareYard, UnitSquare, UnitLinearFoot, UnitEach,
		UnitCubicFoot, UnitCubicYard, UnitPound, UnitTon, UnitGallon, UnitRoom:
		return true
	}
	return false
}

// LineItem is one extracted unit of work or material from an estimate.
// Money columns (RCV, ACV, depreciation) are present only when the source
// line carried them; the O&P stage is skipped without them.
type LineItem struct {
	LineNumber     int              `json:"lineNumber"`
	Trade          *string          `json:"trade"`
	TradeName      *string          `json:"tradeName"`
	Description    string           `json:"description"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           *UnitOfMeasure   `json:"unit"`
	IsZeroQuantity bool             `json:"isZeroQuantity"`
	Room           *string          `json:"room"`
	RawLine        string           `json:"rawLine"`

	RCV          *decimal.Decimal `json:"rcv,omitempty"`
	ACV          *decimal.Decimal `json:"acv,omitempty"`
	Depreciation *decimal.Decimal `json:"depreciation,omitempty"`
}

// HasTrade reports whether the item was classified under a recognized
// trade code.
func (li *LineItem) HasTrade() bool {
	return li.Trade != nil && *li.Trade != ""
}

// TradeRef pairs a trade code with its dictionary name.
type TradeRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ParseResult is the outcome of a successful format parse.
// LineItems preserves source order; TradesDetected is deduplicated and
// sorted by code so repeated runs serialize identically.
type ParseResult struct {
	Confidence      float64            `json:"confidence"`
	TradesDetected  []TradeRef         `json:"tradesDetected"`
	LineItems       []LineItem         `json:"lineItems"`
	IntegrityIssues []IntegrityFinding `json:"integrityIssues"`
}

// ParseRejectionReason is the coarse bucket attached to a low-confidence
// rejection.
type ParseRejectionReason string

const (
	RejectReasonTooShort       ParseRejectionReason = "input_too_short"
	RejectReasonNoIndicators   ParseRejectionReason = "no_indicators"
	RejectReasonWeakIndicators ParseRejectionReason = "weak_indicators"
	RejectReasonAmbiguous      ParseRejectionReason = "ambiguous_format"
)

// ParseRejection reports why a document did not clear the admission gate.
// Confidence is nil for the too-short case, which rejects before scoring.
type ParseRejection struct {
	Reason     ParseRejectionReason `json:"reason"`
	Confidence *float64             `json:"confidence,omitempty"`
}
