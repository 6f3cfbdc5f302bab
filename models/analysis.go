package models

// Disclaimer is the fixed observational-only statement attached to every
// accepted result. The exact wording is part of the external contract.
const Disclaimer = "This analysis is observational only. It identifies structural patterns " +
	"in the submitted estimate against a fixed trade dictionary and rule set. It makes no " +
	"determination of insurance coverage, pricing fairness, entitlement to payment, or the " +
	"completeness of any claim."

// AnalysisStage names one state of the pipeline state machine.
type AnalysisStage string

const (
	StageReceived           AnalysisStage = "RECEIVED"
	StageGuardrailRaw       AnalysisStage = "GUARDRAIL_RAW"
	StageParsed             AnalysisStage = "PARSED"
	StageGuardrailExtracted AnalysisStage = "GUARDRAIL_EXTRACTED"
	StageExpectations       AnalysisStage = "EXPECTATIONS"
	StageIntegrity          AnalysisStage = "INTEGRITY"
	StageOPAnalysis         AnalysisStage = "OP_ANALYSIS"
	StageAssembled          AnalysisStage = "ASSEMBLED"
	StageRejected           AnalysisStage = "REJECTED"
)

// AnalysisRequest is one analysis submission. EstimateText is the document
// itself; UserInput is free-form accompanying text that is guardrail-scanned
// but never parsed for line items. LossType and DamageType are optional
// metadata; unrecognized loss types fall back to OTHER.
type AnalysisRequest struct {
	EstimateText string `json:"estimateText" binding:"required"`
	UserInput    string `json:"userInput"`
	LossType     string `json:"lossType"`
	DamageType   string `json:"damageType"`
}

// AnalysisResult is the accepted-case output envelope handed to the external
// formatter/persistence layer. OPAnalysis is nil when no line item carried
// money columns. Request ids live in context and logs only; keeping them out
// of the result keeps repeated runs over the same input byte-identical.
type AnalysisResult struct {
	Confidence          float64            `json:"confidence"`
	TradesDetected      []TradeRef         `json:"tradesDetected"`
	LineItems           []LineItem         `json:"lineItems"`
	ExpectationFindings ExpectationFinding `json:"expectationFindings"`
	IntegrityFindings   []IntegrityFinding `json:"integrityFindings"`
	OPAnalysis          *OPAnalysis        `json:"opAnalysis,omitempty"`
	Disclaimer          string             `json:"disclaimer"`
}

// Rejection is the rejected-case output envelope. Stage names the gate that
// failed; Violations is populated for guardrail rejections and Confidence for
// low-confidence parse rejections.
type Rejection struct {
	Rejected   bool                 `json:"rejected"`
	Stage      AnalysisStage        `json:"stage"`
	Reason     string               `json:"reason"`
	Confidence *float64             `json:"confidence,omitempty"`
	Violations []GuardrailViolation `json:"violations,omitempty"`
}
