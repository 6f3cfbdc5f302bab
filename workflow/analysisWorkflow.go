package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/claimlens/estimates_backend/appctx"
	"bitbucket.org/claimlens/estimates_backend/config"
	"bitbucket.org/claimlens/estimates_backend/models"
	"bitbucket.org/claimlens/estimates_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AnalysisPipeline sequences the analysis stages with fail-fast gating:
// guardrail on raw text, format parse, guardrail on extracted text,
// expectation comparison and integrity rules (independent, run
// concurrently), then the optional O&P stage. Any gate failure is terminal;
// no partial results are returned. The pipeline holds no per-request state
// and one instance serves concurrent requests.
type AnalysisPipeline struct {
	guardrail *Guardrail
	logger    *logrus.Logger
}

func NewAnalysisPipeline(logger *logrus.Logger, customGuardrailPhrases []string) *AnalysisPipeline {
	return &AnalysisPipeline{
		guardrail: NewGuardrail(customGuardrailPhrases),
		logger:    logger,
	}
}

// Run processes one analysis request. Exactly one of the return values is
// non-nil.
func (p *AnalysisPipeline) Run(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, *models.Rejection) {
	requestId, ok := appctx.GetString(ctx, appctx.ContextKeyRequestId)
	if !ok {
		requestId = uuid.NewString()
		ctx = appctx.Set(ctx, appctx.ContextKeyRequestId, requestId)
	}
	p.stage(requestId, models.StageReceived)

	// Gate 1: guardrail over the submitted text and accompanying user input.
	p.stage(requestId, models.StageGuardrailRaw)
	if verdict := p.guardrail.CheckContent(req.EstimateText, req.UserInput, nil); !verdict.Approved {
		return nil, p.reject(requestId, models.StageGuardrailRaw, "prohibited content detected in submitted text", nil, verdict.Violations)
	}

	// Gate 2: format confidence and extraction.
	p.stage(requestId, models.StageParsed)
	parsed, parseRejection := ParseEstimate(req.EstimateText)
	if parseRejection != nil {
		reason := fmt.Sprintf("estimate format not recognized (%s)", parseRejection.Reason)
		return nil, p.reject(requestId, models.StageParsed, reason, parseRejection.Confidence, nil)
	}

	// Gate 3: guardrail again over the extracted line-item text, closing the
	// loophole where prohibited language rides inside a description.
	p.stage(requestId, models.StageGuardrailExtracted)
	if verdict := p.guardrail.CheckContent("", "", parsed.LineItems); !verdict.Approved {
		return nil, p.reject(requestId, models.StageGuardrailExtracted, "prohibited content detected in extracted line items", nil, verdict.Violations)
	}

	// Expectations and integrity rules read the same immutable line-item
	// list and are mutually independent.
	lossType := models.ParseLossType(req.LossType)
	var (
		expectations models.ExpectationFinding
		integrity    []models.IntegrityFinding
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.stage(requestId, models.StageExpectations)
		expectations = CompareExpectations(parsed.TradesDetected, lossType)
		return nil
	})
	g.Go(func() error {
		p.stage(requestId, models.StageIntegrity)
		integrity = EvaluateIntegrityRules(parsed.LineItems)
		return nil
	})
	g.Wait()

	// Surface the parser's zero-quantity observations alongside the rule
	// engine output. The parser's removal observations are not merged: the
	// rule engine re-derives them and merging would duplicate the finding.
	for _, obs := range parsed.IntegrityIssues {
		if obs.Type == models.FindingZeroQuantity {
			integrity = append(integrity, obs)
		}
	}
	SortFindingsBySeverity(integrity)

	// O&P analysis is an optional terminal stage: it needs money columns the
	// generic line item may not carry.
	var opAnalysis *models.OPAnalysis
	if HasMoneyColumns(parsed.LineItems) {
		p.stage(requestId, models.StageOPAnalysis)
		opAnalysis = AnalyzeOP(parsed.LineItems)
	}

	p.stage(requestId, models.StageAssembled)
	return &models.AnalysisResult{
		Confidence:          parsed.Confidence,
		TradesDetected:      parsed.TradesDetected,
		LineItems:           parsed.LineItems,
		ExpectationFindings: expectations,
		IntegrityFindings:   integrity,
		OPAnalysis:          opAnalysis,
		Disclaimer:          models.Disclaimer,
	}, nil
}

// RejectionError maps a rejection to its sentinel error so transport layers
// can classify with errors.Is instead of switching on stage names. Guardrail
// stages map to ErrorGuardrailViolation; the parse stage maps to
// ErrorInputTooShort when the document rejected before scoring (no
// confidence) and ErrorLowConfidence otherwise.
func RejectionError(rej *models.Rejection) error {
	if rej == nil {
		return nil
	}
	switch rej.Stage {
	case models.StageGuardrailRaw, models.StageGuardrailExtracted:
		return fmt.Errorf("%w: %s", utils.ErrorGuardrailViolation, rej.Reason)
	case models.StageParsed:
		if rej.Confidence == nil {
			return fmt.Errorf("%w: %s", utils.ErrorInputTooShort, rej.Reason)
		}
		return fmt.Errorf("%w: %s", utils.ErrorLowConfidence, rej.Reason)
	}
	return fmt.Errorf("analysis rejected: %s", rej.Reason)
}

// RescanOutput applies the guardrail to natural-language narrative derived
// from findings (for example an externally generated summary) before it is
// shown to an end user.
func (p *AnalysisPipeline) RescanOutput(narrative string) models.GuardrailVerdict {
	return p.guardrail.RescanNarrative(narrative)
}

func (p *AnalysisPipeline) stage(requestId string, stage models.AnalysisStage) {
	if p.logger != nil {
		config.LogStage(p.logger, requestId, string(stage))
	}
}

func (p *AnalysisPipeline) reject(requestId string, stage models.AnalysisStage, reason string, confidence *float64, violations []models.GuardrailViolation) *models.Rejection {
	p.stage(requestId, models.StageRejected)
	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"requestId": requestId,
			"stage":     string(stage),
			"reason":    reason,
		}).Info("analysis rejected")
	}
	return &models.Rejection{
		Rejected:   true,
		Stage:      stage,
		Reason:     reason,
		Confidence: confidence,
		Violations: violations,
	}
}
