package workflow

import (
	"regexp"
	"strings"

	"bitbucket.org/claimlens/estimates_backend/models"
	"bitbucket.org/claimlens/estimates_backend/utils"
)

// Prohibited phrase tables. Four fixed categories plus a small set of intent
// patterns. Loaded once at process start; custom phrases are injected at
// construction, never appended here.
var (
	paymentEntitlementPhrases = []string{
		"they owe me",
		"owed to me",
		"entitled to",
		"must pay",
		"have to pay me",
		"force them to pay",
		"get more money",
		"maximize my payout",
		"maximize my settlement",
		"full payout",
	}

	legalAdversarialPhrases = []string{
		"bad faith",
		"lawsuit",
		"sue the",
		"attorney",
		"legal action",
		"demand letter",
		"small claims",
		"department of insurance complaint",
	}

	negotiationDisputePhrases = []string{
		"negotiate",
		"counteroffer",
		"counter offer",
		"lowball",
		"push back on",
		"dispute the estimate",
		"dispute the adjuster",
		"fight the adjuster",
		"rebuttal",
	}

	coverageInterpretationPhrases = []string{
		"is this covered",
		"should be covered",
		"policy covers",
		"covered under my policy",
		"covered by my policy",
		"deny my claim",
		"claim denial",
		"policy limits",
		"waive my deductible",
	}

	intentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)how (do|can) i (get|make|force)`),
		regexp.MustCompile(`(?i)what should i (say|tell|write)`),
		regexp.MustCompile(`(?i)is (this|that|it) covered`),
		regexp.MustCompile(`(?i)will (the )?insurance (pay|cover)`),
		regexp.MustCompile(`(?i)how much (more )?can i (get|claim|recover)`),
	}
)

type phraseCategory struct {
	category models.GuardrailCategory
	phrases  []string
}

// Guardrail classifies arbitrary text against the prohibited-content tables.
// It is a pure classifier with no side effects; one instance is safe for
// concurrent use.
type Guardrail struct {
	categories    []phraseCategory
	customPhrases []string
}

// NewGuardrail builds a guardrail over the built-in tables plus any
// operator-supplied custom phrases (see config.ExtraGuardrailPhrases).
// Custom phrases are lowercased and deduplicated so a repeated env entry
// cannot inflate the violation count.
func NewGuardrail(customPhrases []string) *Guardrail {
	lowered := make([]string, 0, len(customPhrases))
	for _, p := range customPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	lowered = utils.UniqueSlice(lowered)
	return &Guardrail{
		categories: []phraseCategory{
			{models.GuardrailPaymentEntitlement, paymentEntitlementPhrases},
			{models.GuardrailLegalAdversarial, legalAdversarialPhrases},
			{models.GuardrailNegotiationDispute, negotiationDisputePhrases},
			{models.GuardrailCoverageInterpretation, coverageInterpretationPhrases},
		},
		customPhrases: lowered,
	}
}

// CheckContent scans the raw estimate text, free-form user input, and the
// text of extracted line items. Line items are included so prohibited
// language smuggled inside a description is caught even when the covering
// text is clean. Every match is collected; there is no first-match
// short-circuit.
func (g *Guardrail) CheckContent(text string, userInput string, lineItems []models.LineItem) models.GuardrailVerdict {
	var parts []string
	if text != "" {
		parts = append(parts, text)
	}
	if userInput != "" {
		parts = append(parts, userInput)
	}
	for i := range lineItems {
		parts = append(parts, lineItems[i].Description)
		if lineItems[i].RawLine != lineItems[i].Description {
			parts = append(parts, lineItems[i].RawLine)
		}
	}
	return g.scan(strings.Join(parts, " | "))
}

// RescanNarrative applies the same tables to natural-language output derived
// from findings (for example an externally generated summary), rejecting
// narratives that reintroduce prohibited language.
func (g *Guardrail) RescanNarrative(narrative string) models.GuardrailVerdict {
	return g.scan(narrative)
}

func (g *Guardrail) scan(combined string) models.GuardrailVerdict {
	lower := strings.ToLower(combined)

	var violations []models.GuardrailViolation
	for _, cat := range g.categories {
		for _, phrase := range cat.phrases {
			if strings.Contains(lower, phrase) {
				violations = append(violations, models.GuardrailViolation{
					Category: cat.category,
					Matched:  phrase,
				})
			}
		}
	}
	for _, pattern := range intentPatterns {
		if m := pattern.FindString(combined); m != "" {
			violations = append(violations, models.GuardrailViolation{
				Category: models.GuardrailIntentPattern,
				Matched:  pattern.String(),
			})
		}
	}
	for _, phrase := range g.customPhrases {
		if strings.Contains(lower, phrase) {
			violations = append(violations, models.GuardrailViolation{
				Category: models.GuardrailCustomPhrase,
				Matched:  phrase,
			})
		}
	}

	return models.GuardrailVerdict{
		Approved:   len(violations) == 0,
		Violations: violations,
	}
}
