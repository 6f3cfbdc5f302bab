package config

import (
	"os"
	"strings"
)

// OPGapsExclusive makes the two estimate-wide O&P gap rules mutually
// exclusive: when the missing-on-estimate gap fires, the
// missing-on-recoverable-depreciation gap is still reported but contributes
// no dollar impact. Default (unset) keeps the source-compatible behavior
// where both impacts are summed.
//
// Set via env:
// - OP_GAPS_EXCLUSIVE=true
func OPGapsExclusive() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("OP_GAPS_EXCLUSIVE")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ExtraGuardrailPhrases returns operator-supplied prohibited phrases to scan
// in addition to the built-in tables. Injected at guardrail construction;
// the built-in tables are never mutated.
//
// Set via env:
// - GUARDRAIL_EXTRA_PHRASES="phrase one,phrase two"
func ExtraGuardrailPhrases() []string {
	raw := os.Getenv("GUARDRAIL_EXTRA_PHRASES")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var phrases []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			phrases = append(phrases, part)
		}
	}
	return phrases
}
