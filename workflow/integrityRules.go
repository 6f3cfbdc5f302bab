package workflow

import (
	"fmt"
	"sort"

	"bitbucket.org/claimlens/estimates_backend/models"
	"bitbucket.org/claimlens/estimates_backend/utils"
)

// Keyword sets shared by the parser's first-pass observations and the rule
// engine. Matching is case-insensitive substring ("demo" also covers
// "demolish" and "demolition").
var (
	removalKeywords = []string{"remove", "demo", "tear out", "cut out"}
	installKeywords = []string{"install", "replace", "new", "reinstall"}

	laborVerbs = []string{
		"install", "remove", "replace", "repair", "apply", "demo",
		"tear out", "clean", "paint", "labor",
	}

	laborIndicators    = []string{"labor", "install", "apply"}
	materialIndicators = []string{"material", "supplies"}
)

func isRemovalItem(item *models.LineItem) bool {
	return utils.ContainsAny(item.Description, removalKeywords)
}

func isInstallItem(item *models.LineItem) bool {
	return utils.ContainsAny(item.Description, installKeywords)
}

// keywordCountsByTrade buckets removal and install line numbers per trade
// code. Items without a trade are ignored.
func keywordCountsByTrade(items []models.LineItem) (removals, installs map[string][]int) {
	removals = map[string][]int{}
	installs = map[string][]int{}
	for i := range items {
		if !items[i].HasTrade() {
			continue
		}
		code := *items[i].Trade
		if _, ok := removals[code]; !ok {
			removals[code] = nil
			installs[code] = nil
		}
		if isRemovalItem(&items[i]) {
			removals[code] = append(removals[code], items[i].LineNumber)
		}
		if isInstallItem(&items[i]) {
			installs[code] = append(installs[code], items[i].LineNumber)
		}
	}
	return removals, installs
}

func sortedTradeCodes[V any](m map[string]V) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// integrityRule is one independent check over the full line-item list.
type integrityRule func(items []models.LineItem) []models.IntegrityFinding

// integrityRules is the fixed battery. The engine output is the ordered
// union; run order affects reporting order only, never the output set.
var integrityRules = []integrityRule{
	checkZeroQuantityWithLabor,
	checkRemovalReplacementSymmetry,
	checkDrywallWithoutPaint,
	checkFlooringReinstall,
	checkLaborMaterialSymmetry,
	checkInconsistentQuantities,
}

// EvaluateIntegrityRules runs every rule over the immutable line-item list.
// Severity is carried for sorting and summary counts; no rule suppresses
// another rule's findings.
func EvaluateIntegrityRules(items []models.LineItem) []models.IntegrityFinding {
	findings := []models.IntegrityFinding{}
	for _, rule := range integrityRules {
		findings = append(findings, rule(items)...)
	}
	return findings
}

// SortFindingsBySeverity orders findings HIGH first for presentation,
// preserving rule order within a severity.
func SortFindingsBySeverity(findings []models.IntegrityFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() < findings[j].Severity.Rank()
	})
}

// Rule 1: a zero-quantity item whose description contains a labor verb.
func checkZeroQuantityWithLabor(items []models.LineItem) []models.IntegrityFinding {
	var findings []models.IntegrityFinding
	for i := range items {
		if !items[i].IsZeroQuantity {
			continue
		}
		if !utils.ContainsAny(items[i].Description, laborVerbs) {
			continue
		}
		findings = append(findings, models.IntegrityFinding{
			Type:     models.FindingZeroQuantityWithLabor,
			Severity: models.SeverityMedium,
			Observation: fmt.Sprintf("Line %d describes labor activity with a quantity of zero.",
				items[i].LineNumber),
			Trade:             items[i].Trade,
			Room:              items[i].Room,
			LineItemsAffected: []int{items[i].LineNumber},
		})
	}
	return findings
}

// Rule 2: per trade, removal items with no install items (MEDIUM), and the
// symmetric install-without-removal case (LOW). Replacement without removal
// is lower severity: it is more often legitimate, e.g. an initial install.
func checkRemovalReplacementSymmetry(items []models.LineItem) []models.IntegrityFinding {
	removals, installs := keywordCountsByTrade(items)

	var findings []models.IntegrityFinding
	for _, code := range sortedTradeCodes(removals) {
		trade := code
		switch {
		case len(removals[code]) > 0 && len(installs[code]) == 0:
			findings = append(findings, models.IntegrityFinding{
				Type:     models.FindingRemovalWithoutReplacement,
				Severity: models.SeverityMedium,
				Observation: fmt.Sprintf("Trade %s includes %d removal line item(s) and no replacement line item.",
					code, len(removals[code])),
				Trade:             &trade,
				LineItemsAffected: removals[code],
			})
		case len(installs[code]) > 0 && len(removals[code]) == 0:
			findings = append(findings, models.IntegrityFinding{
				Type:     models.FindingReplacementWithoutRemoval,
				Severity: models.SeverityLow,
				Observation: fmt.Sprintf("Trade %s includes %d replacement line item(s) and no removal line item.",
					code, len(installs[code])),
				Trade:             &trade,
				LineItemsAffected: installs[code],
			})
		}
	}
	return findings
}

// Rule 3: drywall trade present with zero paint-trade items anywhere in the
// estimate. Global, not per-room.
func checkDrywallWithoutPaint(items []models.LineItem) []models.IntegrityFinding {
	var drywallLines []int
	paintPresent := false
	for i := range items {
		if !items[i].HasTrade() {
			continue
		}
		switch *items[i].Trade {
		case models.TradeDrywall:
			drywallLines = append(drywallLines, items[i].LineNumber)
		case models.TradePainting:
			paintPresent = true
		}
	}
	if len(drywallLines) == 0 || paintPresent {
		return nil
	}
	trade := models.TradeDrywall
	return []models.IntegrityFinding{{
		Type:              models.FindingDrywallWithoutPaint,
		Severity:          models.SeverityMedium,
		Observation:       "Drywall line items are present and no painting line items are present in the estimate.",
		Trade:             &trade,
		LineItemsAffected: drywallLines,
	}}
}

// Rule 4: within a flooring trade, removal items with no install items.
func checkFlooringReinstall(items []models.LineItem) []models.IntegrityFinding {
	removals, installs := keywordCountsByTrade(items)

	var findings []models.IntegrityFinding
	for _, code := range sortedTradeCodes(removals) {
		if !models.IsFlooringTrade(code) {
			continue
		}
		if len(removals[code]) == 0 || len(installs[code]) > 0 {
			continue
		}
		trade := code
		findings = append(findings, models.IntegrityFinding{
			Type:     models.FindingFlooringRemovalWithoutReinstall,
			Severity: models.SeverityMedium,
			Observation: fmt.Sprintf("Flooring trade %s includes %d removal line item(s) and no installation line item.",
				code, len(removals[code])),
			Trade:             &trade,
			LineItemsAffected: removals[code],
		})
	}
	return findings
}

// Rule 5: per trade, labor-indicator items with zero material-indicator
// items, and the symmetric case. Both directions are LOW.
func checkLaborMaterialSymmetry(items []models.LineItem) []models.IntegrityFinding {
	laborByTrade := map[string][]int{}
	materialByTrade := map[string][]int{}

	for i := range items {
		if !items[i].HasTrade() {
			continue
		}
		code := *items[i].Trade
		if _, ok := laborByTrade[code]; !ok {
			laborByTrade[code] = nil
			materialByTrade[code] = nil
		}
		if utils.ContainsAny(items[i].Description, laborIndicators) ||
			(items[i].Unit != nil && items[i].Unit.IsHourUnit()) {
			laborByTrade[code] = append(laborByTrade[code], items[i].LineNumber)
		}
		if utils.ContainsAny(items[i].Description, materialIndicators) ||
			(items[i].Unit != nil && items[i].Unit.IsMaterialUnit()) {
			materialByTrade[code] = append(materialByTrade[code], items[i].LineNumber)
		}
	}

	var findings []models.IntegrityFinding
	for _, code := range sortedTradeCodes(laborByTrade) {
		trade := code
		switch {
		case len(laborByTrade[code]) > 0 && len(materialByTrade[code]) == 0:
			findings = append(findings, models.IntegrityFinding{
				Type:     models.FindingLaborWithoutMaterial,
				Severity: models.SeverityLow,
				Observation: fmt.Sprintf("Trade %s includes labor line item(s) and no material line item.",
					code),
				Trade:             &trade,
				LineItemsAffected: laborByTrade[code],
			})
		case len(materialByTrade[code]) > 0 && len(laborByTrade[code]) == 0:
			findings = append(findings, models.IntegrityFinding{
				Type:     models.FindingMaterialWithoutLabor,
				Severity: models.SeverityLow,
				Observation: fmt.Sprintf("Trade %s includes material line item(s) and no labor line item.",
					code),
				Trade:             &trade,
				LineItemsAffected: materialByTrade[code],
			})
		}
	}
	return findings
}

// Rule 6: within the same trade and room, removal and install items present
// with more than one distinct quantity value.
func checkInconsistentQuantities(items []models.LineItem) []models.IntegrityFinding {
	type group struct {
		trade, room string
		removal     bool
		install     bool
		quantities  map[string]bool
		lineNumbers []int
	}
	groups := map[string]*group{}

	for i := range items {
		if !items[i].HasTrade() || items[i].Room == nil {
			continue
		}
		removal := isRemovalItem(&items[i])
		install := isInstallItem(&items[i])
		if !removal && !install {
			continue
		}
		key := *items[i].Trade + "|" + *items[i].Room
		g, ok := groups[key]
		if !ok {
			g = &group{trade: *items[i].Trade, room: *items[i].Room, quantities: map[string]bool{}}
			groups[key] = g
		}
		g.removal = g.removal || removal
		g.install = g.install || install
		if items[i].Quantity != nil {
			g.quantities[items[i].Quantity.String()] = true
		}
		g.lineNumbers = append(g.lineNumbers, items[i].LineNumber)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var findings []models.IntegrityFinding
	for _, k := range keys {
		g := groups[k]
		if !g.removal || !g.install || len(g.quantities) <= 1 {
			continue
		}
		trade, room := g.trade, g.room
		findings = append(findings, models.IntegrityFinding{
			Type:     models.FindingInconsistentQuantities,
			Severity: models.SeverityLow,
			Observation: fmt.Sprintf("Trade %s in room %q has removal and installation line items with %d distinct quantity values.",
				g.trade, g.room, len(g.quantities)),
			Trade:             &trade,
			Room:              &room,
			LineItemsAffected: g.lineNumbers,
		})
	}
	return findings
}
