package workflow

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"bitbucket.org/claimlens/estimates_backend/models"
	"bitbucket.org/claimlens/estimates_backend/utils"
	"github.com/shopspring/decimal"
)

// FormatConfidenceThreshold is the admission gate: documents scoring below
// it are rejected before extraction. Lowering it silently changes downstream
// false-positive rates, so tests pin it exactly.
const FormatConfidenceThreshold = 0.75

// MinUsableLines is the minimum non-blank line count accepted for scoring.
const MinUsableLines = 3

// Confidence signal weights. They sum to 1.0; each signal is capped at 1.0
// before weighting.
const (
	weightTradeLines    = 0.40
	weightQuantityUnits = 0.20
	weightHeaderKeyword = 0.15
	weightTradeSubcodes = 0.15
	weightRoomHeaders   = 0.10
)

// Signal scaling before the cap. Trade-coded lines rarely make up every line
// of a real export (headers, room labels, totals), so raw fractions are
// scaled so that a document dominated by the signal reaches the cap. Room
// headers are counted, not ratioed: a handful of room labels is full credit
// regardless of document length.
const (
	scaleTradeLines          = 1.5
	scaleQuantityUnits       = 2.0
	scaleTradeSubcodes       = 2.0
	roomHeadersForFullCredit = 3
)

// Reason bucket edges for sub-threshold confidence.
const (
	noIndicatorsBelow   = 0.30
	weakIndicatorsBelow = 0.60
)

var (
	// Three uppercase letters followed by end-of-token: "DRY Remove ..." but
	// not "KITCHEN".
	tradeLinePattern = regexp.MustCompile(`^([A-Z]{3})\b\s*(.*)$`)

	// Stricter trade + sub-code form: "DRY 1/2 ...", "PNT SW ...".
	tradeSubcodePattern = regexp.MustCompile(`^[A-Z]{3}\s+[A-Z0-9][A-Z0-9/+.-]*(\s|$)`)

	roomLabelPattern = regexp.MustCompile(`(?i)^(?:room|area|location)\s*[:#-]\s*(.+)$`)

	quantityUnitPattern = regexp.MustCompile(
		`(?i)\b(\d+(?:,\d{3})*(?:\.\d+)?)\s*(` + unitAlternation() + `)\b`)

	documentHeaderKeywords = []string{
		"estimate",
		"claim #",
		"claim number",
		"insured",
		"date of loss",
		"xactimate",
		"line item detail",
		"summary of damages",
	}

	roomKeywords = []string{
		"kitchen", "bathroom", "bath", "bedroom", "living", "dining",
		"hallway", "hall", "garage", "basement", "attic", "laundry",
		"closet", "office", "den", "foyer", "entry", "stairs", "utility",
		"exterior", "roof", "porch", "deck",
	}
)

func unitAlternation() string {
	codes := make([]string, len(models.AllUnits))
	for i, u := range models.AllUnits {
		codes[i] = string(u)
	}
	return strings.Join(codes, "|")
}

// ParseEstimate scores the document against the recognized structured-estimate
// format and, if confidence clears the admission gate, extracts the ordered
// line-item list plus first-pass integrity observations. Exactly one of the
// return values is non-nil.
func ParseEstimate(text string) (*models.ParseResult, *models.ParseRejection) {
	lines := utils.NonBlankLines(text)
	if len(lines) < MinUsableLines {
		return nil, &models.ParseRejection{Reason: models.RejectReasonTooShort}
	}

	confidence := scoreConfidence(text, lines)
	if confidence < FormatConfidenceThreshold {
		return nil, &models.ParseRejection{
			Reason:     rejectionBucket(confidence),
			Confidence: &confidence,
		}
	}

	items := extractLineItems(lines)

	result := &models.ParseResult{
		Confidence:      confidence,
		TradesDetected:  detectedTrades(items),
		LineItems:       items,
		IntegrityIssues: firstPassObservations(items),
	}
	return result, nil
}

func rejectionBucket(confidence float64) models.ParseRejectionReason {
	switch {
	case confidence < noIndicatorsBelow:
		return models.RejectReasonNoIndicators
	case confidence < weakIndicatorsBelow:
		return models.RejectReasonWeakIndicators
	default:
		return models.RejectReasonAmbiguous
	}
}

func scoreConfidence(text string, lines []string) float64 {
	total := float64(len(lines))

	var tradeLines, qtyLines, subcodeLines, roomLines int
	for _, line := range lines {
		if tradeLinePattern.MatchString(line) {
			tradeLines++
		}
		if quantityUnitPattern.MatchString(line) {
			qtyLines++
		}
		if tradeSubcodePattern.MatchString(line) {
			subcodeLines++
		}
		if isRoomHeader(line) {
			roomLines++
		}
	}

	headerSignal := 0.0
	if utils.ContainsAny(text, documentHeaderKeywords) {
		headerSignal = 1.0
	}

	confidence := weightTradeLines*capSignal(float64(tradeLines)/total*scaleTradeLines) +
		weightQuantityUnits*capSignal(float64(qtyLines)/total*scaleQuantityUnits) +
		weightHeaderKeyword*headerSignal +
		weightTradeSubcodes*capSignal(float64(subcodeLines)/total*scaleTradeSubcodes) +
		weightRoomHeaders*capSignal(float64(roomLines)/float64(roomHeadersForFullCredit))

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func capSignal(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func isRoomHeader(line string) bool {
	if roomLabelPattern.MatchString(line) {
		return true
	}
	// A short label line with no digits naming a room ("Master Bedroom").
	if len(line) > 40 || strings.ContainsAny(line, "0123456789") {
		return false
	}
	if tradeLinePattern.MatchString(line) {
		return false
	}
	return utils.ContainsAny(line, roomKeywords)
}

func roomLabel(line string) string {
	if m := roomLabelPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return line
}

func extractLineItems(lines []string) []models.LineItem {
	var items []models.LineItem
	var currentRoom *string

	for _, line := range lines {
		if tradeMatch := tradeLinePattern.FindStringSubmatch(line); tradeMatch != nil {
			item := buildLineItem(len(items)+1, line, tradeMatch[2], currentRoom)
			code := tradeMatch[1]
			item.Trade = &code
			if name, ok := models.TradeName(code); ok {
				item.TradeName = &name
			}
			items = append(items, item)
			continue
		}

		if isRoomHeader(line) {
			label := roomLabel(line)
			currentRoom = &label
			continue
		}

		if quantityUnitPattern.MatchString(line) {
			items = append(items, buildLineItem(len(items)+1, line, line, currentRoom))
			continue
		}

		// Neither pattern: not an error, just not a line item.
	}
	return items
}

// buildLineItem fills quantity, unit, money columns, and the cleaned
// description from the portion of the line after any trade code.
func buildLineItem(lineNumber int, rawLine string, body string, room *string) models.LineItem {
	item := models.LineItem{
		LineNumber: lineNumber,
		RawLine:    rawLine,
		Room:       room,
	}

	desc := strings.TrimSpace(body)

	if m := quantityUnitPattern.FindStringSubmatch(desc); m != nil {
		if qty, err := utils.ParseMoney(m[1]); err == nil {
			q := qty
			item.Quantity = &q
			unit := models.UnitOfMeasure(strings.ToUpper(m[2]))
			item.Unit = &unit
			item.IsZeroQuantity = q.IsZero()
		}
		desc = strings.Replace(desc, m[0], " ", 1)
	}

	desc = extractMoneyColumns(&item, desc)
	desc = stripSubcodeToken(desc)
	item.Description = strings.Join(strings.Fields(desc), " ")
	return item
}

var subcodeTokenPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9/+.-]{0,4}$`)

// stripSubcodeToken drops a leading sub-code token ("1/2", "SW") so the
// description starts with the work text.
func stripSubcodeToken(desc string) string {
	fields := strings.Fields(desc)
	if len(fields) >= 2 && subcodeTokenPattern.MatchString(fields[0]) {
		return strings.Join(fields[1:], " ")
	}
	return desc
}

// extractMoneyColumns pulls trailing money tokens off the line. Exports that
// carry pricing list RCV, depreciation, and ACV as the last columns; a
// single trailing amount is treated as RCV. Returns the description with the
// money tokens removed.
func extractMoneyColumns(item *models.LineItem, desc string) string {
	fields := strings.Fields(desc)

	var money []decimal.Decimal
	end := len(fields)
	for end > 0 && len(money) < 3 {
		token := fields[end-1]
		if !utils.LooksLikeMoney(token) {
			break
		}
		val, err := utils.ParseMoney(token)
		if err != nil {
			break
		}
		money = append([]decimal.Decimal{val}, money...)
		end--
	}

	switch len(money) {
	case 1:
		item.RCV = &money[0]
	case 2:
		rcv, dep := money[0], money[1].Abs()
		acv := rcv.Sub(dep)
		item.RCV = &rcv
		item.Depreciation = &dep
		item.ACV = &acv
	case 3:
		rcv, dep, acv := money[0], money[1].Abs(), money[2]
		item.RCV = &rcv
		item.Depreciation = &dep
		item.ACV = &acv
	}

	return strings.Join(fields[:end], " ")
}

func detectedTrades(items []models.LineItem) []models.TradeRef {
	seen := map[string]bool{}
	var refs []models.TradeRef
	for i := range items {
		if !items[i].HasTrade() {
			continue
		}
		code := *items[i].Trade
		name, ok := models.TradeName(code)
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		refs = append(refs, models.TradeRef{Code: code, Name: name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Code < refs[j].Code })
	return refs
}

// firstPassObservations emits the two convenience observations the parser
// itself is responsible for: zero-quantity items, and removal with no
// corresponding replacement per trade. The removal check is trade-scoped,
// not room-scoped: an install of the same trade anywhere suppresses it.
func firstPassObservations(items []models.LineItem) []models.IntegrityFinding {
	var findings []models.IntegrityFinding

	for i := range items {
		if items[i].IsZeroQuantity {
			findings = append(findings, models.IntegrityFinding{
				Type:              models.FindingZeroQuantity,
				Severity:          models.SeverityInfo,
				Observation:       fmt.Sprintf("Line %d has a quantity of zero.", items[i].LineNumber),
				Trade:             items[i].Trade,
				LineItemsAffected: []int{items[i].LineNumber},
			})
		}
	}

	removals, installs := keywordCountsByTrade(items)
	for _, code := range sortedTradeCodes(removals) {
		if len(removals[code]) > 0 && len(installs[code]) == 0 {
			trade := code
			findings = append(findings, models.IntegrityFinding{
				Type:     models.FindingRemovalWithoutReplacement,
				Severity: models.SeverityMedium,
				Observation: fmt.Sprintf("Trade %s includes %d removal line item(s) and no replacement line item.",
					code, len(removals[code])),
				Trade:             &trade,
				LineItemsAffected: removals[code],
			})
		}
	}

	return findings
}
