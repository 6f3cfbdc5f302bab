package models

import "sort"

// TradeTaxonomyVersion identifies the trade-code dictionary revision carried
// in this build. Findings produced against one revision are only comparable
// to findings produced against the same revision.
const TradeTaxonomyVersion = "2025.2"

// tradeNames maps short trade codes to human-readable trade names.
// Loaded once at process start; never mutated at runtime.
var tradeNames = map[string]string{
	"APP": "Appliances",
	"CAB": "Cabinetry",
	"CLN": "Cleaning",
	"CNT": "Content Manipulation",
	"CON": "Concrete & Asphalt",
	"DMO": "General Demolition",
	"DOR": "Doors",
	"DRY": "Drywall",
	"ELE": "Electrical",
	"EXC": "Excavation",
	"FCC": "Floor Covering - Carpet",
	"FCS": "Floor Covering - Stone",
	"FCT": "Floor Covering - Ceramic Tile",
	"FCV": "Floor Covering - Vinyl",
	"FCW": "Floor Covering - Wood",
	"FNC": "Finish Carpentry / Trim",
	"FRM": "Framing & Rough Carpentry",
	"GTR": "Gutters & Downspouts",
	"HVC": "Heating, Ventilation & Air Conditioning",
	"INS": "Insulation",
	"MAS": "Masonry",
	"MBL": "Marble & Cultured Marble",
	"PLM": "Plumbing",
	"PNT": "Painting",
	"RFG": "Roofing",
	"SCF": "Scaffolding",
	"SDG": "Siding",
	"STL": "Steel Components",
	"STR": "Stairways",
	"WDW": "Windows",
	"WTR": "Water Extraction & Remediation",
}

// floorCoveringTrades are the trade codes treated as flooring for the
// flooring-specific integrity rule.
var floorCoveringTrades = map[string]bool{
	"FCC": true,
	"FCS": true,
	"FCT": true,
	"FCV": true,
	"FCW": true,
}

const (
	TradeDrywall  = "DRY"
	TradePainting = "PNT"
)

// TradeName resolves a trade code against the dictionary.
func TradeName(code string) (string, bool) {
	name, ok := tradeNames[code]
	return name, ok
}

// IsKnownTrade reports whether code is in the dictionary.
func IsKnownTrade(code string) bool {
	_, ok := tradeNames[code]
	return ok
}

// IsFlooringTrade reports whether code is a floor-covering trade.
func IsFlooringTrade(code string) bool {
	return floorCoveringTrades[code]
}

// AllTrades returns the full dictionary as TradeRefs sorted by code.
func AllTrades() []TradeRef {
	refs := make([]TradeRef, 0, len(tradeNames))
	for code, name := range tradeNames {
		refs = append(refs, TradeRef{Code: code, Name: name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Code < refs[j].Code })
	return refs
}
