package workflow

import (
	"testing"

	"bitbucket.org/claimlens/estimates_backend/models"
)

// Scenario: drywall removal/replace with insulation and baseboard, no paint
// trade anywhere.
func TestIntegrity_DrywallWithoutPaint(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "200", unit: models.UnitSquareFoot, room: "Kitchen"},
		{trade: "DRY", desc: "Replace drywall", qty: "200", unit: models.UnitSquareFoot, room: "Kitchen"},
		{trade: "INS", desc: "Install insulation", qty: "200", unit: models.UnitSquareFoot, room: "Kitchen"},
		{trade: "FNC", desc: "Replace baseboard", qty: "44", unit: models.UnitLinearFoot, room: "Kitchen"},
	})

	findings := EvaluateIntegrityRules(items)
	drywall := findingsOfType(findings, models.FindingDrywallWithoutPaint)
	if len(drywall) != 1 {
		t.Fatalf("drywall-without-paint findings = %+v, want exactly one", drywall)
	}
	if drywall[0].Severity != models.SeverityMedium {
		t.Fatalf("severity = %s, want MEDIUM", drywall[0].Severity)
	}
	if len(drywall[0].LineItemsAffected) != 2 {
		t.Fatalf("affected lines = %v, want the two drywall lines", drywall[0].LineItemsAffected)
	}

	// Adding any paint-trade item suppresses the finding.
	withPaint := append(items, buildItems(t, []itemSpec{
		{trade: "PNT", desc: "Paint walls", qty: "400", unit: models.UnitSquareFoot, room: "Kitchen"},
	})...)
	for i := range withPaint {
		withPaint[i].LineNumber = i + 1
	}
	if f := findingsOfType(EvaluateIntegrityRules(withPaint), models.FindingDrywallWithoutPaint); len(f) != 0 {
		t.Fatalf("finding fired despite paint trade present: %+v", f)
	}
}

// Scenario: a zero-quantity removal next to a normal replacement.
func TestIntegrity_ZeroQuantityWithLabor(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "0", unit: models.UnitSquareFoot},
		{trade: "DRY", desc: "Replace drywall", qty: "200", unit: models.UnitSquareFoot},
	})

	findings := findingsOfType(EvaluateIntegrityRules(items), models.FindingZeroQuantityWithLabor)
	if len(findings) != 1 {
		t.Fatalf("zero-quantity-with-labor findings = %+v, want exactly one", findings)
	}
	if findings[0].Severity != models.SeverityMedium {
		t.Fatalf("severity = %s, want MEDIUM", findings[0].Severity)
	}
	if len(findings[0].LineItemsAffected) != 1 || findings[0].LineItemsAffected[0] != 1 {
		t.Fatalf("affected lines = %v, want line 1 only", findings[0].LineItemsAffected)
	}
}

func TestIntegrity_ZeroQuantityWithoutLaborVerbIsNotFlagged(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Drywall allowance", qty: "0", unit: models.UnitSquareFoot},
		{trade: "DRY", desc: "Replace drywall", qty: "200", unit: models.UnitSquareFoot},
	})
	if f := findingsOfType(EvaluateIntegrityRules(items), models.FindingZeroQuantityWithLabor); len(f) != 0 {
		t.Fatalf("non-labor zero-quantity item flagged: %+v", f)
	}
}

// Scenario: carpet and baseboard removal with no install items.
func TestIntegrity_FlooringRemovalWithoutReinstall(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "FCC", desc: "Remove carpet", qty: "180", unit: models.UnitSquareFoot, room: "Hallway"},
		{trade: "FCC", desc: "Remove carpet pad", qty: "180", unit: models.UnitSquareFoot, room: "Hallway"},
		{trade: "FNC", desc: "Remove baseboard", qty: "44", unit: models.UnitLinearFoot, room: "Hallway"},
	})

	findings := EvaluateIntegrityRules(items)
	flooring := findingsOfType(findings, models.FindingFlooringRemovalWithoutReinstall)
	if len(flooring) != 1 {
		t.Fatalf("flooring findings = %+v, want exactly one (FCC)", flooring)
	}
	if *flooring[0].Trade != "FCC" || flooring[0].Severity != models.SeverityMedium {
		t.Fatalf("flooring finding = %+v, want MEDIUM on FCC", flooring[0])
	}
	// FNC is not a flooring trade; it is covered by the generic rule only.
	generic := findingsOfType(findings, models.FindingRemovalWithoutReplacement)
	if len(generic) != 2 {
		t.Fatalf("generic removal findings = %+v, want FCC and FNC", generic)
	}
}

// A trade with removal-only items yields the MEDIUM finding and never the
// LOW symmetric finding, and vice versa.
func TestIntegrity_SymmetricRulesAreIndependent(t *testing.T) {
	removalOnly := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "100", unit: models.UnitSquareFoot},
	})
	findings := EvaluateIntegrityRules(removalOnly)
	if f := findingsOfType(findings, models.FindingRemovalWithoutReplacement); len(f) != 1 || f[0].Severity != models.SeverityMedium {
		t.Fatalf("removal-only: %+v, want one MEDIUM removal finding", f)
	}
	if f := findingsOfType(findings, models.FindingReplacementWithoutRemoval); len(f) != 0 {
		t.Fatalf("removal-only input produced replacement finding: %+v", f)
	}

	installOnly := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Install drywall", qty: "100", unit: models.UnitSquareFoot},
	})
	findings = EvaluateIntegrityRules(installOnly)
	if f := findingsOfType(findings, models.FindingReplacementWithoutRemoval); len(f) != 1 || f[0].Severity != models.SeverityLow {
		t.Fatalf("install-only: %+v, want one LOW replacement finding", f)
	}
	if f := findingsOfType(findings, models.FindingRemovalWithoutReplacement); len(f) != 0 {
		t.Fatalf("install-only input produced removal finding: %+v", f)
	}
}

func TestIntegrity_LaborMaterialSymmetry(t *testing.T) {
	laborOnly := buildItems(t, []itemSpec{
		{trade: "WTR", desc: "Extraction labor", qty: "4", unit: models.UnitHour},
	})
	findings := EvaluateIntegrityRules(laborOnly)
	if f := findingsOfType(findings, models.FindingLaborWithoutMaterial); len(f) != 1 || f[0].Severity != models.SeverityLow {
		t.Fatalf("labor-only: %+v, want one LOW finding", f)
	}
	if f := findingsOfType(findings, models.FindingMaterialWithoutLabor); len(f) != 0 {
		t.Fatalf("labor-only input produced material finding: %+v", f)
	}

	materialOnly := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Drywall supplies", qty: "10", unit: models.UnitEach},
	})
	findings = EvaluateIntegrityRules(materialOnly)
	if f := findingsOfType(findings, models.FindingMaterialWithoutLabor); len(f) != 1 {
		t.Fatalf("material-only: %+v, want one finding", f)
	}
}

func TestIntegrity_InconsistentQuantitiesWithinTradeAndRoom(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "120", unit: models.UnitSquareFoot, room: "Kitchen"},
		{trade: "DRY", desc: "Replace drywall", qty: "200", unit: models.UnitSquareFoot, room: "Kitchen"},
	})
	findings := findingsOfType(EvaluateIntegrityRules(items), models.FindingInconsistentQuantities)
	if len(findings) != 1 {
		t.Fatalf("inconsistent-quantity findings = %+v, want exactly one", findings)
	}
	f := findings[0]
	if f.Severity != models.SeverityLow || *f.Trade != "DRY" || *f.Room != "Kitchen" {
		t.Fatalf("finding = %+v, want LOW naming DRY/Kitchen", f)
	}

	// Same quantities: no finding.
	matched := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "200", unit: models.UnitSquareFoot, room: "Kitchen"},
		{trade: "DRY", desc: "Replace drywall", qty: "200", unit: models.UnitSquareFoot, room: "Kitchen"},
	})
	if f := findingsOfType(EvaluateIntegrityRules(matched), models.FindingInconsistentQuantities); len(f) != 0 {
		t.Fatalf("matched quantities flagged: %+v", f)
	}

	// Different rooms: groups are trade+room scoped.
	split := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "120", unit: models.UnitSquareFoot, room: "Kitchen"},
		{trade: "DRY", desc: "Replace drywall", qty: "200", unit: models.UnitSquareFoot, room: "Hallway"},
	})
	if f := findingsOfType(EvaluateIntegrityRules(split), models.FindingInconsistentQuantities); len(f) != 0 {
		t.Fatalf("cross-room quantities flagged: %+v", f)
	}
}

func TestIntegrity_ObservationsAreSingleFactualSentences(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "0", unit: models.UnitSquareFoot, room: "Kitchen"},
		{trade: "FCC", desc: "Remove carpet", qty: "180", unit: models.UnitSquareFoot, room: "Kitchen"},
	})
	for _, f := range EvaluateIntegrityRules(items) {
		if f.Observation == "" {
			t.Fatalf("finding %s has empty observation", f.Type)
		}
		if f.Observation[len(f.Observation)-1] != '.' {
			t.Fatalf("observation not a sentence: %q", f.Observation)
		}
	}
}

func TestIntegrity_SortBySeverityIsStable(t *testing.T) {
	items := buildItems(t, []itemSpec{
		{trade: "DRY", desc: "Remove drywall", qty: "0", unit: models.UnitSquareFoot},
		{trade: "FCC", desc: "Remove carpet", qty: "180", unit: models.UnitSquareFoot},
	})
	findings := EvaluateIntegrityRules(items)
	SortFindingsBySeverity(findings)
	for i := 1; i < len(findings); i++ {
		if findings[i-1].Severity.Rank() > findings[i].Severity.Rank() {
			t.Fatalf("findings not ordered by severity: %s after %s",
				findings[i-1].Severity, findings[i].Severity)
		}
	}
}
