package workflow

import (
	"testing"

	"bitbucket.org/claimlens/estimates_backend/models"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

type itemSpec struct {
	trade string
	desc  string
	qty   string
	unit  models.UnitOfMeasure
	room  string
	rcv   string
	dep   string
}

// buildItems constructs a line-item list the way the parser would, with
// 1-based line numbers in order.
func buildItems(t *testing.T, specs []itemSpec) []models.LineItem {
	t.Helper()
	items := make([]models.LineItem, 0, len(specs))
	for i, spec := range specs {
		item := models.LineItem{
			LineNumber:  i + 1,
			Description: spec.desc,
			RawLine:     spec.desc,
		}
		if spec.trade != "" {
			trade := spec.trade
			item.Trade = &trade
			if name, ok := models.TradeName(trade); ok {
				n := name
				item.TradeName = &n
			}
		}
		if spec.qty != "" {
			q := dec(t, spec.qty)
			item.Quantity = &q
			item.IsZeroQuantity = q.IsZero()
		}
		if spec.unit != "" {
			u := spec.unit
			item.Unit = &u
		}
		if spec.room != "" {
			room := spec.room
			item.Room = &room
		}
		if spec.rcv != "" {
			rcv := dec(t, spec.rcv)
			item.RCV = &rcv
		}
		if spec.dep != "" {
			dep := dec(t, spec.dep)
			item.Depreciation = &dep
			if item.RCV != nil {
				acv := item.RCV.Sub(dep)
				item.ACV = &acv
			}
		}
		items = append(items, item)
	}
	return items
}

func findingsOfType(findings []models.IntegrityFinding, ft models.IntegrityFindingType) []models.IntegrityFinding {
	var out []models.IntegrityFinding
	for _, f := range findings {
		if f.Type == ft {
			out = append(out, f)
		}
	}
	return out
}

func gapsOfType(gaps []models.OPGap, gt models.OPGapType) []models.OPGap {
	var out []models.OPGap
	for _, g := range gaps {
		if g.Type == gt {
			out = append(out, g)
		}
	}
	return out
}
