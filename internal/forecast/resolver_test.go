package forecast

import (
	"testing"

	"github.com/plannink/forecast-api/internal/domain"
)

func TestResolveOrder_DeficitBelowReorderPoint(t *testing.T) {
	p := testProduct()
	p.Deficit = 12 // product-level current deficit, distinct field

	proj := domain.Projection{
		ProjectedStock: 100,
		SafetyStock:    50,
		ReorderPoint:   300,
	}
	ResolveOrder(&proj, &p)

	if proj.Deficit != 200 {
		t.Errorf("deficit = %v, want 200 (reorder point - projected stock)", proj.Deficit)
	}
	if proj.RequiredAction != string(domain.ActionMonitor) {
		t.Errorf("required action = %s, want MONITOR", proj.RequiredAction)
	}
}

func TestResolveOrder_DeficitAtOrAboveReorderPoint(t *testing.T) {
	p := testProduct()
	p.Deficit = 12

	proj := domain.Projection{
		ProjectedStock: 300,
		SafetyStock:    50,
		ReorderPoint:   300,
	}
	ResolveOrder(&proj, &p)

	// At the reorder point the per-projection shortfall is zero and the
	// product-level deficit carries through unchanged.
	if proj.Deficit != 12 {
		t.Errorf("deficit = %v, want the product-level 12", proj.Deficit)
	}
	if proj.RequiredAction != string(domain.ActionSufficient) {
		t.Errorf("required action = %s, want SUFFICIENT", proj.RequiredAction)
	}
}

func TestResolveOrder_CriticalAction(t *testing.T) {
	p := testProduct()
	proj := domain.Projection{
		ProjectedStock: 10,
		SafetyStock:    50,
		ReorderPoint:   300,
	}
	ResolveOrder(&proj, &p)

	if proj.RequiredAction != string(domain.ActionOrderNow) {
		t.Errorf("required action = %s, want ORDER_NOW", proj.RequiredAction)
	}
	if !proj.Critical() {
		t.Error("projection below safety stock should read as critical")
	}
}

func TestCheckOrderQuantities(t *testing.T) {
	tests := []struct {
		name     string
		units    float64
		boxes    int
		perBox   int
		wantWarn bool
	}{
		{name: "exact match", units: 120, boxes: 10, perBox: 12},
		{name: "ceil match", units: 121, boxes: 11, perBox: 12},
		{name: "mismatch", units: 120, boxes: 9, perBox: 12, wantWarn: true},
		{name: "no order", units: 0, boxes: 0, perBox: 12},
		{name: "unknown box size", units: 120, boxes: 3, perBox: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProduct()
			p.UnitsToOrder = tt.units
			p.BoxesToOrder = tt.boxes
			p.UnitsPerBox = tt.perBox

			warn := CheckOrderQuantities(&p)
			if tt.wantWarn && warn == nil {
				t.Error("expected a DataIntegrityWarning")
			}
			if !tt.wantWarn && warn != nil {
				t.Errorf("unexpected warning: %v", warn)
			}
		})
	}
}

func TestProductStatus(t *testing.T) {
	p := testProduct()
	p.SafetyStock = 100
	p.ReorderPoint = 500
	p.TotalStock = 500

	if got := ProductStatus(&p); got != domain.StatusSafe {
		t.Errorf("stock at reorder point = %s, want safe", got)
	}
}

func TestRequiredActionLabels(t *testing.T) {
	if domain.ActionSufficient.Label() != "Stock suficiente" {
		t.Errorf("sufficient label = %q", domain.ActionSufficient.Label())
	}

	action, ok := domain.ParseRequiredAction("stock SUFICIENTE")
	if !ok || action != domain.ActionSufficient {
		t.Errorf("ParseRequiredAction failed: %v %v", action, ok)
	}
}
