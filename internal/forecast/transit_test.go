package forecast

import (
	"errors"
	"testing"

	"github.com/plannink/forecast-api/internal/domain"
)

func TestApplyTransitUnits(t *testing.T) {
	engine := NewEngine()
	p := testProduct()

	updated, err := engine.ApplyTransitUnits(p, 240, nil)
	if err != nil {
		t.Fatalf("ApplyTransitUnits failed: %v", err)
	}

	if updated.UnitsInTransit != 240 {
		t.Errorf("units in transit = %v, want 240", updated.UnitsInTransit)
	}
	if updated.TotalStock != updated.PhysicalStock+updated.UnitsInTransit {
		t.Errorf("total stock %v != physical %v + transit %v",
			updated.TotalStock, updated.PhysicalStock, updated.UnitsInTransit)
	}
	if len(updated.Projections) != p.Config.HorizonMonths {
		t.Errorf("projections not regenerated: got %d", len(updated.Projections))
	}

	// Re-applying accumulates rather than replacing.
	again, err := engine.ApplyTransitUnits(updated, 60, nil)
	if err != nil {
		t.Fatalf("second ApplyTransitUnits failed: %v", err)
	}
	if again.UnitsInTransit != 300 {
		t.Errorf("units in transit after second apply = %v, want 300", again.UnitsInTransit)
	}
}

func TestApplyTransitUnits_RejectsNonPositive(t *testing.T) {
	engine := NewEngine()
	p := testProduct()

	for _, units := range []int{0, -5} {
		_, err := engine.ApplyTransitUnits(p, units, nil)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("ApplyTransitUnits(%d) should return ValidationError, got %v", units, err)
		}
	}

	// The rejected call must not have touched the caller's product.
	if p.UnitsInTransit != 0 {
		t.Errorf("input product mutated on rejected call: transit = %v", p.UnitsInTransit)
	}
}

func TestApplyTransitDays_Global(t *testing.T) {
	engine := NewEngine()
	p := testProduct()

	updated, overrides, err := engine.ApplyTransitDays(p, 10, nil, nil)
	if err != nil {
		t.Fatalf("ApplyTransitDays failed: %v", err)
	}

	if updated.TransitDays != 10 {
		t.Errorf("global transit days = %d, want 10", updated.TransitDays)
	}
	if len(overrides) != 0 {
		t.Errorf("global apply should not create per-projection overrides, got %d", len(overrides))
	}
	for i, proj := range updated.Projections {
		if proj.TransitDaysApplied {
			t.Errorf("projection %d flagged applied after global change", i)
		}
		if proj.TransitDays != 10 {
			t.Errorf("projection %d transit days = %d, want 10", i, proj.TransitDays)
		}
	}
}

func TestApplyTransitDays_PerIndexPreservesOtherFlags(t *testing.T) {
	engine := NewEngine()
	p := testProduct()

	idx0 := 0
	p, overrides, err := engine.ApplyTransitDays(p, 7, &idx0, nil)
	if err != nil {
		t.Fatalf("first ApplyTransitDays failed: %v", err)
	}

	idx2 := 2
	p, overrides, err = engine.ApplyTransitDays(p, 5, &idx2, overrides)
	if err != nil {
		t.Fatalf("second ApplyTransitDays failed: %v", err)
	}

	if !p.Projections[0].TransitDaysApplied {
		t.Error("projection 0 lost its applied flag after an unrelated per-index change")
	}
	if p.Projections[0].TransitDays != 7 {
		t.Errorf("projection 0 transit days = %d, want 7", p.Projections[0].TransitDays)
	}
	if !p.Projections[2].TransitDaysApplied {
		t.Error("projection 2 should carry the applied flag")
	}
	if p.Projections[1].TransitDaysApplied {
		t.Error("projection 1 should not carry the applied flag")
	}

	if len(overrides) != 2 {
		t.Errorf("expected 2 overrides, got %d", len(overrides))
	}
}

func TestApplyTransitDays_Validation(t *testing.T) {
	engine := NewEngine()
	p := testProduct()

	tests := []struct {
		name string
		days int
		idx  *int
	}{
		{name: "zero days", days: 0},
		{name: "negative days", days: -1},
		{name: "exceeds max", days: 31},
		{name: "index out of range", days: 5, idx: intPtr(99)},
		{name: "negative index", days: 5, idx: intPtr(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := engine.ApplyTransitDays(p, tt.days, tt.idx, nil)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
