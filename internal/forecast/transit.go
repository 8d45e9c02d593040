// internal/forecast/transit.go
package forecast

import (
	"github.com/plannink/forecast-api/internal/domain"
)

// Engine regenerates projections after transit mutations. Both mutation
// operations are atomic from the caller's perspective: they work on a copy
// of the product and either return the fully updated copy or an error with
// no visible state change.
type Engine struct{}

// NewEngine returns a transit adjustment engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ApplyTransitUnits adds units to the product's in-transit quantity,
// recomputes total stock, and regenerates the full projection sequence.
// Zero or negative units are rejected, never silently accepted as a no-op.
func (e *Engine) ApplyTransitUnits(p domain.Product, units int, overrides map[int]domain.TransitOverride) (domain.Product, error) {
	if units <= 0 {
		return domain.Product{}, domain.NewValidationError("units", "must be a positive integer, got %d", units)
	}

	p.UnitsInTransit += float64(units)
	p.TotalStock = p.PhysicalStock + p.UnitsInTransit

	projections, err := Generate(&p, overrides)
	if err != nil {
		return domain.Product{}, err
	}
	p.Projections = projections

	return p, nil
}

// ApplyTransitDays sets the product's transit days, either globally
// (projectionIndex nil) or for one projection. The per-index form marks only
// that projection's TransitDaysApplied flag and re-derives its dates; flags
// on every other projection keep their prior value, carried through the
// overrides map that regeneration reads back onto the sequence.
func (e *Engine) ApplyTransitDays(p domain.Product, days int, projectionIndex *int, overrides map[int]domain.TransitOverride) (domain.Product, map[int]domain.TransitOverride, error) {
	if days <= 0 {
		return domain.Product{}, nil, domain.NewValidationError("days", "must be a positive integer, got %d", days)
	}
	if max := p.Config.MaxReplenishmentDays; max > 0 && days > max {
		return domain.Product{}, nil, domain.NewValidationError("days", "must not exceed %d, got %d", max, days)
	}

	updated := make(map[int]domain.TransitOverride, len(overrides)+1)
	for i, ov := range overrides {
		updated[i] = ov
	}

	if projectionIndex == nil {
		p.TransitDays = days
		p.Config.TransitDays = days
	} else {
		idx := *projectionIndex
		if idx < 0 || idx >= p.Config.HorizonMonths {
			return domain.Product{}, nil, domain.NewValidationError("projection_index", "out of range [0,%d): %d", p.Config.HorizonMonths, idx)
		}
		updated[idx] = domain.TransitOverride{
			ProductCode:     p.Code,
			ProjectionIndex: idx,
			TransitDays:     days,
			Applied:         true,
		}
	}

	projections, err := Generate(&p, updated)
	if err != nil {
		return domain.Product{}, nil, err
	}
	p.Projections = projections

	return p, updated, nil
}
