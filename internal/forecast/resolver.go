// internal/forecast/resolver.go
package forecast

import (
	"math"

	"github.com/plannink/forecast-api/internal/domain"
)

// ResolveOrder annotates a projection with its deficit, order quantities,
// and required action. The per-projection deficit is the shortfall against
// the reorder point; a projection at or above its reorder point carries the
// product-level current deficit instead. The two deficit notions are
// distinct fields upstream and are never conflated.
func ResolveOrder(proj *domain.Projection, p *domain.Product) {
	if proj.ProjectedStock < proj.ReorderPoint {
		proj.Deficit = proj.ReorderPoint - proj.ProjectedStock
	} else {
		proj.Deficit = p.Deficit
	}

	// Order quantities are an input contract: they arrive computed by the
	// upstream service and are validated once per product, not re-derived.
	proj.UnitsToOrder = p.UnitsToOrder
	proj.BoxesToOrder = p.BoxesToOrder

	status := domain.ClassifyStock(proj.ProjectedStock, proj.SafetyStock, proj.ReorderPoint)
	proj.RequiredAction = string(domain.ActionFor(status))
}

// CheckOrderQuantities verifies the invariant boxesToOrder ==
// ceil(unitsToOrder / unitsPerBox) on the externally supplied order fields.
// A mismatch is reported as a DataIntegrityWarning; the supplied values are
// kept as-is rather than silently recomputed.
func CheckOrderQuantities(p *domain.Product) *domain.DataIntegrityWarning {
	if p.UnitsPerBox <= 0 || p.UnitsToOrder <= 0 {
		return nil
	}

	expected := int(math.Ceil(p.UnitsToOrder / float64(p.UnitsPerBox)))
	if p.BoxesToOrder == expected {
		return nil
	}

	return &domain.DataIntegrityWarning{
		ProductCode: p.Code,
		Field:       "CAJAS_A_PEDIR",
		Message:     "boxes to order does not match ceil(units/box)",
	}
}

// ProductStatus classifies the product's current physical position.
func ProductStatus(p *domain.Product) domain.StockStatus {
	return domain.ClassifyStock(p.TotalStock, p.SafetyStock, p.ReorderPoint)
}
