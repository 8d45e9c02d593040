package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plannink/forecast-api/internal/domain"
)

// IngestRepository writes ingested spreadsheet records. It works on a plain
// *sql.DB so the ingest CLI can drive it over the pgx stdlib driver.
type IngestRepository struct {
	db *sql.DB
}

func NewIngestRepository(db *sql.DB) *IngestRepository {
	return &IngestRepository{db: db}
}

func (r *IngestRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (code, description, physical_stock, units_in_transit,
			units_per_box, safety_stock, deficit, boxes_to_order, units_to_order,
			replenishment_frequency, transit_days, horizon_start,
			projected_consumption, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (code)
		DO UPDATE SET
			description = EXCLUDED.description,
			physical_stock = EXCLUDED.physical_stock,
			units_in_transit = EXCLUDED.units_in_transit,
			units_per_box = EXCLUDED.units_per_box,
			safety_stock = EXCLUDED.safety_stock,
			deficit = EXCLUDED.deficit,
			boxes_to_order = EXCLUDED.boxes_to_order,
			units_to_order = EXCLUDED.units_to_order,
			replenishment_frequency = EXCLUDED.replenishment_frequency,
			transit_days = EXCLUDED.transit_days,
			horizon_start = EXCLUDED.horizon_start,
			projected_consumption = EXCLUDED.projected_consumption,
			updated_at = NOW()
	`

	horizon := sql.NullTime{}
	if !p.HorizonStart.IsZero() {
		horizon = sql.NullTime{Time: p.HorizonStart, Valid: true}
	}

	status := domain.ClassifyStock(p.PhysicalStock+p.UnitsInTransit, p.SafetyStock, p.ReorderPoint)

	_, err := r.db.ExecContext(ctx, query,
		p.Code,
		p.Description,
		p.PhysicalStock,
		p.UnitsInTransit,
		p.UnitsPerBox,
		p.SafetyStock,
		p.Deficit,
		p.BoxesToOrder,
		p.UnitsToOrder,
		p.ReplenishmentFrequency,
		p.TransitDays,
		horizon,
		p.ProjectedConsumption,
		string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.Code, err)
	}

	return nil
}

func (r *IngestRepository) UpsertHistory(ctx context.Context, code, monthKey string, quantity float64) error {
	query := `
		INSERT INTO consumption_history (product_code, month_key, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_code, month_key)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, code, monthKey, quantity); err != nil {
		return fmt.Errorf("failed to upsert history %s/%s: %w", code, monthKey, err)
	}

	return nil
}
