// internal/repository/product_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/plannink/forecast-api/internal/domain"
)

// ErrProductNotFound is returned when a product code has no record.
var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	GetProduct(ctx context.Context, code string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	ListCodes(ctx context.Context) ([]string, error)
	SaveDerived(ctx context.Context, p *domain.Product) error
	SaveTransitState(ctx context.Context, code string, unitsInTransit float64, transitDays int) error
	GetHistory(ctx context.Context, code string) (map[string]float64, error)
	GetOverrides(ctx context.Context, code string) (map[int]domain.TransitOverride, error)
	SaveOverride(ctx context.Context, override domain.TransitOverride) error
	GetStatusSummary(ctx context.Context) ([]domain.StatusSummary, error)
}

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

type productRow struct {
	Code                   string  `db:"code"`
	Description            string  `db:"description"`
	PhysicalStock          float64 `db:"physical_stock"`
	UnitsInTransit         float64 `db:"units_in_transit"`
	UnitsPerBox            int     `db:"units_per_box"`
	SafetyStock            float64 `db:"safety_stock"`
	Deficit                float64 `db:"deficit"`
	BoxesToOrder           int     `db:"boxes_to_order"`
	UnitsToOrder           float64 `db:"units_to_order"`
	ReplenishmentFrequency int     `db:"replenishment_frequency"`
	TransitDays            int     `db:"transit_days"`
	HorizonStart           sql.NullTime `db:"horizon_start"`
	ProjectedConsumption   float64 `db:"projected_consumption"`
}

func (row productRow) toDomain() domain.Product {
	p := domain.Product{
		Code:                   row.Code,
		Description:            row.Description,
		PhysicalStock:          row.PhysicalStock,
		UnitsInTransit:         row.UnitsInTransit,
		TotalStock:             row.PhysicalStock + row.UnitsInTransit,
		UnitsPerBox:            row.UnitsPerBox,
		SafetyStock:            row.SafetyStock,
		Deficit:                row.Deficit,
		BoxesToOrder:           row.BoxesToOrder,
		UnitsToOrder:           row.UnitsToOrder,
		ReplenishmentFrequency: row.ReplenishmentFrequency,
		TransitDays:            row.TransitDays,
		ProjectedConsumption:   row.ProjectedConsumption,
	}
	if row.HorizonStart.Valid {
		p.HorizonStart = row.HorizonStart.Time
	}
	return p
}

const productColumns = `
        code, description, physical_stock, units_in_transit, units_per_box,
        safety_stock, deficit, boxes_to_order, units_to_order,
        replenishment_frequency, transit_days, horizon_start,
        projected_consumption
`

func (r *productRepository) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1`

	var row productRow
	if err := r.db.GetContext(ctx, &row, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, code)
		}
		return nil, fmt.Errorf("error getting product %s: %w", code, err)
	}

	p := row.toDomain()

	history, err := r.GetHistory(ctx, code)
	if err != nil {
		return nil, err
	}
	p.History = history

	return &p, nil
}

func (r *productRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if len(filter.Codes) > 0 {
		conditions = append(conditions, fmt.Sprintf("code = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.Codes))
		argCounter++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, filter.Status)
		argCounter++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR description ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		whereClause := " AND " + strings.Join(conditions, " AND ")
		query += whereClause
		countQuery += whereClause
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting products: %w", err)
	}

	query += " ORDER BY code"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.PageSize, offset)
	}

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error listing products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}

	return products, total, nil
}

func (r *productRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, `SELECT code FROM products ORDER BY code`); err != nil {
		return nil, fmt.Errorf("error listing product codes: %w", err)
	}
	return codes, nil
}

// SaveDerived persists the computed replenishment parameters and status so
// list queries and the status summary never recompute them in SQL.
func (r *productRepository) SaveDerived(ctx context.Context, p *domain.Product) error {
	query := `
        UPDATE products SET
            avg_consumption = $2,
            daily_consumption = $3,
            minimum_stock = $4,
            reorder_point = $5,
            days_of_coverage = $6,
            deficit = $7,
            reposition_date = $8,
            status = $9,
            updated_at = NOW()
        WHERE code = $1
    `

	status := domain.ClassifyStock(p.TotalStock, p.SafetyStock, p.ReorderPoint)

	res, err := r.db.ExecContext(ctx, query,
		p.Code,
		p.AvgConsumption,
		p.DailyConsumption,
		p.MinimumStock,
		p.ReorderPoint,
		p.DaysOfCoverage,
		p.Deficit,
		p.RepositionDate,
		string(status),
	)
	if err != nil {
		return fmt.Errorf("error saving derived fields for %s: %w", p.Code, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, p.Code)
	}

	return nil
}

func (r *productRepository) SaveTransitState(ctx context.Context, code string, unitsInTransit float64, transitDays int) error {
	query := `
        UPDATE products SET
            units_in_transit = $2,
            transit_days = $3,
            updated_at = NOW()
        WHERE code = $1
    `

	res, err := r.db.ExecContext(ctx, query, code, unitsInTransit, transitDays)
	if err != nil {
		return fmt.Errorf("error saving transit state for %s: %w", code, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, code)
	}

	return nil
}

func (r *productRepository) GetHistory(ctx context.Context, code string) (map[string]float64, error) {
	query := `
        SELECT month_key, quantity
        FROM consumption_history
        WHERE product_code = $1
    `

	rows, err := r.db.QueryxContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("error getting history for %s: %w", code, err)
	}
	defer rows.Close()

	history := make(map[string]float64)
	for rows.Next() {
		var monthKey string
		var quantity float64
		if err := rows.Scan(&monthKey, &quantity); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		history[monthKey] = quantity
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return history, nil
}

func (r *productRepository) GetOverrides(ctx context.Context, code string) (map[int]domain.TransitOverride, error) {
	query := `
        SELECT product_code, projection_index, transit_days, applied
        FROM transit_overrides
        WHERE product_code = $1
    `

	var overrides []domain.TransitOverride
	if err := r.db.SelectContext(ctx, &overrides, query, code); err != nil {
		return nil, fmt.Errorf("error getting transit overrides for %s: %w", code, err)
	}

	result := make(map[int]domain.TransitOverride, len(overrides))
	for _, ov := range overrides {
		result[ov.ProjectionIndex] = ov
	}

	return result, nil
}

func (r *productRepository) SaveOverride(ctx context.Context, override domain.TransitOverride) error {
	query := `
        INSERT INTO transit_overrides (product_code, projection_index, transit_days, applied, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (product_code, projection_index)
        DO UPDATE SET
            transit_days = EXCLUDED.transit_days,
            applied = EXCLUDED.applied,
            updated_at = NOW()
    `

	_, err := r.db.ExecContext(ctx, query,
		override.ProductCode,
		override.ProjectionIndex,
		override.TransitDays,
		override.Applied,
	)
	if err != nil {
		return fmt.Errorf("error saving transit override: %w", err)
	}

	return nil
}

func (r *productRepository) GetStatusSummary(ctx context.Context) ([]domain.StatusSummary, error) {
	query := `
        SELECT status, COUNT(*) as count
        FROM products
        GROUP BY status
    `

	var summaries []domain.StatusSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("error getting status summary: %w", err)
	}

	return summaries, nil
}
