// internal/forecast/params.go
package forecast

import (
	"math"

	"github.com/plannink/forecast-api/internal/domain"
)

// ReorderParams holds the derived replenishment thresholds for a product.
type ReorderParams struct {
	AverageConsumption float64
	DailyConsumption   float64
	SafetyStock        float64
	MinimumStock       float64
	ReorderPoint       float64
}

// CalculateReorderParams derives the replenishment parameters from a
// consumption history and configuration. safetyStock is an externally
// supplied buffer quantity, never derived here.
func CalculateReorderParams(history map[string]float64, safetyStock float64, cfg domain.PlanningConfig) (ReorderParams, error) {
	if err := ValidateConfig(cfg); err != nil {
		return ReorderParams{}, err
	}
	if safetyStock < 0 {
		return ReorderParams{}, domain.NewValidationError("safety_stock", "must be >= 0, got %v", safetyStock)
	}

	values := make([]float64, 0, len(history))
	for _, v := range history {
		values = append(values, v)
	}

	avg := Mean(values)
	daily := avg / float64(cfg.WorkingDaysPerMonth)

	return ReorderParams{
		AverageConsumption: avg,
		DailyConsumption:   daily,
		SafetyStock:        safetyStock,
		MinimumStock:       avg + safetyStock,
		ReorderPoint:       daily * float64(cfg.ReorderPointDays),
	}, nil
}

// DaysOfCoverage returns how many days the current stock lasts at the given
// daily consumption, rounded to the nearest day. Zero daily consumption has
// no defined coverage and returns a DivisionGuardError; callers substitute
// their own sentinel.
func DaysOfCoverage(currentStock, dailyConsumption float64) (int, error) {
	if dailyConsumption == 0 {
		return 0, &domain.DivisionGuardError{Operation: "days of coverage"}
	}

	return int(math.Round(currentStock / dailyConsumption)), nil
}

// ValidateConfig checks the positive-day-count invariant on every day field
// of the planning configuration.
func ValidateConfig(cfg domain.PlanningConfig) error {
	checks := []struct {
		name  string
		value int
	}{
		{"safety_stock_days", cfg.SafetyStockDays},
		{"reorder_point_days", cfg.ReorderPointDays},
		{"stock_alarm_days", cfg.StockAlarmDays},
		{"lead_time_days", cfg.LeadTimeDays},
		{"max_replenishment_days", cfg.MaxReplenishmentDays},
		{"working_days_per_month", cfg.WorkingDaysPerMonth},
		{"horizon_months", cfg.HorizonMonths},
	}

	for _, c := range checks {
		if c.value <= 0 {
			return domain.NewValidationError(c.name, "must be a positive integer, got %d", c.value)
		}
	}

	return nil
}
