// internal/forecast/projection.go
package forecast

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plannink/forecast-api/internal/domain"
)

const dateLayout = "2006-01-02"

// weeksPerMonth is the fixed decomposition factor used for charting.
const weeksPerMonth = 4

// ParseMonthKey parses an "MM-YYYY" (or "M-YYYY") month key into the first
// day of that month.
func ParseMonthKey(key string) (time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 2)
	if len(parts) != 2 {
		return time.Time{}, domain.NewValidationError("month_key", "%q is not MM-YYYY", key)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, domain.NewValidationError("month_key", "%q has invalid month", key)
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 1 {
		return time.Time{}, domain.NewValidationError("month_key", "%q has invalid year", key)
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// MonthKey formats a date as the "MM-YYYY" key used throughout the history
// and projection records.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%02d-%d", int(t.Month()), t.Year())
}

// SortMonthKeys returns the history keys in chronological order. Keys are
// compared by parsed (year, month), never as raw strings: a lexicographic
// sort would interleave years. Unparseable keys sort last, in input order.
func SortMonthKeys(history map[string]float64) []string {
	keys := make([]string, 0, len(history))
	for k := range history {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ti, errI := ParseMonthKey(keys[i])
		tj, errJ := ParseMonthKey(keys[j])
		if errI != nil {
			return false
		}
		if errJ != nil {
			return true
		}
		return ti.Before(tj)
	})

	return keys
}

// HistoryValues returns the history quantities in chronological order.
func HistoryValues(history map[string]float64) []float64 {
	keys := SortMonthKeys(history)
	values := make([]float64, 0, len(keys))
	for _, k := range keys {
		values = append(values, history[k])
	}

	return values
}

// AddBusinessDays advances start by calendar days, skipping Saturdays and
// Sundays, until days business days have been added. A zero start falls
// back to the current time; this fallback is deliberate, matching how
// projection end dates are derived when no authoritative date is supplied.
func AddBusinessDays(start time.Time, days int) time.Time {
	if start.IsZero() {
		start = time.Now()
	}

	d := start
	for added := 0; added < days; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}

	return d
}

// Generate produces the ordered projection sequence for a product over its
// planning horizon. Projection 0 opens from the product's physical stock;
// each subsequent projection opens from the prior closing stock plus orders
// received in the prior period. Per-index transit overrides re-derive that
// projection's transit days, end date, and applied flag; everything else is
// recomputed from the same inputs and therefore unchanged.
func Generate(p *domain.Product, overrides map[int]domain.TransitOverride) ([]domain.Projection, error) {
	params, err := CalculateReorderParams(p.History, p.SafetyStock, p.Config)
	if err != nil {
		return nil, err
	}

	horizonStart := p.HorizonStart
	if horizonStart.IsZero() {
		horizonStart = time.Now()
	}
	horizonStart = time.Date(horizonStart.Year(), horizonStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	monthly := params.AverageConsumption
	if p.ProjectedConsumption > 0 {
		monthly = p.ProjectedConsumption
	}

	if warn := CheckOrderQuantities(p); warn != nil {
		log.Warn().Str("product", warn.ProductCode).Str("field", warn.Field).Msg(warn.Message)
	}

	projections := make([]domain.Projection, 0, p.Config.HorizonMonths)
	opening := p.PhysicalStock
	received := p.UnitsInTransit

	for i := 0; i < p.Config.HorizonMonths; i++ {
		start := horizonStart.AddDate(0, i, 0)

		transitDays := p.TransitDays
		applied := false
		if ov, ok := overrides[i]; ok && ov.Applied {
			transitDays = ov.TransitDays
			applied = true
		}

		var end time.Time
		if applied && transitDays > 0 {
			end = AddBusinessDays(start, transitDays)
		} else {
			end = start.AddDate(0, 1, -1)
		}

		closing := opening + received - monthly
		if closing < 0 {
			closing = 0
		}

		var pending map[string]float64
		if received > 0 {
			pending = map[string]float64{MonthKey(start): received}
		}

		proj := domain.Projection{
			Month:              MonthKey(start),
			OpeningStock:       opening,
			ProjectedStock:     closing,
			TransitDays:        transitDays,
			StartDate:          start,
			EndDate:            end,
			MonthlyConsumption: monthly,
			DailyConsumption:   params.DailyConsumption,
			SafetyStock:        params.SafetyStock,
			MinimumStock:       params.MinimumStock,
			ReorderPoint:       params.ReorderPoint,
			StockAlert:         closing < params.ReorderPoint,
			UnitsInTransit:     received,
			ReceivedOrders:     received,
			PendingOrders:      pending,
			TransitDaysApplied: applied,
		}

		if days, err := DaysOfCoverage(closing, params.DailyConsumption); err == nil {
			proj.CoverageDays = days
		}

		fillKeyDates(&proj, p.Config)
		ResolveOrder(&proj, p)

		projections = append(projections, proj)

		// The in-transit units arrive during projection 0 and are already
		// folded into its closing stock, which seeds the next opening.
		opening = closing
		received = 0
	}

	return projections, nil
}

// fillKeyDates derives the reposition, request, and arrival dates for a
// projection. The reposition date is when the opening stock decays to the
// reorder point at the daily consumption rate; an order placed then arrives
// a lead time of business days later.
func fillKeyDates(proj *domain.Projection, cfg domain.PlanningConfig) {
	if proj.DailyConsumption <= 0 {
		return
	}

	reposition := proj.StartDate
	if proj.OpeningStock > proj.ReorderPoint {
		days := int((proj.OpeningStock - proj.ReorderPoint) / proj.DailyConsumption)
		reposition = proj.StartDate.AddDate(0, 0, days)
	}

	lead := cfg.LeadTimeDays
	if proj.TransitDaysApplied && proj.TransitDays > 0 {
		lead = proj.TransitDays
	}
	arrival := AddBusinessDays(reposition, lead)

	proj.RepositionDate = reposition.Format(dateLayout)
	proj.RequestDate = reposition.Format(dateLayout)
	proj.ArrivalDate = arrival.Format(dateLayout)
}

// DeriveWeeklyFromMonthly decomposes each monthly projection into 4 weekly
// points for charting. Weekly consumption is a flat quarter of the monthly
// figure; the first week opens at the period start (projected stock plus the
// month's consumption) and each later week decays by one weekly consumption,
// floored at 0. This is a display approximation and can diverge from true
// daily decay.
func DeriveWeeklyFromMonthly(projections []domain.Projection) []domain.WeeklyPoint {
	points := make([]domain.WeeklyPoint, 0, len(projections)*weeksPerMonth)

	for _, proj := range projections {
		weekly := proj.MonthlyConsumption / weeksPerMonth
		stock := proj.ProjectedStock + proj.MonthlyConsumption

		for week := 1; week <= weeksPerMonth; week++ {
			if week > 1 {
				stock -= weekly
				if stock < 0 {
					stock = 0
				}
			}

			points = append(points, domain.WeeklyPoint{
				Label:       fmt.Sprintf("Week %d %s", week, proj.Month),
				Month:       proj.Month,
				Stock:       stock,
				Consumption: weekly,
			})
		}
	}

	return points
}
