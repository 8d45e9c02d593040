package forecast

import (
	"errors"
	"math"
	"testing"

	"github.com/plannink/forecast-api/internal/domain"
)

func testConfig() domain.PlanningConfig {
	return domain.PlanningConfig{
		SafetyStockDays:      15,
		ReorderPointDays:     44,
		StockAlarmDays:       7,
		LeadTimeDays:         15,
		MaxReplenishmentDays: 30,
		WorkingDaysPerMonth:  22,
		HorizonMonths:        6,
		ModelVersion:         "v2",
	}
}

func TestCalculateReorderParams(t *testing.T) {
	history := map[string]float64{
		"01-2024": 200,
		"02-2024": 250,
		"03-2024": 300,
		"04-2024": 280,
		"05-2024": 220,
	}

	params, err := CalculateReorderParams(history, 100, testConfig())
	if err != nil {
		t.Fatalf("CalculateReorderParams failed: %v", err)
	}

	if params.AverageConsumption != 250 {
		t.Errorf("average consumption = %v, want 250", params.AverageConsumption)
	}

	wantDaily := 250.0 / 22
	if math.Abs(params.DailyConsumption-wantDaily) > 1e-9 {
		t.Errorf("daily consumption = %v, want %v", params.DailyConsumption, wantDaily)
	}

	if params.MinimumStock != 350 {
		t.Errorf("minimum stock = %v, want 350 (average + safety)", params.MinimumStock)
	}

	wantReorder := wantDaily * 44
	if math.Abs(params.ReorderPoint-wantReorder) > 1e-9 {
		t.Errorf("reorder point = %v, want %v", params.ReorderPoint, wantReorder)
	}

	// Boundary from the reference scenario: a stock of 500 sits at the
	// reorder point and must resolve to safe, not warning.
	if status := domain.ClassifyStock(500, 100, wantReorder); status != domain.StatusSafe {
		t.Errorf("stock 500 with reorder point %v classified %s, want safe", wantReorder, status)
	}
}

func TestCalculateReorderParams_NegativeSafetyStock(t *testing.T) {
	_, err := CalculateReorderParams(map[string]float64{"01-2024": 10}, -1, testConfig())

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for negative safety stock, got %v", err)
	}
}

func TestDaysOfCoverage(t *testing.T) {
	days, err := DaysOfCoverage(500, 11.36)
	if err != nil {
		t.Fatalf("DaysOfCoverage failed: %v", err)
	}
	if days != 44 {
		t.Errorf("days of coverage = %d, want 44", days)
	}

	_, err = DaysOfCoverage(500, 0)
	var gerr *domain.DivisionGuardError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected DivisionGuardError for zero daily consumption, got %v", err)
	}
}

func TestClassifyStock_Cascade(t *testing.T) {
	const (
		safety  = 100.0
		reorder = 300.0
	)

	tests := []struct {
		name  string
		stock float64
		want  domain.StockStatus
	}{
		{name: "below safety", stock: 99, want: domain.StatusDanger},
		{name: "at safety boundary", stock: 100, want: domain.StatusWarning},
		{name: "between thresholds", stock: 200, want: domain.StatusWarning},
		{name: "at reorder boundary", stock: 300, want: domain.StatusSafe},
		{name: "above reorder", stock: 500, want: domain.StatusSafe},
		{name: "zero stock", stock: 0, want: domain.StatusDanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.ClassifyStock(tt.stock, safety, reorder); got != tt.want {
				t.Errorf("ClassifyStock(%v) = %s, want %s", tt.stock, got, tt.want)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := testConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.WorkingDaysPerMonth = 0
	var verr *domain.ValidationError
	if err := ValidateConfig(cfg); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for zero working days, got %v", err)
	}

	cfg = testConfig()
	cfg.ReorderPointDays = -3
	if err := ValidateConfig(cfg); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for negative reorder days, got %v", err)
	}
}
