package forecast

import (
	"math"
	"testing"
)

func TestStandardDeviation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "single value", values: []float64{42}, want: 0},
		{name: "uniform", values: []float64{5, 5, 5, 5}, want: 0},
		// mean 4, squared deviations 4+0+4 => sqrt(8/3)
		{name: "population formula", values: []float64{2, 4, 6}, want: math.Sqrt(8.0 / 3.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StandardDeviation(tt.values)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("StandardDeviation(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestVariabilityPercent_Guards(t *testing.T) {
	if got := VariabilityPercent(map[string]float64{"01-2024": 10}); got != 0 {
		t.Errorf("one data point should yield 0, got %v", got)
	}

	zeroMean := map[string]float64{"01-2024": 0, "02-2024": 0, "03-2024": 0}
	if got := VariabilityPercent(zeroMean); got != 0 {
		t.Errorf("zero mean should yield 0, got %v", got)
	}
}

func TestVariabilityPercent(t *testing.T) {
	history := map[string]float64{
		"01-2024": 100,
		"02-2024": 100,
		"03-2024": 100,
		"04-2024": 100,
	}
	if got := VariabilityPercent(history); got != 0 {
		t.Errorf("flat demand should have 0%% variability, got %v", got)
	}

	history["04-2024"] = 200
	got := VariabilityPercent(history)
	if got <= 0 || got >= 100 {
		t.Errorf("variable demand should yield a CV in (0,100), got %v", got)
	}
}

func TestStockoutRiskPercent_InsufficientHistory(t *testing.T) {
	history := map[string]float64{"01-2024": 100, "02-2024": 120}
	if got := StockoutRiskPercent(50, history, 15); got != 0 {
		t.Errorf("fewer than 3 history points should yield 0, got %v", got)
	}
}

func TestStockoutRiskPercent_Bounds(t *testing.T) {
	history := map[string]float64{
		"01-2024": 200,
		"02-2024": 250,
		"03-2024": 300,
		"04-2024": 280,
		"05-2024": 220,
	}

	for _, stock := range []float64{0, 10, 100, 250, 1000, 10000} {
		for _, lead := range []int{1, 15, 30, 90} {
			got := StockoutRiskPercent(stock, history, lead)
			if got < 0 || got > 100 {
				t.Errorf("StockoutRiskPercent(stock=%v, lead=%d) = %v, outside [0,100]", stock, lead, got)
			}
		}
	}
}

func TestStockoutRiskPercent_ZeroDeviationClamps(t *testing.T) {
	flat := map[string]float64{"01-2024": 300, "02-2024": 300, "03-2024": 300}

	// Expected demand over 30 days is 300; stock covering it carries no risk.
	if got := StockoutRiskPercent(300, flat, 30); got != 0 {
		t.Errorf("zero deviation with covering stock should clamp to 0, got %v", got)
	}

	if got := StockoutRiskPercent(100, flat, 30); got != 100 {
		t.Errorf("zero deviation with insufficient stock should clamp to 100, got %v", got)
	}
}

func TestNormalCDF(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{1.96, 0.975},
		{-1.96, 0.025},
	}

	for _, tt := range tests {
		got := normalCDF(tt.z)
		if math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("normalCDF(%v) = %v, want ~%v", tt.z, got, tt.want)
		}
	}
}
