// internal/forecast/stats.go
package forecast

import "math"

// Zelen & Severo polynomial approximation of the standard normal CDF.
const (
	cdfT  = 0.2316419
	cdfB1 = 0.319381530
	cdfB2 = -0.356563782
	cdfB3 = 1.781477937
	cdfB4 = -1.821255978
	cdfB5 = 1.330274429
)

// Mean returns the arithmetic mean of values, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// StandardDeviation returns the population standard deviation of values,
// 0 for empty input.
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(len(values)))
}

// VariabilityPercent returns the coefficient of variation of the history
// values as a percentage. Fewer than 3 data points or a zero mean yield 0:
// the statistic is not meaningful at that sample size and the zero-mean
// case would divide by zero.
func VariabilityPercent(history map[string]float64) float64 {
	if len(history) < 3 {
		return 0
	}

	values := make([]float64, 0, len(history))
	for _, v := range history {
		values = append(values, v)
	}

	mean := Mean(values)
	if mean == 0 {
		return 0
	}

	return StandardDeviation(values) / mean * 100
}

// normalCDF approximates the standard normal cumulative distribution.
func normalCDF(z float64) float64 {
	if z < 0 {
		return 1 - normalCDF(-z)
	}

	t := 1 / (1 + cdfT*z)
	poly := t * (cdfB1 + t*(cdfB2+t*(cdfB3+t*(cdfB4+t*cdfB5))))
	pdf := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)

	return 1 - pdf*poly
}

// StockoutRiskPercent estimates the probability (0-100) that currentStock
// depletes before replenishment arrives, using a normal approximation of
// demand over the lead time. Fewer than 3 history points yield 0. With zero
// standard deviation the z-score degenerates, so the result is clamped to
// 0% when stock covers expected lead-time demand and 100% when it does not.
func StockoutRiskPercent(currentStock float64, history map[string]float64, leadTimeDays int) float64 {
	if len(history) < 3 || leadTimeDays <= 0 {
		return 0
	}

	values := make([]float64, 0, len(history))
	for _, v := range history {
		values = append(values, v)
	}

	mean := Mean(values)
	std := StandardDeviation(values)
	leadMonths := float64(leadTimeDays) / 30
	expectedDemand := mean * leadMonths

	if std == 0 {
		if currentStock >= expectedDemand {
			return 0
		}
		return 100
	}

	z := (currentStock - expectedDemand) / (std * math.Sqrt(leadMonths))

	var risk float64
	if z < 0 {
		risk = (1 - normalCDF(z)) * 100
	} else {
		risk = normalCDF(z) * 100
	}

	return math.Max(0, math.Min(100, risk))
}
