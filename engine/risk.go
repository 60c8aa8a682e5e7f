package engine

import "math"

const (
	// stopDistanceFloor is the minimum stop distance used for sizing, which
	// prevents division blow-ups on near-zero stop distances.
	stopDistanceFloor = 0.25
	// riskPrecision is the decimal precision for sizing results.
	riskPrecision = 2
)

// roundTo rounds the provided value to the given decimal precision.
func roundTo(value float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(value*factor) / factor
}

// SizeAndRisk computes the position size and monetary risk for the provided
// entry and stop given the account balance and risk percentage. Degenerate
// inputs are clamped rather than erroring: a negative risk percentage risks
// nothing and a near-zero stop distance is floored.
func SizeAndRisk(entry float64, stop float64, balance float64, riskPercent float64) (float64, float64) {
	if balance < 0 {
		balance = 0
	}
	if riskPercent < 0 {
		riskPercent = 0
	}

	riskAmount := balance * riskPercent / 100
	distance := math.Max(math.Abs(entry-stop), stopDistanceFloor)
	size := riskAmount / distance

	return roundTo(size, riskPrecision), roundTo(riskAmount, riskPrecision)
}
