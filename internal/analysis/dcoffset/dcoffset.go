// Package dcoffset measures and removes the constant component of a sample window.
package dcoffset

import "math"

// FloorDb is reported for a zero offset, where the log would be -Inf.
const FloorDb = -120.0

// Measure returns the arithmetic mean of samples. An empty window has no offset.
func Measure(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, sample := range samples {
		sum += sample
	}

	return sum / float64(len(samples))
}

// Remove returns a copy of samples centered around zero, along with the mean that was subtracted.
// The input is left untouched.
func Remove(samples []float64) ([]float64, float64) {
	mean := Measure(samples)
	centered := make([]float64, len(samples))

	for i, sample := range samples {
		centered[i] = sample - mean
	}

	return centered, mean
}

// Db expresses an offset relative to full scale.
func Db(offset float64) float64 {
	db := 20 * math.Log10(math.Abs(offset))
	if math.IsInf(db, -1) || math.IsNaN(db) {
		return FloorDb
	}

	return db
}
