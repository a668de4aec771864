// Package floatutils provides utilities for working with floats
package floatutils

import "math"

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// Mean returns the arithmetic mean of a list of floats, or NaN if the
// list is empty
func Mean(floats ...float64) float64 {
	if len(floats) == 0 {
		return math.NaN()
	}

	sum := 0.0
	for _, val := range floats {
		sum += val
	}
	return sum / float64(len(floats))
}
