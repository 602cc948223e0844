package stylize

import "golang.org/x/exp/constraints"

// min returns the smallest value of the provided parameters.
func min[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v < acc {
			acc = v
		}
	}
	return acc
}

// max returns the biggest value of the provided parameters.
func max[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v > acc {
			acc = v
		}
	}
	return acc
}

// clamp constrains the value between the lower and upper limit.
func clamp[T constraints.Ordered](v, lo, hi T) T {
	return max(lo, min(hi, v))
}
