package common

import "golang.org/x/exp/constraints"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NextCapacity returns the smallest power-of-two growth of current that holds need, starting at minimum.
//
// Parameters:
//   - current: the current capacity (may be zero)
//   - need: the required capacity
//   - minimum: the capacity used when current is zero
//
// Returns:
//   - T: the new capacity, at least need
func NextCapacity[T constraints.Integer](current, need, minimum T) T {
	c := max(current, minimum, 1)
	for c < need {
		c *= 2
	}
	return c
}
