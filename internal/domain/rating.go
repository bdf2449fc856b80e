package domain

import "math"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
	MaxStars      = 5
)

// ClampRating bounds r to [MinRating, MaxRating].
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// CoerceRating is used on the submission path: a missing (zero) rating
// becomes DefaultRating, anything else is clamped.
func CoerceRating(r int) int {
	if r == 0 {
		return DefaultRating
	}
	return ClampRating(r)
}

// RatingFromFloat rounds a wire rating and clamps it.
func RatingFromFloat(f float64) int {
	if math.IsNaN(f) {
		return MinRating
	}
	if f > MaxRating {
		return MaxRating
	}
	if f < MinRating {
		return MinRating
	}
	return ClampRating(int(math.Round(f)))
}

// Stars is the number of stars to render for r, always in [0, MaxStars].
func Stars(r float64) int {
	if math.IsNaN(r) || r <= 0 {
		return 0
	}
	if r >= MaxStars {
		return MaxStars
	}
	return int(math.Round(r))
}
