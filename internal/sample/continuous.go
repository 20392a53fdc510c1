package sample

import (
	"math"
	"math/rand"
)

// Uniform draws n values uniformly over [min, max). Equal bounds repeat the
// bound value.
func Uniform(rng *rand.Rand, min, max float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	out := make([]float64, n)
	span := max - min
	for i := 0; i < n; i++ {
		out[i] = min + rng.Float64()*span
	}
	return out
}

// Normal draws n values from N(mean, sd) and clips each draw into
// [min, max]. Clipping rather than rejection keeps the output length exact
// regardless of how the declared bounds cut the distribution. Infinite
// bounds clip nothing on that side.
func Normal(rng *rand.Rand, mean, sd, min, max float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if sd < 0 {
		sd = 0
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = clip(rng.NormFloat64()*sd+mean, min, max)
	}
	return out
}

// Exponential draws n values as min + Exp(rate) and clips only at the upper
// bound; the lower bound is the distribution's origin and needs no clip.
func Exponential(rng *rand.Rand, rate, min, max float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if rate <= 0 {
		rate = 1
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := min + rng.ExpFloat64()/rate
		if v > max {
			v = max
		}
		out[i] = v
	}
	return out
}

func clip(v, min, max float64) float64 {
	if !math.IsInf(min, -1) && v < min {
		return min
	}
	if !math.IsInf(max, 1) && v > max {
		return max
	}
	return v
}
