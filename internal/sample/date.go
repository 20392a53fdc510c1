package sample

import (
	"math"
	"math/rand"
	"time"
)

const daysPerYear = 365.25

// UniformDate draws n dates uniformly over the enumerated day sequence
// between min and max, both inclusive. Dates are UTC midnights. min after
// max yields nil.
func UniformDate(rng *rand.Rand, min, max time.Time, n int) []time.Time {
	if n < 1 || max.Before(min) {
		return nil
	}
	days := int(max.Sub(min).Hours()/24) + 1
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = min.AddDate(0, 0, rng.Intn(days))
	}
	return out
}

// FixedDate repeats one date n times. It is the degenerate case of a date
// range whose upper bound is open-ended: the pair means one fixed date, not
// an interval.
func FixedDate(d time.Time, n int) []time.Time {
	if n < 1 {
		return nil
	}
	out := make([]time.Time, n)
	for i := range out {
		out[i] = d
	}
	return out
}

// GompertzDate draws n dates as origin plus a Gompertz-distributed offset in
// years, the hazard-style option for event dates. shape is the hazard's
// exponential slope per year, rate its level at the origin; draws are
// clipped to max when max is not the zero time.
//
// Inverse-CDF sampling: with U uniform on (0,1),
//
//	x = ln(1 − shape·ln(1−U)/rate) / shape
//
// which is the standard Gompertz quantile function.
func GompertzDate(rng *rand.Rand, origin time.Time, shape, rate float64, max time.Time, n int) []time.Time {
	if n < 1 {
		return nil
	}
	if shape <= 0 {
		shape = 0.1
	}
	if rate <= 0 {
		rate = 0.01
	}
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		u := rng.Float64()
		years := math.Log(1-shape*math.Log(1-u)/rate) / shape
		d := origin.AddDate(0, 0, int(years*daysPerYear))
		if !max.IsZero() && d.After(max) {
			d = max
		}
		out[i] = d
	}
	return out
}
