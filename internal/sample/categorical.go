// Package sample draws the raw values for the valid share of a column. Every
// function takes the random source it should use; the package owns no global
// random state, so one seeded source per build gives reproducible datasets.
package sample

import "math/rand"

// WeightedIndex draws one index with probability proportional to weights[i].
// A non-positive total falls back to a uniform draw, so an all-zero weight
// vector still yields values rather than an infinite loop or a panic.
func WeightedIndex(rng *rand.Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	x := rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Categorical draws n codes with replacement, each code chosen with
// probability proportional to its weight. codes and weights run in parallel;
// n below 1 or empty codes yield nil.
func Categorical(rng *rand.Rand, codes []string, weights []float64, n int) []string {
	if n < 1 || len(codes) == 0 {
		return nil
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = codes[WeightedIndex(rng, weights)]
	}
	return out
}

// IntSet draws n values uniformly from an enumerated integer set.
func IntSet(rng *rand.Rand, set []int, n int) []int {
	if n < 1 || len(set) == 0 {
		return nil
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = set[rng.Intn(len(set))]
	}
	return out
}
