package core

import (
	"sort"
)

// Distribution is a discrete probability distribution built from non-negative
// weights, supporting O(log n) inverse-CDF sampling. Used for light selection
// and for resampling Markov chain seeds proportionally to luminance.
type Distribution struct {
	pdf []float64
	cdf []float64
	sum float64
}

// NewDistribution builds a distribution from the given weights.
// Weights must be non-negative; a zero total weight yields a uniform
// distribution so that sampling remains well-defined.
func NewDistribution(weights []float64) *Distribution {
	n := len(weights)
	d := &Distribution{
		pdf: make([]float64, n),
		cdf: make([]float64, n),
	}
	if n == 0 {
		return d
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	d.sum = total

	if total == 0 {
		uniform := 1.0 / float64(n)
		running := 0.0
		for i := range weights {
			d.pdf[i] = uniform
			running += uniform
			d.cdf[i] = running
		}
	} else {
		running := 0.0
		for i, w := range weights {
			d.pdf[i] = w / total
			running += w
			d.cdf[i] = running / total
		}
	}
	// Guard against accumulated rounding in the final bucket
	d.cdf[n-1] = 1.0
	return d
}

// Sample maps a uniform value in [0, 1) to an index drawn with probability
// proportional to its weight, returning the index and its probability
func (d *Distribution) Sample(u float64) (int, float64) {
	if len(d.cdf) == 0 {
		return -1, 0
	}
	i := sort.SearchFloat64s(d.cdf, u)
	if i >= len(d.cdf) {
		i = len(d.cdf) - 1
	}
	// SearchFloat64s finds the first cdf >= u; advance past zero-width buckets
	for i < len(d.cdf)-1 && d.pdf[i] == 0 {
		i++
	}
	return i, d.pdf[i]
}

// PDF returns the probability of index i
func (d *Distribution) PDF(i int) float64 {
	if i < 0 || i >= len(d.pdf) {
		return 0
	}
	return d.pdf[i]
}

// Sum returns the total of the original weights
func (d *Distribution) Sum() float64 {
	return d.sum
}

// Count returns the number of entries
func (d *Distribution) Count() int {
	return len(d.pdf)
}
