package gradebook

import (
	"math"
	"sort"
)

// Stats holds standard descriptive statistics over one grade item.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Describe computes count, mean, median, min, max and population standard
// deviation over a set of points. An empty set yields all zeros.
func Describe(points []float64) Stats {
	n := len(points)
	if n == 0 {
		return Stats{}
	}

	sorted := make([]float64, n)
	copy(sorted, points)
	sort.Float64s(sorted)

	var sum float64
	for _, p := range sorted {
		sum += p
	}
	mean := sum / float64(n)

	var variance float64
	for _, p := range sorted {
		d := p - mean
		variance += d * d
	}
	variance /= float64(n)

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Stats{
		Count:  n,
		Mean:   mean,
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
		StdDev: math.Sqrt(variance),
	}
}
