package gradebook

import (
	"math"
	"testing"
)

func TestDescribe(t *testing.T) {
	s := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Count != 8 {
		t.Fatalf("count=%d, want 8", s.Count)
	}
	if s.Mean != 5 {
		t.Fatalf("mean=%v, want 5", s.Mean)
	}
	if s.Median != 4.5 {
		t.Fatalf("median=%v, want 4.5", s.Median)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Fatalf("min/max=%v/%v, want 2/9", s.Min, s.Max)
	}
	// Population standard deviation of this set is exactly 2.
	if math.Abs(s.StdDev-2) > 1e-9 {
		t.Fatalf("stddev=%v, want 2", s.StdDev)
	}
}

func TestDescribeOddMedian(t *testing.T) {
	s := Describe([]float64{9, 1, 5})
	if s.Median != 5 {
		t.Fatalf("median=%v, want 5", s.Median)
	}
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe(nil)
	if s != (Stats{}) {
		t.Fatalf("empty input: got %+v, want zero stats", s)
	}
}

func TestDescribeDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Describe(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Fatalf("input mutated: %v", in)
	}
}
