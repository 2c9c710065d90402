package grading

import (
	"math"
	"testing"
)

func TestPointsPerQuestion(t *testing.T) {
	if got := PointsPerQuestion(4); got != 25 {
		t.Fatalf("PointsPerQuestion(4)=%v, want 25", got)
	}
	if got := PointsPerQuestion(3); math.Abs(got-100.0/3.0) > 1e-12 {
		t.Fatalf("PointsPerQuestion(3)=%v", got)
	}
	if got := PointsPerQuestion(0); got != 0 {
		t.Fatalf("PointsPerQuestion(0)=%v, want 0", got)
	}
	if got := PointsPerQuestion(-1); got != 0 {
		t.Fatalf("PointsPerQuestion(-1)=%v, want 0", got)
	}
}

// A fully correct exam must total 100 within float tolerance, for any
// realistic question count.
func TestPointsSumToHundred(t *testing.T) {
	for n := 1; n <= 1000; n++ {
		per := PointsPerQuestion(n)
		var sum float64
		for i := 0; i < n; i++ {
			sum += per
		}
		if math.Abs(sum-100) > 1e-9 {
			t.Fatalf("n=%d: sum=%v, want 100", n, sum)
		}
	}
}
