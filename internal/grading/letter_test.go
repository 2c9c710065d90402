package grading

import "testing"

func TestLetter(t *testing.T) {
	cases := []struct {
		percent float64
		letter  string
		gpa     float64
	}{
		{100, "AA", 4.0},
		{90, "AA", 4.0},
		{89.99, "BA", 3.5},
		{85, "BA", 3.5},
		{80, "BB", 3.0},
		{75, "CB", 2.5},
		{70, "CC", 2.0},
		{65, "DC", 1.5},
		{60, "DD", 1.0},
		{59.99, "FD", 0.5},
		{50, "FD", 0.5},
		{49.99, "FF", 0.0},
		{0, "FF", 0.0},
	}
	for _, c := range cases {
		letter, gpa := Letter(c.percent)
		if letter != c.letter || gpa != c.gpa {
			t.Fatalf("Letter(%v)=(%s,%v), want (%s,%v)", c.percent, letter, gpa, c.letter, c.gpa)
		}
	}
}
