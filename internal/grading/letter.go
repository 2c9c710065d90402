package grading

// letterBand is one row of the descending-threshold letter table.
type letterBand struct {
	Floor  float64
	Letter string
	GPA    float64
}

// letterBands is evaluated top to bottom; the first floor at or below the
// percentage wins. FF is the fall-through.
var letterBands = []letterBand{
	{90, "AA", 4.0},
	{85, "BA", 3.5},
	{80, "BB", 3.0},
	{75, "CB", 2.5},
	{70, "CC", 2.0},
	{65, "DC", 1.5},
	{60, "DD", 1.0},
	{50, "FD", 0.5},
}

// Letter maps a final percentage onto the letter grade scale and its grade
// point value.
func Letter(percent float64) (string, float64) {
	for _, b := range letterBands {
		if percent >= b.Floor {
			return b.Letter, b.GPA
		}
	}
	return "FF", 0.0
}
