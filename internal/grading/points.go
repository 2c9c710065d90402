package grading

// PointsPerQuestion returns the dynamic equal weighting of one question in
// an exam with the given question count: the 100 exam points are split
// evenly, so the per-question values always sum back to exactly 100.
//
// This is the single source of point values in the codebase. Both grading
// and manual-grade bound checking must go through it so the two call sites
// cannot drift apart.
func PointsPerQuestion(questionCount int) float64 {
	if questionCount <= 0 {
		return 0
	}
	return 100 / float64(questionCount)
}
