package grading

import "math"

// Aggregate reduces per-question results to the attempt-level score. The sums
// use the full-precision earned/possible values, not the display-rounded
// per-question Score, so rounding error never compounds across questions.
// Manual-grading and unknown-question results contribute zero to both totals.
func Aggregate(results []Result) AttemptScore {
	var earned, possible float64
	for _, r := range results {
		earned += r.EarnedPoints
		possible += r.PossiblePoints
	}

	percent := 0
	if possible > 0 {
		percent = int(math.Round(earned / possible * 100))
	}

	return AttemptScore{
		EarnedPoints:      earned,
		PossiblePoints:    possible,
		FinalScorePercent: percent,
		Passed:            percent >= PassThresholdPercent,
	}
}
