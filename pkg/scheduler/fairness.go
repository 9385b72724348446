package scheduler

import "math"

// FairnessScore returns a percentage (0-100) representing how evenly
// appearances are spread over people. 100% is perfectly fair (Standard Deviation = 0).
func FairnessScore(counts map[string]int, people []string) float64 {
	if len(people) == 0 {
		return 100.0
	}

	var sum float64
	for _, p := range people {
		sum += float64(counts[p])
	}

	if sum == 0 {
		return 100.0 // nobody assigned is trivially fair
	}

	mean := sum / float64(len(people))

	var varianceSum float64
	for _, p := range people {
		diff := float64(counts[p]) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(people)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
