// Package scoring converts estimated one-rep maxes into normalized scores and
// rank tiers. The analytics pipeline consumes these through function values,
// so the whole policy can be swapped without touching the pipeline.
package scoring

import "math"

// ScoreResult holds a normalized score on a 0..1000 scale.
type ScoreResult struct {
	Total float64 `json:"total"`
}

// ScoreFunc scores an e1RM for one exercise, normalized by bodyweight.
type ScoreFunc func(exerciseID string, e1rmKg, bodyweightKg float64) ScoreResult

// ScoreFromE1RM is the default score engine: deterministic, bodyweight
// relative, saturating toward 1000. A missing bodyweight still scores, with a
// flat penalty instead of an error.
func ScoreFromE1RM(exerciseID string, e1rmKg, bodyweightKg float64) ScoreResult {
	if e1rmKg <= 0 {
		return ScoreResult{}
	}

	penalty := 1.0
	relative := 0.0
	if bodyweightKg > 0 {
		relative = e1rmKg / bodyweightKg
	} else {
		// No bodyweight on file: assume a nominal 100kg lifter and dock 10%.
		relative = e1rmKg / 100
		penalty = 0.9
	}

	// Saturating map: rel 1.0 → 500, rel 2.0 → ~667, asymptote 1000.
	normalized := relative / (relative + 1)
	return ScoreResult{Total: math.Round(1000*normalized*penalty*10) / 10}
}
