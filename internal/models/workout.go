package models

// WorkoutSet is a single logged set. Sets are immutable once logged and are
// owned by the session store; the analytics core treats them as read-only.
type WorkoutSet struct {
	ID          string  `json:"id"`
	ExerciseID  string  `json:"exercise_id"`
	WeightKg    float64 `json:"weight_kg"`
	Reps        int     `json:"reps"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// WorkoutSession is one training session with all its sets.
type WorkoutSession struct {
	ID          string       `json:"id"`
	StartedAtMs int64        `json:"started_at_ms"`
	EndedAtMs   int64        `json:"ended_at_ms"`
	Sets        []WorkoutSet `json:"sets"`
}

// WeightEntry is one bodyweight measurement.
type WeightEntry struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	WeightKg float64 `json:"weight_kg"`
}
