package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored training data.
type DataStats struct {
	TotalSessions      int64             `json:"total_sessions"`
	TotalSets          int64             `json:"total_sets"`
	TotalWeightEntries int64             `json:"total_weight_entries"`
	EarliestSession    *time.Time        `json:"earliest_session"`
	LatestSession      *time.Time        `json:"latest_session"`
	SetsByExercise     []ExerciseSetStat `json:"sets_by_exercise"`
}

// ExerciseSetStat holds per-exercise set counts and tonnage.
type ExerciseSetStat struct {
	ExerciseID string  `json:"exercise_id"`
	Count      int64   `json:"count"`
	TonnageKg  float64 `json:"tonnage_kg"`
}

// GetDataStats returns aggregate statistics for the stored data.
func (db *DB) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(started_at), MAX(started_at) FROM workout_sessions`,
	).Scan(&stats.TotalSessions, &stats.EarliestSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM workout_sets`).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM weight_history`).Scan(&stats.TotalWeightEntries)
	if err != nil {
		return nil, fmt.Errorf("counting weight entries: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_id, COUNT(*), COALESCE(SUM(weight_kg * reps), 0)
		 FROM workout_sets
		 GROUP BY exercise_id
		 ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sets by exercise: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseSetStat
		if err := rows.Scan(&s.ExerciseID, &s.Count, &s.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.SetsByExercise = append(stats.SetsByExercise, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
