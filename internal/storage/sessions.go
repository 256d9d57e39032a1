package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/forgelab/internal/models"
	"github.com/google/uuid"
)

// InsertSessions batch-inserts logged sessions and their sets. Sessions or
// sets without ids get one assigned. Returns the number of sets inserted;
// re-sent sessions are skipped via ON CONFLICT DO NOTHING.
func (db *DB) InsertSessions(ctx context.Context, sessions []models.WorkoutSession) (int64, error) {
	if len(sessions) == 0 {
		return 0, nil
	}

	sessionQuery := `INSERT INTO workout_sessions (id, started_at, ended_at) VALUES `
	sessionArgs := make([]any, 0, len(sessions)*3)
	sessionValues := make([]string, 0, len(sessions))

	var sets []models.WorkoutSet
	setSession := make(map[int]string) // index in sets → session id

	for i := range sessions {
		s := &sessions[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		base := i * 3
		sessionValues = append(sessionValues, fmt.Sprintf("($%d,$%d,$%d)", base+1, base+2, base+3))
		sessionArgs = append(sessionArgs,
			s.ID, time.UnixMilli(s.StartedAtMs).UTC(), time.UnixMilli(s.EndedAtMs).UTC())
		for _, set := range s.Sets {
			setSession[len(sets)] = s.ID
			sets = append(sets, set)
		}
	}

	sessionQuery += strings.Join(sessionValues, ",") + " ON CONFLICT DO NOTHING"
	if _, err := db.Pool.Exec(ctx, sessionQuery, sessionArgs...); err != nil {
		return 0, fmt.Errorf("inserting sessions: %w", err)
	}

	if len(sets) == 0 {
		return 0, nil
	}

	setQuery := `INSERT INTO workout_sets (id, session_id, exercise_id, weight_kg, reps, logged_at) VALUES `
	setArgs := make([]any, 0, len(sets)*6)
	setValues := make([]string, 0, len(sets))
	for i, set := range sets {
		if set.ID == "" {
			set.ID = uuid.NewString()
		}
		base := i * 6
		setValues = append(setValues, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		setArgs = append(setArgs,
			set.ID, setSession[i], set.ExerciseID, set.WeightKg, set.Reps,
			time.UnixMilli(set.TimestampMs).UTC())
	}

	setQuery += strings.Join(setValues, ",") + " ON CONFLICT DO NOTHING"
	tag, err := db.Pool.Exec(ctx, setQuery, setArgs...)
	if err != nil {
		return 0, fmt.Errorf("inserting sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetWorkoutHistory returns all sessions with their sets, oldest first.
func (db *DB) GetWorkoutHistory(ctx context.Context) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, started_at, ended_at FROM workout_sessions ORDER BY started_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WorkoutSession
	index := make(map[string]int)
	for rows.Next() {
		var id string
		var startedAt, endedAt time.Time
		if err := rows.Scan(&id, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		index[id] = len(sessions)
		sessions = append(sessions, models.WorkoutSession{
			ID:          id,
			StartedAtMs: startedAt.UnixMilli(),
			EndedAtMs:   endedAt.UnixMilli(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_id, weight_kg, reps, logged_at
		 FROM workout_sets ORDER BY logged_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var set models.WorkoutSet
		var sessionID string
		var loggedAt time.Time
		if err := setRows.Scan(&set.ID, &sessionID, &set.ExerciseID, &set.WeightKg, &set.Reps, &loggedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		set.TimestampMs = loggedAt.UnixMilli()
		if i, ok := index[sessionID]; ok {
			sessions[i].Sets = append(sessions[i].Sets, set)
		}
	}
	return sessions, setRows.Err()
}
