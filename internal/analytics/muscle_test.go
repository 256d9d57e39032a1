package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/claude/forgelab/internal/models"
)

func testLookup(t *testing.T) CatalogLookup {
	t.Helper()
	exercises := map[string]ExerciseInfo{
		"bench-press": {Name: "Bench Press", Muscles: []MuscleTag{
			{Name: models.Chest, Primary: true},
			{Name: models.Triceps, Secondary: true},
			{Name: models.FrontDelt, Tertiary: true},
		}},
		"overhead-press": {Name: "Overhead Press", Muscles: []MuscleTag{
			// Two primaries on purpose: each gets the full 0.6x.
			{Name: models.Shoulders, Primary: true},
			{Name: models.FrontDelt, Primary: true},
		}},
	}
	return func(id string) (ExerciseInfo, bool) {
		info, ok := exercises[id]
		return info, ok
	}
}

// TestWeeklyMuscleVolumeWeighting verifies the 0.6/0.3/0.1 split.
func TestWeeklyMuscleVolumeWeighting(t *testing.T) {
	start := time.Date(2025, 5, 5, 18, 0, 0, 0, time.UTC).UnixMilli()
	sessions := []models.WorkoutSession{
		{ID: "s1", StartedAtMs: start, Sets: []models.WorkoutSet{
			{ExerciseID: "bench-press", WeightKg: 100, Reps: 10, TimestampMs: start}, // volume 1000
		}},
	}

	weeks := WeeklyMuscleVolume(sessions, testLookup(t))
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}

	want := map[models.MuscleGroup]float64{
		models.Chest:     600,
		models.Triceps:   300,
		models.FrontDelt: 100,
	}
	groups := weeks[0].Groups
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d: %v", len(groups), len(want), groups)
	}
	for name, w := range want {
		if math.Abs(groups[name]-w) > 0.01 {
			t.Errorf("%s = %.2f, want %.2f", name, groups[name], w)
		}
	}
}

// TestWeeklyMuscleVolumeSameTier verifies multiple tags at the same tier each
// receive the full weighted contribution.
func TestWeeklyMuscleVolumeSameTier(t *testing.T) {
	start := time.Date(2025, 5, 5, 18, 0, 0, 0, time.UTC).UnixMilli()
	sessions := []models.WorkoutSession{
		{ID: "s1", StartedAtMs: start, Sets: []models.WorkoutSet{
			{ExerciseID: "overhead-press", WeightKg: 60, Reps: 5, TimestampMs: start}, // volume 300
		}},
	}

	weeks := WeeklyMuscleVolume(sessions, testLookup(t))
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	groups := weeks[0].Groups
	if groups[models.Shoulders] != 180 || groups[models.FrontDelt] != 180 {
		t.Errorf("shoulders = %.2f, front_delt = %.2f, want 180 each",
			groups[models.Shoulders], groups[models.FrontDelt])
	}
}

// TestWeeklyMuscleVolumeUnknownExercise verifies uncataloged sets contribute
// nothing instead of erroring.
func TestWeeklyMuscleVolumeUnknownExercise(t *testing.T) {
	start := time.Date(2025, 5, 5, 18, 0, 0, 0, time.UTC).UnixMilli()
	sessions := []models.WorkoutSession{
		{ID: "s1", StartedAtMs: start, Sets: []models.WorkoutSet{
			{ExerciseID: "mystery-machine", WeightKg: 50, Reps: 10, TimestampMs: start},
		}},
	}

	if weeks := WeeklyMuscleVolume(sessions, testLookup(t)); len(weeks) != 0 {
		t.Errorf("got %d weeks for unknown exercise, want 0", len(weeks))
	}
}

// TestWeeklyMuscleVolumeSorted verifies periods come back ascending.
func TestWeeklyMuscleVolumeSorted(t *testing.T) {
	later := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC).UnixMilli()
	earlier := time.Date(2025, 5, 5, 18, 0, 0, 0, time.UTC).UnixMilli()
	sessions := []models.WorkoutSession{
		{ID: "s1", StartedAtMs: later, Sets: []models.WorkoutSet{
			{ExerciseID: "bench-press", WeightKg: 100, Reps: 5, TimestampMs: later},
		}},
		{ID: "s2", StartedAtMs: earlier, Sets: []models.WorkoutSet{
			{ExerciseID: "bench-press", WeightKg: 95, Reps: 5, TimestampMs: earlier},
		}},
	}

	weeks := WeeklyMuscleVolume(sessions, testLookup(t))
	if len(weeks) != 2 {
		t.Fatalf("got %d weeks, want 2", len(weeks))
	}
	if weeks[0].Period >= weeks[1].Period {
		t.Errorf("periods not ascending: %s then %s", weeks[0].Period, weeks[1].Period)
	}
}
