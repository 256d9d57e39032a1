package analytics

import (
	"sort"

	"github.com/claude/forgelab/internal/models"
)

// Contribution weights per muscle-group tag tier.
const (
	primaryWeight   = 0.6
	secondaryWeight = 0.3
	tertiaryWeight  = 0.1
)

// MuscleTag describes how strongly an exercise loads one muscle group.
type MuscleTag struct {
	Name      models.MuscleGroup
	Primary   bool
	Secondary bool
	Tertiary  bool
}

// ExerciseInfo is the slice of the exercise catalog the allocator needs.
type ExerciseInfo struct {
	Name    string
	Muscles []MuscleTag
}

// CatalogLookup resolves an exercise id; ok is false for unknown exercises.
type CatalogLookup func(exerciseID string) (ExerciseInfo, bool)

// WeeklyMuscleVolume spreads per-set volume across muscle groups, bucketed by
// the week of the session start time. Primary tags receive 0.6× the set
// volume, secondary 0.3×, tertiary 0.1×. When an exercise tags several muscle
// groups at the same tier each one receives the full weighted contribution:
// the totals measure stimulus, not tonnage. Sets whose exercise is not in the
// catalog contribute nothing.
func WeeklyMuscleVolume(sessions []models.WorkoutSession, lookup CatalogLookup) []models.MuscleGroupVolumeData {
	byWeek := make(map[string]map[models.MuscleGroup]float64)
	for _, session := range sessions {
		week := weekOf(session.StartedAtMs)
		for _, set := range session.Sets {
			info, ok := lookup(set.ExerciseID)
			if !ok {
				continue
			}
			volume := set.WeightKg * float64(set.Reps)
			if volume <= 0 {
				continue
			}
			groups := byWeek[week]
			if groups == nil {
				groups = make(map[models.MuscleGroup]float64)
				byWeek[week] = groups
			}
			for _, tag := range info.Muscles {
				if tag.Primary {
					groups[tag.Name] += volume * primaryWeight
				}
				if tag.Secondary {
					groups[tag.Name] += volume * secondaryWeight
				}
				if tag.Tertiary {
					groups[tag.Name] += volume * tertiaryWeight
				}
			}
		}
	}

	result := make([]models.MuscleGroupVolumeData, 0, len(byWeek))
	for week, groups := range byWeek {
		for name, v := range groups {
			groups[name] = round2(v)
		}
		result = append(result, models.MuscleGroupVolumeData{Period: week, Groups: groups})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period < result[j].Period })
	return result
}
