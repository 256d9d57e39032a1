// Package analytics turns raw workout logs into derived time series and
// statistical summaries. Everything in this package is pure and synchronous:
// no shared state, no suspension points, safe to call from any goroutine.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/claude/forgelab/internal/models"
)

// EstimateE1RM estimates a one-rep max from a submaximal set using the Epley
// formula: weight * (1 + reps/30). Non-positive weight or reps yield 0.
func EstimateE1RM(weightKg float64, reps int) float64 {
	if weightKg <= 0 || reps <= 0 {
		return 0
	}
	return weightKg * (1 + float64(reps)/30)
}

// DailyMaxE1RM returns the best estimated one-rep max per UTC calendar day for
// one exercise, sorted ascending by date. Days without a valid set are
// omitted. IsPR is set where a point strictly exceeds every earlier point.
func DailyMaxE1RM(sessions []models.WorkoutSession, exerciseID string) []models.E1RMPoint {
	maxByDate := make(map[string]float64)
	for _, session := range sessions {
		for _, set := range session.Sets {
			if set.ExerciseID != exerciseID {
				continue
			}
			date := utcDate(set.TimestampMs)
			if e1rm := EstimateE1RM(set.WeightKg, set.Reps); e1rm > maxByDate[date] {
				maxByDate[date] = e1rm
			}
		}
	}

	points := make([]models.E1RMPoint, 0, len(maxByDate))
	for date, e1rm := range maxByDate {
		if e1rm > 0 {
			points = append(points, models.E1RMPoint{Date: date, E1RM: round2(e1rm)})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	// A point is a PR only when it strictly beats the running max of all
	// earlier points; ties are not PRs.
	runningMax := 0.0
	for i := range points {
		if points[i].E1RM > runningMax {
			points[i].IsPR = true
			runningMax = points[i].E1RM
		}
	}
	return points
}

// WeeklyVolume returns total volume (Σ weight×reps) per week for one
// exercise, keyed by the week of the session start time, sorted ascending.
func WeeklyVolume(sessions []models.WorkoutSession, exerciseID string) []models.VolumePoint {
	volumeByWeek := make(map[string]float64)
	for _, session := range sessions {
		week := weekOf(session.StartedAtMs)
		for _, set := range session.Sets {
			if set.ExerciseID == exerciseID {
				volumeByWeek[week] += set.WeightKg * float64(set.Reps)
			}
		}
	}

	points := make([]models.VolumePoint, 0, len(volumeByWeek))
	for week, volume := range volumeByWeek {
		points = append(points, models.VolumePoint{Week: week, Volume: round2(volume)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Week < points[j].Week })
	return points
}

// RankHistory derives rank/score per workout day for one exercise: the best
// e1RM on each session date is scored and mapped to a rank tier. score and
// rank are supplied by the caller so this package stays free of scoring
// policy. Days where no set produces a positive e1RM are skipped.
func RankHistory(
	sessions []models.WorkoutSession,
	exerciseID string,
	bodyweightKg float64,
	score func(exerciseID string, e1rmKg, bodyweightKg float64) float64,
	rank func(total float64) int,
) []models.RankPoint {
	bestByDate := make(map[string]float64)
	for _, session := range sessions {
		date := utcDate(session.StartedAtMs)
		for _, set := range session.Sets {
			if set.ExerciseID != exerciseID {
				continue
			}
			if e1rm := EstimateE1RM(set.WeightKg, set.Reps); e1rm > bestByDate[date] {
				bestByDate[date] = e1rm
			}
		}
	}

	points := make([]models.RankPoint, 0, len(bestByDate))
	for date, e1rm := range bestByDate {
		if e1rm <= 0 {
			continue
		}
		total := score(exerciseID, e1rm, bodyweightKg)
		points = append(points, models.RankPoint{
			Date:  date,
			Rank:  rank(total),
			Score: int(math.Round(total)),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// utcDate formats a millisecond timestamp as a UTC YYYY-MM-DD date key.
func utcDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

// weekOf returns the YYYY-Www bucket for a millisecond timestamp. The week
// number is ceil((dayOfYear + weekday(Jan1) + 1) / 7) over UTC, matching the
// keys the rest of the pipeline was built against.
func weekOf(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	startOfYear := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(t.Sub(startOfYear).Hours() / 24)
	week := int(math.Ceil(float64(days+int(startOfYear.Weekday())+1) / 7))
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
