package analytics

import (
	"math"
	"time"

	"github.com/claude/forgelab/internal/models"
)

// SeriesPoint is one dated value in a derived series.
type SeriesPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

// MovingAverage returns the trailing arithmetic mean over the windowSize most
// recent points, including the current one. Returns an empty slice when the
// series is shorter than the window.
func MovingAverage(series []SeriesPoint, windowSize int) []SeriesPoint {
	if windowSize <= 0 || len(series) < windowSize {
		return []SeriesPoint{}
	}
	out := make([]SeriesPoint, 0, len(series)-windowSize+1)
	sum := 0.0
	for i, p := range series {
		sum += p.Value
		if i < windowSize-1 {
			continue
		}
		if i >= windowSize {
			sum -= series[i-windowSize].Value
		}
		out = append(out, SeriesPoint{Date: p.Date, Value: round2(sum / float64(windowSize))})
	}
	return out
}

// PeriodComparison holds the average value of the current window versus the
// preceding equal-length window.
type PeriodComparison struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	PercentChange float64 `json:"percent_change"`
}

// ComparePeriods averages values in [now-periodDays, now] against the
// preceding window of the same length. Returns nil when either window has no
// points. PercentChange is rounded to 1 decimal and is 0 when the previous
// average is 0.
func ComparePeriods(series []SeriesPoint, periodDays int, now time.Time) *PeriodComparison {
	if periodDays <= 0 {
		return nil
	}
	currentStart := now.AddDate(0, 0, -periodDays)
	previousStart := now.AddDate(0, 0, -2*periodDays)

	var curSum, prevSum float64
	var curN, prevN int
	for _, p := range series {
		t, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		switch {
		case t.After(currentStart) || t.Equal(currentStart):
			if !t.After(now) {
				curSum += p.Value
				curN++
			}
		case t.After(previousStart) || t.Equal(previousStart):
			prevSum += p.Value
			prevN++
		}
	}
	if curN == 0 || prevN == 0 {
		return nil
	}

	current := curSum / float64(curN)
	previous := prevSum / float64(prevN)
	change := 0.0
	if previous != 0 {
		change = math.Round((current-previous)/previous*1000) / 10
	}
	return &PeriodComparison{
		Current:       round2(current),
		Previous:      round2(previous),
		PercentChange: change,
	}
}

// Correlate computes the Pearson correlation coefficient of two series.
// Returns 0 unless both have the same length of at least 3 points and each
// has nonzero variance.
func Correlate(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 3 {
		return 0
	}
	n := float64(len(a))

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// CorrelationStrength labels a correlation coefficient by magnitude.
func CorrelationStrength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	case abs >= 0.2:
		return "weak"
	default:
		return "none"
	}
}

// RankProjection is the linear 30-day projection of an exercise's score.
type RankProjection struct {
	ProjectedScore int    `json:"projected_score"`
	DaysToNextRank *int   `json:"days_to_next_rank"`
	Confidence     string `json:"confidence"` // high | medium | low
}

// ProjectRank projects an exercise's score 30 days forward from the linear
// daily rate of change across the last ≤30 history points. nextThreshold maps
// the current rank to the score needed for the next tier. With fewer than 3
// points the projection degrades to the last known score with low confidence.
// Confidence comes from the mean squared residual of the window against the
// fitted line: <100 high, <500 medium, otherwise low.
func ProjectRank(history []models.RankPoint, currentRank int, nextThreshold func(rank int) float64) RankProjection {
	if len(history) < 3 {
		last := 0
		if len(history) > 0 {
			last = history[len(history)-1].Score
		}
		return RankProjection{ProjectedScore: last, DaysToNextRank: nil, Confidence: "low"}
	}

	window := history
	if len(window) > 30 {
		window = window[len(window)-30:]
	}

	first := window[0]
	last := window[len(window)-1]
	firstDay := dayNumber(first.Date)
	lastDay := dayNumber(last.Date)

	dailyRate := 0.0
	if span := lastDay - firstDay; span > 0 {
		dailyRate = float64(last.Score-first.Score) / float64(span)
	}

	projected := int(math.Round(float64(last.Score) + dailyRate*30))

	var daysToNext *int
	if dailyRate > 0 {
		days := int(math.Ceil((nextThreshold(currentRank) - float64(last.Score)) / dailyRate))
		daysToNext = &days
	}

	// Mean squared residual against the line through the window endpoints.
	var sumSq float64
	for _, p := range window {
		x := float64(dayNumber(p.Date) - firstDay)
		predicted := float64(first.Score) + dailyRate*x
		res := float64(p.Score) - predicted
		sumSq += res * res
	}
	meanSq := sumSq / float64(len(window))

	confidence := "low"
	switch {
	case meanSq < 100:
		confidence = "high"
	case meanSq < 500:
		confidence = "medium"
	}

	return RankProjection{ProjectedScore: projected, DaysToNextRank: daysToNext, Confidence: confidence}
}

// AlignByDate intersects two dated series and returns the paired values in
// date order, ready for Correlate. Dates present in only one series are
// dropped.
func AlignByDate(a, b []SeriesPoint) ([]float64, []float64) {
	bByDate := make(map[string]float64, len(b))
	for _, p := range b {
		bByDate[p.Date] = p.Value
	}
	var av, bv []float64
	for _, p := range a {
		if v, ok := bByDate[p.Date]; ok {
			av = append(av, p.Value)
			bv = append(bv, v)
		}
	}
	return av, bv
}

// dayNumber converts a YYYY-MM-DD date to a day count since the Unix epoch.
// Unparseable dates map to 0 and fall out of the rate computation.
func dayNumber(date string) int {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	return int(t.Unix() / 86400)
}
