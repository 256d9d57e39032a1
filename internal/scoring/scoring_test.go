package scoring

import (
	"math"
	"testing"
)

func TestScoreFromE1RM(t *testing.T) {
	tests := []struct {
		name       string
		e1rm       float64
		bodyweight float64
		want       float64
	}{
		{"bodyweight-equal lift", 80, 80, 500},
		{"double bodyweight", 160, 80, 666.7},
		{"half bodyweight", 40, 80, 333.3},
		{"no bodyweight applies penalty", 100, 0, 450},
		{"zero e1rm", 0, 80, 0},
		{"negative e1rm", -50, 80, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreFromE1RM("bench-press", tt.e1rm, tt.bodyweight)
			if math.Abs(got.Total-tt.want) > 0.05 {
				t.Errorf("ScoreFromE1RM(%v, %v) = %v, want %v", tt.e1rm, tt.bodyweight, got.Total, tt.want)
			}
		})
	}
}

func TestScoreFromE1RMDeterministic(t *testing.T) {
	a := ScoreFromE1RM("squat", 142.5, 81.3)
	b := ScoreFromE1RM("squat", 142.5, 81.3)
	if a != b {
		t.Errorf("same inputs scored differently: %v vs %v", a, b)
	}
}

func TestRankClamping(t *testing.T) {
	tests := []struct {
		total float64
		want  int
	}{
		{0, 1},
		{49.9, 1},
		{50, 1},
		{100, 2},
		{375, 7},
		{999, 19},
		{1000, 20},
		{5000, 20},
		{-10, 1},
	}

	for _, tt := range tests {
		if got := DefaultRankPolicy.Rank(tt.total); got != tt.want {
			t.Errorf("Rank(%v) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestNextThreshold(t *testing.T) {
	tests := []struct {
		rank int
		want float64
	}{
		{1, 100},
		{7, 400},
		{19, 1000},
	}

	for _, tt := range tests {
		if got := DefaultRankPolicy.NextThreshold(tt.rank); got != tt.want {
			t.Errorf("NextThreshold(%d) = %v, want %v", tt.rank, got, tt.want)
		}
	}
}

func TestCustomDivisor(t *testing.T) {
	steep := RankPolicy{Divisor: 100}
	if got := steep.Rank(375); got != 3 {
		t.Errorf("Rank(375) with divisor 100 = %d, want 3", got)
	}
	if got := steep.NextThreshold(3); got != 400 {
		t.Errorf("NextThreshold(3) with divisor 100 = %v, want 400", got)
	}
}
