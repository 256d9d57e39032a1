package scoring

import "math"

// Rank tier bounds.
const (
	MinRank = 1
	MaxRank = 20
)

// RankPolicy maps a continuous score to a coarse 1..20 rank tier and back to
// the score needed for the next tier.
//
// The default fixed-divisor mapping is a placeholder pending a real tier
// curve; keep all uses going through a RankPolicy so the divisor is not a
// load-bearing constant anywhere else.
type RankPolicy struct {
	// Divisor is the score width of one tier.
	Divisor float64
}

// DefaultRankPolicy is the placeholder floor(total/50) mapping.
var DefaultRankPolicy = RankPolicy{Divisor: 50}

// Rank converts a score total to a rank tier clamped to [MinRank, MaxRank].
func (p RankPolicy) Rank(total float64) int {
	rank := int(math.Floor(total / p.Divisor))
	if rank < MinRank {
		return MinRank
	}
	if rank > MaxRank {
		return MaxRank
	}
	return rank
}

// NextThreshold returns the score needed to reach the tier above rank.
func (p RankPolicy) NextThreshold(rank int) float64 {
	return float64(rank+1) * p.Divisor
}
