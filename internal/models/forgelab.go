package models

// MuscleGroup identifies one anatomical muscle group in the catalog taxonomy.
type MuscleGroup string

// Muscle group taxonomy. Broad groups first, then the finer subdivisions the
// catalog tags exercises with.
const (
	Chest      MuscleGroup = "chest"
	Back       MuscleGroup = "back"
	Shoulders  MuscleGroup = "shoulders"
	Legs       MuscleGroup = "legs"
	Arms       MuscleGroup = "arms"
	Core       MuscleGroup = "core"
	UpperChest MuscleGroup = "upper_chest"
	LowerChest MuscleGroup = "lower_chest"
	FrontDelt  MuscleGroup = "front_delt"
	SideDelt   MuscleGroup = "side_delt"
	RearDelt   MuscleGroup = "rear_delt"
	Lats       MuscleGroup = "lats"
	MidBack    MuscleGroup = "mid_back"
	Traps      MuscleGroup = "traps"
	Biceps     MuscleGroup = "biceps"
	Triceps    MuscleGroup = "triceps"
	Forearms   MuscleGroup = "forearms"
	Quads      MuscleGroup = "quads"
	Hamstrings MuscleGroup = "hamstrings"
	Glutes     MuscleGroup = "glutes"
	Calves     MuscleGroup = "calves"
	Abs        MuscleGroup = "abs"
	Obliques   MuscleGroup = "obliques"
)

// AllMuscleGroups lists every valid muscle group.
var AllMuscleGroups = []MuscleGroup{
	Chest, Back, Shoulders, Legs, Arms, Core,
	UpperChest, LowerChest, FrontDelt, SideDelt, RearDelt,
	Lats, MidBack, Traps, Biceps, Triceps, Forearms,
	Quads, Hamstrings, Glutes, Calves, Abs, Obliques,
}

// E1RMPoint is one day's best estimated one-rep max for an exercise.
type E1RMPoint struct {
	Date string  `json:"date"` // YYYY-MM-DD
	E1RM float64 `json:"e1rm"`
	IsPR bool    `json:"is_pr"`
}

// VolumePoint is one week's total volume (Σ weight×reps) for an exercise.
type VolumePoint struct {
	Week   string  `json:"week"` // YYYY-Www
	Volume float64 `json:"volume"`
}

// RankPoint is the rank and score derived from the best set on one day.
type RankPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Rank  int    `json:"rank"`
	Score int    `json:"score"`
}

// ExerciseStat holds all derived series for one exercise. Stats are created
// fresh on every recomputation and never mutated in place.
type ExerciseStat struct {
	ExerciseID    string        `json:"exercise_id"`
	Name          string        `json:"name"`
	E1RMHistory   []E1RMPoint   `json:"e1rm_history"`
	VolumeHistory []VolumePoint `json:"volume_history"`
	RankHistory   []RankPoint   `json:"rank_history"`
}

// MuscleGroupVolumeData is the weighted volume per muscle group for one week.
type MuscleGroupVolumeData struct {
	Period string                  `json:"period"` // YYYY-Www
	Groups map[MuscleGroup]float64 `json:"groups"`
}

// ForgeLabData is the full derived analytics result. It is the only object
// the cache exposes to consumers.
type ForgeLabData struct {
	WeightHistory     []WeightEntry           `json:"weight_history"`
	ExerciseStats     []ExerciseStat          `json:"exercise_stats"`
	MuscleGroupVolume []MuscleGroupVolumeData `json:"muscle_group_volume"`
}
