// Package forgelab owns the derived analytics dataset: it orchestrates the
// pure aggregation pipeline, gates recomputation behind a content hash of the
// inputs, and guarantees that when loads race, only the most recently
// initiated one lands.
package forgelab

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/claude/forgelab/internal/analytics"
	"github.com/claude/forgelab/internal/catalog"
	"github.com/claude/forgelab/internal/models"
	"github.com/claude/forgelab/internal/scoring"
)

// DateRange selects how far back sessions are included.
type DateRange string

const (
	Range1W  DateRange = "1W"
	Range1M  DateRange = "1M"
	Range3M  DateRange = "3M"
	Range6M  DateRange = "6M"
	Range1Y  DateRange = "1Y"
	RangeAll DateRange = "ALL"
)

// DefaultDateRange is used until a consumer picks one.
const DefaultDateRange = Range3M

// Days returns the lookback window in days, or 0 for ALL (unfiltered).
func (r DateRange) Days() int {
	switch r {
	case Range1W:
		return 7
	case Range1M:
		return 30
	case Range3M:
		return 90
	case Range6M:
		return 180
	case Range1Y:
		return 365
	default:
		return 0
	}
}

// Valid reports whether r is one of the known ranges.
func (r DateRange) Valid() bool {
	switch r {
	case Range1W, Range1M, Range3M, Range6M, Range1Y, RangeAll:
		return true
	}
	return false
}

// DataSource abstracts the external collaborators the cache loads from. Both
// *storage.DB (Postgres) and test fakes satisfy this interface.
type DataSource interface {
	GetWorkoutHistory(ctx context.Context) ([]models.WorkoutSession, error)
	GetUserBodyweight(ctx context.Context) (float64, error)
	GetUserWeightHistory(ctx context.Context) ([]models.WeightEntry, error)
}

// Snapshot is the consumer-facing view of the cache.
type Snapshot struct {
	Data      *models.ForgeLabData `json:"data"`
	Loading   bool                 `json:"loading"`
	Error     string               `json:"error,omitempty"`
	DateRange DateRange            `json:"date_range"`
}

// Cache holds the current derived dataset and decides whether a load can
// reuse it. All mutation goes through the methods; there is no module-level
// state.
type Cache struct {
	source  DataSource
	catalog *catalog.Catalog
	state   *StateStore // optional; nil disables persistence
	log     *slog.Logger

	// Score, Ranks and Now are swappable for tests and future policy changes.
	Score scoring.ScoreFunc
	Ranks scoring.RankPolicy
	Now   func() time.Time

	mu         sync.Mutex
	data       *models.ForgeLabData
	dateRange  DateRange
	lastHash   string
	loading    bool
	lastErr    string
	generation uint64
}

// New creates a cache over the given collaborators. state may be nil.
func New(source DataSource, cat *catalog.Catalog, state *StateStore, log *slog.Logger) *Cache {
	c := &Cache{
		source:    source,
		catalog:   cat,
		state:     state,
		log:       log,
		Score:     scoring.ScoreFromE1RM,
		Ranks:     scoring.DefaultRankPolicy,
		Now:       time.Now,
		dateRange: DefaultDateRange,
	}
	if state != nil {
		if rng, hash, err := state.Load(); err == nil {
			if rng.Valid() {
				c.dateRange = rng
			}
			// Restored hash only matters once data exists again; a cold
			// start always recomputes.
			c.lastHash = hash
		} else {
			log.Warn("cache state restore failed", "error", err)
		}
	}
	return c
}

// Snapshot returns the current consumer-facing state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Data: c.data, Loading: c.loading, Error: c.lastErr, DateRange: c.dateRange}
}

// SetDateRange switches the active range and reloads. Unknown ranges are
// rejected without touching state.
func (c *Cache) SetDateRange(ctx context.Context, r DateRange) (*models.ForgeLabData, error) {
	if !r.Valid() {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.data, &InvalidRangeError{Range: string(r)}
	}
	c.mu.Lock()
	c.dateRange = r
	c.mu.Unlock()
	return c.LoadData(ctx)
}

// RefreshData re-fetches the collaborators and reloads. The hash
// short-circuit still applies: unchanged inputs return the cached dataset.
func (c *Cache) RefreshData(ctx context.Context) (*models.ForgeLabData, error) {
	return c.LoadData(ctx)
}

// ClearData resets to the empty initial record. Any in-flight load becomes
// stale and its completion is discarded.
func (c *Cache) ClearData() {
	c.mu.Lock()
	c.generation++
	c.data = nil
	c.lastHash = ""
	c.lastErr = ""
	c.loading = false
	c.mu.Unlock()

	if c.state != nil {
		if err := c.state.Clear(); err != nil {
			c.log.Warn("clearing cache state failed", "error", err)
		}
	}
}

// LoadData fetches sessions, bodyweight and weight history, then either
// reuses the cached dataset (hash match) or recomputes and swaps it in
// wholesale. Concurrent loads are resolved by generation: each invocation
// takes the next generation number, and any completion whose generation is no
// longer current discards its result instead of applying it. Collaborator
// failures surface in the snapshot's Error and leave previous data visible.
func (c *Cache) LoadData(ctx context.Context) (*models.ForgeLabData, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	rng := c.dateRange
	c.loading = true
	c.mu.Unlock()

	sessions, err := c.source.GetWorkoutHistory(ctx)
	if err != nil {
		return c.fail(gen, err)
	}
	bodyweight, err := c.source.GetUserBodyweight(ctx)
	if err != nil {
		return c.fail(gen, err)
	}
	weightHistory, err := c.source.GetUserWeightHistory(ctx)
	if err != nil {
		return c.fail(gen, err)
	}

	filtered := filterByRange(sessions, rng, c.Now())
	hash := ContentHash(filtered, bodyweight, weightHistory) + "|" + string(rng)

	c.mu.Lock()
	if gen != c.generation {
		// A newer load started while we were fetching; drop this result.
		data := c.data
		c.mu.Unlock()
		return data, nil
	}
	if hash == c.lastHash && c.data != nil {
		c.loading = false
		c.lastErr = ""
		data := c.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data := c.compile(filtered, bodyweight, weightHistory)

	c.mu.Lock()
	if gen != c.generation {
		current := c.data
		c.mu.Unlock()
		return current, nil
	}
	c.data = data
	c.lastHash = hash
	c.loading = false
	c.lastErr = ""
	c.mu.Unlock()

	c.persist(rng, hash)
	return data, nil
}

// fail records a collaborator error unless a newer load has superseded this
// one. Previously cached data stays visible either way.
func (c *Cache) fail(gen uint64, err error) (*models.ForgeLabData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.loading = false
		c.lastErr = err.Error()
	}
	return c.data, err
}

func (c *Cache) persist(rng DateRange, hash string) {
	if c.state == nil {
		return
	}
	if err := c.state.Save(rng, hash); err != nil {
		c.log.Warn("persisting cache state failed", "error", err)
	}
}

// compile runs the pure pipeline over the filtered inputs. Exercises appear
// in first-seen order across sessions.
func (c *Cache) compile(sessions []models.WorkoutSession, bodyweightKg float64, weightHistory []models.WeightEntry) *models.ForgeLabData {
	var exerciseIDs []string
	seen := make(map[string]bool)
	for _, session := range sessions {
		for _, set := range session.Sets {
			if !seen[set.ExerciseID] {
				seen[set.ExerciseID] = true
				exerciseIDs = append(exerciseIDs, set.ExerciseID)
			}
		}
	}

	score := func(exerciseID string, e1rmKg, bw float64) float64 {
		return c.Score(exerciseID, e1rmKg, bw).Total
	}
	stats := make([]models.ExerciseStat, 0, len(exerciseIDs))
	for _, id := range exerciseIDs {
		stats = append(stats, models.ExerciseStat{
			ExerciseID:    id,
			Name:          c.catalog.Name(id),
			E1RMHistory:   analytics.DailyMaxE1RM(sessions, id),
			VolumeHistory: analytics.WeeklyVolume(sessions, id),
			RankHistory:   analytics.RankHistory(sessions, id, bodyweightKg, score, c.Ranks.Rank),
		})
	}

	lookup := func(exerciseID string) (analytics.ExerciseInfo, bool) {
		ex, ok := c.catalog.Lookup(exerciseID)
		if !ok {
			return analytics.ExerciseInfo{}, false
		}
		tags := make([]analytics.MuscleTag, 0, len(ex.MuscleGroups))
		for _, t := range ex.MuscleGroups {
			tags = append(tags, analytics.MuscleTag{
				Name: t.Name, Primary: t.Primary, Secondary: t.Secondary, Tertiary: t.Tertiary,
			})
		}
		return analytics.ExerciseInfo{Name: ex.Name, Muscles: tags}, true
	}

	weights := make([]models.WeightEntry, len(weightHistory))
	copy(weights, weightHistory)
	sort.Slice(weights, func(i, j int) bool { return weights[i].Date < weights[j].Date })

	return &models.ForgeLabData{
		WeightHistory:     weights,
		ExerciseStats:     stats,
		MuscleGroupVolume: analytics.WeeklyMuscleVolume(sessions, lookup),
	}
}

// filterByRange keeps sessions whose start falls inside the lookback window.
// ALL (and any zero-day range) passes everything through.
func filterByRange(sessions []models.WorkoutSession, r DateRange, now time.Time) []models.WorkoutSession {
	days := r.Days()
	if days <= 0 {
		return sessions
	}
	cutoff := now.AddDate(0, 0, -days).UnixMilli()
	filtered := make([]models.WorkoutSession, 0, len(sessions))
	for _, s := range sessions {
		if s.StartedAtMs >= cutoff {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// InvalidRangeError is returned by SetDateRange for unknown ranges.
type InvalidRangeError struct {
	Range string
}

func (e *InvalidRangeError) Error() string {
	return "invalid date range: " + e.Range
}
