package forgelab

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/forgelab/internal/catalog"
	"github.com/claude/forgelab/internal/models"
)

var testNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) int64 {
	return testNow.AddDate(0, 0, -d).UnixMilli()
}

// fakeSource is an in-memory DataSource with optional per-call gating so
// tests can control the order in which concurrent loads resolve.
type fakeSource struct {
	mu         sync.Mutex
	sessions   []models.WorkoutSession
	bodyweight float64
	weights    []models.WeightEntry
	histErr    error
	calls      int

	started chan int           // receives the call number when a fetch begins
	gates   map[int]chan struct{} // call number → gate released by the test
}

func (f *fakeSource) GetWorkoutHistory(ctx context.Context) ([]models.WorkoutSession, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	sessions := f.sessions
	err := f.histErr
	f.mu.Unlock()

	if f.started != nil {
		f.started <- n
		<-f.gates[n]
	}
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (f *fakeSource) GetUserBodyweight(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodyweight, nil
}

func (f *fakeSource) GetUserWeightHistory(ctx context.Context) ([]models.WeightEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.weights, nil
}

func benchSession(id string, startMs int64, weightKg float64) models.WorkoutSession {
	return models.WorkoutSession{
		ID:          id,
		StartedAtMs: startMs,
		EndedAtMs:   startMs + 3600_000,
		Sets: []models.WorkoutSet{
			{ID: id + "-1", ExerciseID: "bench-press", WeightKg: weightKg, Reps: 5, TimestampMs: startMs},
		},
	}
}

func newTestCache(t *testing.T, src DataSource) *Cache {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	c := New(src, cat, nil, slog.Default())
	c.Now = func() time.Time { return testNow }
	return c
}

// TestLoadDataCompiles verifies a basic end-to-end compile.
func TestLoadDataCompiles(t *testing.T) {
	src := &fakeSource{
		sessions: []models.WorkoutSession{
			benchSession("s1", daysAgo(10), 80),
			benchSession("s2", daysAgo(3), 85),
		},
		bodyweight: 80,
		weights:    []models.WeightEntry{{Date: "2025-07-01", WeightKg: 80}},
	}
	c := newTestCache(t, src)

	data, err := c.LoadData(context.Background())
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	if len(data.ExerciseStats) != 1 {
		t.Fatalf("got %d exercise stats, want 1", len(data.ExerciseStats))
	}
	stat := data.ExerciseStats[0]
	if stat.ExerciseID != "bench-press" || stat.Name != "Barbell Bench Press" {
		t.Errorf("stat = %s / %s, want bench-press / Barbell Bench Press", stat.ExerciseID, stat.Name)
	}
	if len(stat.E1RMHistory) != 2 || len(stat.RankHistory) != 2 {
		t.Errorf("history lengths = %d e1rm, %d rank, want 2 each", len(stat.E1RMHistory), len(stat.RankHistory))
	}
	if len(data.MuscleGroupVolume) == 0 {
		t.Error("muscle group volume is empty")
	}
	if len(data.WeightHistory) != 1 {
		t.Errorf("weight history length = %d, want 1", len(data.WeightHistory))
	}

	snap := c.Snapshot()
	if snap.Loading || snap.Error != "" || snap.Data != data {
		t.Errorf("snapshot = %+v, want loaded clean state", snap)
	}
}

// TestLoadDataHashShortCircuit verifies unchanged inputs return the identical
// dataset pointer without recomputation.
func TestLoadDataHashShortCircuit(t *testing.T) {
	src := &fakeSource{
		sessions:   []models.WorkoutSession{benchSession("s1", daysAgo(5), 80)},
		bodyweight: 80,
	}
	c := newTestCache(t, src)

	first, err := c.LoadData(context.Background())
	if err != nil {
		t.Fatalf("first LoadData: %v", err)
	}
	second, err := c.RefreshData(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if first != second {
		t.Error("refresh with unchanged inputs rebuilt the dataset")
	}

	// A new session invalidates the hash and produces a fresh dataset.
	src.mu.Lock()
	src.sessions = append(src.sessions, benchSession("s2", daysAgo(1), 85))
	src.mu.Unlock()

	third, err := c.RefreshData(context.Background())
	if err != nil {
		t.Fatalf("refresh after change: %v", err)
	}
	if third == second {
		t.Error("changed inputs returned the stale dataset")
	}
}

// TestSetDateRangeChangesHash verifies the range participates in the cache
// key even when the filtered sessions are identical.
func TestSetDateRangeChangesHash(t *testing.T) {
	src := &fakeSource{
		sessions:   []models.WorkoutSession{benchSession("s1", daysAgo(3), 80)},
		bodyweight: 80,
	}
	c := newTestCache(t, src)

	first, err := c.SetDateRange(context.Background(), Range1M)
	if err != nil {
		t.Fatalf("SetDateRange(1M): %v", err)
	}
	second, err := c.SetDateRange(context.Background(), Range3M)
	if err != nil {
		t.Fatalf("SetDateRange(3M): %v", err)
	}
	if first == second {
		t.Error("different ranges shared a dataset despite the range suffix in the hash")
	}
	if c.Snapshot().DateRange != Range3M {
		t.Errorf("date range = %s, want 3M", c.Snapshot().DateRange)
	}
}

// TestSetDateRangeInvalid verifies unknown ranges are rejected untouched.
func TestSetDateRangeInvalid(t *testing.T) {
	c := newTestCache(t, &fakeSource{})
	before := c.Snapshot().DateRange

	_, err := c.SetDateRange(context.Background(), DateRange("2W"))
	var invalid *InvalidRangeError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidRangeError", err)
	}
	if c.Snapshot().DateRange != before {
		t.Errorf("date range changed to %s on invalid input", c.Snapshot().DateRange)
	}
}

// TestDateRangeFiltering verifies the day-count mapping excludes old sessions.
func TestDateRangeFiltering(t *testing.T) {
	src := &fakeSource{
		sessions: []models.WorkoutSession{
			benchSession("old", daysAgo(45), 80),
			{
				ID: "recent", StartedAtMs: daysAgo(2), EndedAtMs: daysAgo(2) + 3600_000,
				Sets: []models.WorkoutSet{
					{ID: "r1", ExerciseID: "squat", WeightKg: 120, Reps: 5, TimestampMs: daysAgo(2)},
				},
			},
		},
		bodyweight: 80,
	}
	c := newTestCache(t, src)

	data, err := c.SetDateRange(context.Background(), Range1M)
	if err != nil {
		t.Fatalf("SetDateRange(1M): %v", err)
	}
	if len(data.ExerciseStats) != 1 || data.ExerciseStats[0].ExerciseID != "squat" {
		t.Fatalf("1M stats = %+v, want only squat", data.ExerciseStats)
	}

	data, err = c.SetDateRange(context.Background(), RangeAll)
	if err != nil {
		t.Fatalf("SetDateRange(ALL): %v", err)
	}
	if len(data.ExerciseStats) != 2 {
		t.Fatalf("ALL stats = %d exercises, want 2", len(data.ExerciseStats))
	}
}

// TestLoadDataErrorKeepsStaleData verifies collaborator failures surface in
// the snapshot but leave the previous dataset visible.
func TestLoadDataErrorKeepsStaleData(t *testing.T) {
	src := &fakeSource{
		sessions:   []models.WorkoutSession{benchSession("s1", daysAgo(2), 80)},
		bodyweight: 80,
	}
	c := newTestCache(t, src)

	data, err := c.LoadData(context.Background())
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}

	src.mu.Lock()
	src.histErr = errors.New("connection refused")
	src.mu.Unlock()

	got, err := c.RefreshData(context.Background())
	if err == nil {
		t.Fatal("refresh succeeded, want error")
	}
	if got != data {
		t.Error("stale dataset not returned alongside the error")
	}

	snap := c.Snapshot()
	if snap.Data != data {
		t.Error("snapshot dropped the stale dataset")
	}
	if snap.Error == "" {
		t.Error("snapshot error is empty")
	}
	if snap.Loading {
		t.Error("snapshot still loading after failure")
	}
}

// TestClearData verifies the reset path.
func TestClearData(t *testing.T) {
	src := &fakeSource{
		sessions:   []models.WorkoutSession{benchSession("s1", daysAgo(2), 80)},
		bodyweight: 80,
	}
	c := newTestCache(t, src)

	if _, err := c.LoadData(context.Background()); err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	c.ClearData()

	snap := c.Snapshot()
	if snap.Data != nil || snap.Error != "" || snap.Loading {
		t.Errorf("snapshot after clear = %+v, want empty", snap)
	}
}

// TestStaleGenerationDiscarded covers the rapid range-toggle race: a load
// that resolves after a newer one started must not overwrite the newer
// result, even though it finishes last.
func TestStaleGenerationDiscarded(t *testing.T) {
	src := &fakeSource{
		sessions: []models.WorkoutSession{
			benchSession("old", daysAgo(45), 80), // only inside the 3M window
			{
				ID: "recent", StartedAtMs: daysAgo(2), EndedAtMs: daysAgo(2) + 3600_000,
				Sets: []models.WorkoutSet{
					{ID: "r1", ExerciseID: "squat", WeightKg: 120, Reps: 5, TimestampMs: daysAgo(2)},
				},
			},
		},
		bodyweight: 80,
		started:    make(chan int),
		gates:      map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})},
	}
	c := newTestCache(t, src)

	done1 := make(chan struct{})
	go func() {
		defer close(done1)
		_, _ = c.SetDateRange(context.Background(), Range1M)
	}()
	if n := <-src.started; n != 1 {
		t.Fatalf("first fetch numbered %d, want 1", n)
	}

	done2 := make(chan struct{})
	go func() {
		defer close(done2)
		_, _ = c.SetDateRange(context.Background(), Range3M)
	}()
	if n := <-src.started; n != 2 {
		t.Fatalf("second fetch numbered %d, want 2", n)
	}

	// Let the newer load finish first, then release the stale one.
	close(src.gates[2])
	<-done2
	close(src.gates[1])
	<-done1

	snap := c.Snapshot()
	if snap.DateRange != Range3M {
		t.Fatalf("date range = %s, want 3M", snap.DateRange)
	}
	if snap.Data == nil {
		t.Fatal("no data after both loads settled")
	}
	// The 3M dataset includes both exercises; the discarded 1M dataset would
	// have had only squat.
	if len(snap.Data.ExerciseStats) != 2 {
		t.Errorf("got %d exercise stats, want 2 (stale 1M result must not win)", len(snap.Data.ExerciseStats))
	}
}
