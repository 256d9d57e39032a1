package forgelab

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/claude/forgelab/internal/models"
)

// ContentHash fingerprints the analytics inputs so cached output can be
// reused when nothing changed. DJB2-style rolling hash seeded at 5381, folded
// over each session as "id|startedAtMs|setCount", then the bodyweight, then
// each weight entry as "date|weightKg". Sessions and weight entries are
// sorted before folding, so the hash is invariant under reordering of either
// collection. Output is unsigned hex.
func ContentHash(sessions []models.WorkoutSession, bodyweightKg float64, weightHistory []models.WeightEntry) string {
	h := uint32(5381)
	fold := func(s string) {
		for i := 0; i < len(s); i++ {
			h = h*33 ^ uint32(s[i])
		}
	}

	sorted := make([]models.WorkoutSession, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartedAtMs != sorted[j].StartedAtMs {
			return sorted[i].StartedAtMs < sorted[j].StartedAtMs
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, s := range sorted {
		fold(fmt.Sprintf("%s|%d|%d", s.ID, s.StartedAtMs, len(s.Sets)))
	}

	fold(strconv.FormatFloat(bodyweightKg, 'f', -1, 64))

	entries := make([]models.WeightEntry, len(weightHistory))
	copy(entries, weightHistory)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	for _, e := range entries {
		fold(e.Date + "|" + strconv.FormatFloat(e.WeightKg, 'f', -1, 64))
	}

	return strconv.FormatUint(uint64(h), 16)
}
