package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/forgelab/internal/analytics"
	"github.com/claude/forgelab/internal/forgelab"
	"github.com/claude/forgelab/internal/models"
	"github.com/claude/forgelab/internal/scoring"
)

func (s *Server) handleIngestSessions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Sessions []models.WorkoutSession `json:"sessions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	inserted, err := s.db.InsertSessions(r.Context(), payload.Sessions)
	if err != nil {
		s.log.Error("session ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Refresh so the next snapshot reflects the new sessions; the hash check
	// makes this a no-op when everything was a duplicate.
	if _, err := s.lab.RefreshData(r.Context()); err != nil {
		s.log.Warn("refresh after ingest failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions_received": len(payload.Sessions),
		"sets_inserted":     inserted,
	})
}

func (s *Server) handleUpsertWeight(w http.ResponseWriter, r *http.Request) {
	var entry models.WeightEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}
	if entry.WeightKg < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg must be non-negative"})
		return
	}

	if err := s.db.UpsertWeightEntry(r.Context(), entry); err != nil {
		s.log.Error("weight upsert error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleGetForgeLab(w http.ResponseWriter, r *http.Request) {
	if s.lab.Snapshot().Data == nil {
		if _, err := s.lab.LoadData(r.Context()); err != nil {
			s.log.Warn("forge lab load failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, s.lab.Snapshot())
}

func (s *Server) handleSetRange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Range forgelab.DateRange `json:"range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if _, err := s.lab.SetDateRange(r.Context(), body.Range); err != nil {
		var invalid *forgelab.InvalidRangeError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Warn("range load failed", "error", err)
	}
	writeJSON(w, http.StatusOK, s.lab.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.lab.RefreshData(r.Context()); err != nil {
		s.log.Warn("refresh failed", "error", err)
	}
	writeJSON(w, http.StatusOK, s.lab.Snapshot())
}

func (s *Server) handleStrengthCurve(w http.ResponseWriter, r *http.Request) {
	stat, ok := s.exerciseStat(w, r)
	if !ok {
		return
	}

	window := queryInt(r, "ma", 5)
	compareDays := queryInt(r, "compare_days", 30)

	series := make([]analytics.SeriesPoint, 0, len(stat.E1RMHistory))
	for _, p := range stat.E1RMHistory {
		series = append(series, analytics.SeriesPoint{Date: p.Date, Value: p.E1RM})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exercise_id":    stat.ExerciseID,
		"name":           stat.Name,
		"e1rm_history":   stat.E1RMHistory,
		"volume_history": stat.VolumeHistory,
		"moving_average": analytics.MovingAverage(series, window),
		"comparison":     analytics.ComparePeriods(series, compareDays, time.Now().UTC()),
	})
}

func (s *Server) handleRankProjection(w http.ResponseWriter, r *http.Request) {
	stat, ok := s.exerciseStat(w, r)
	if !ok {
		return
	}

	currentRank := scoring.MinRank
	if n := len(stat.RankHistory); n > 0 {
		currentRank = stat.RankHistory[n-1].Rank
	}
	projection := analytics.ProjectRank(stat.RankHistory, currentRank, s.lab.Ranks.NextThreshold)

	writeJSON(w, http.StatusOK, map[string]any{
		"exercise_id":  stat.ExerciseID,
		"name":         stat.Name,
		"current_rank": currentRank,
		"rank_history": stat.RankHistory,
		"projection":   projection,
	})
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	xID := r.URL.Query().Get("x")
	yID := r.URL.Query().Get("y")
	if xID == "" || yID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y parameters required"})
		return
	}

	data, err := s.lab.LoadData(r.Context())
	if err != nil || data == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "analytics unavailable"})
		return
	}

	xSeries := e1rmSeries(data, xID)
	ySeries := e1rmSeries(data, yID)
	xv, yv := analytics.AlignByDate(xSeries, ySeries)
	coefficient := analytics.Correlate(xv, yv)

	writeJSON(w, http.StatusOK, map[string]any{
		"x":           xID,
		"y":           yID,
		"n":           len(xv),
		"coefficient": coefficient,
		"strength":    analytics.CorrelationStrength(coefficient),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// exerciseStat resolves the ?exercise= parameter against the loaded dataset,
// writing the error response itself when it cannot.
func (s *Server) exerciseStat(w http.ResponseWriter, r *http.Request) (*models.ExerciseStat, bool) {
	exerciseID := r.URL.Query().Get("exercise")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return nil, false
	}

	data, err := s.lab.LoadData(r.Context())
	if err != nil || data == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "analytics unavailable"})
		return nil, false
	}

	for i := range data.ExerciseStats {
		if data.ExerciseStats[i].ExerciseID == exerciseID {
			return &data.ExerciseStats[i], true
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no data for exercise " + exerciseID})
	return nil, false
}

func e1rmSeries(data *models.ForgeLabData, exerciseID string) []analytics.SeriesPoint {
	for _, stat := range data.ExerciseStats {
		if stat.ExerciseID != exerciseID {
			continue
		}
		series := make([]analytics.SeriesPoint, 0, len(stat.E1RMHistory))
		for _, p := range stat.E1RMHistory {
			series = append(series, analytics.SeriesPoint{Date: p.Date, Value: p.E1RM})
		}
		return series
	}
	return nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
