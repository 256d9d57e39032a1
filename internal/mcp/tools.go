package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/forgelab/internal/analytics"
	"github.com/claude/forgelab/internal/forgelab"
	"github.com/claude/forgelab/internal/models"
	"github.com/claude/forgelab/internal/scoring"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetStrengthCurve = mcp.NewTool("get_strength_curve",
	mcp.WithDescription("Daily best estimated 1RM history for an exercise, with PR markers, a trailing moving average, and a period-over-period comparison."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id (e.g. bench-press, squat, deadlift)")),
	mcp.WithNumber("ma_window", mcp.Description("Moving average window in points. Defaults to 5.")),
	mcp.WithNumber("compare_days", mcp.Description("Period length in days for the comparison. Defaults to 30.")),
)

var toolGetVolumeTrend = mcp.NewTool("get_volume_trend",
	mcp.WithDescription("Weekly training volume (Σ weight×reps) for an exercise, keyed by week."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id")),
)

var toolGetMuscleVolume = mcp.NewTool("get_muscle_volume",
	mcp.WithDescription("Weekly volume allocated per muscle group using primary/secondary/tertiary weighting (0.6/0.3/0.1)."),
)

var toolGetRankProjection = mcp.NewTool("get_rank_projection",
	mcp.WithDescription("Linear 30-day score projection for an exercise, including estimated days to the next rank tier and a confidence grade."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id")),
)

var toolGetExerciseCorrelation = mcp.NewTool("get_exercise_correlation",
	mcp.WithDescription("Pearson correlation between the daily e1RM series of two exercises, date-aligned, with a strength label."),
	mcp.WithString("x", mcp.Required(), mcp.Description("First exercise id")),
	mcp.WithString("y", mcp.Required(), mcp.Description("Second exercise id")),
)

var toolSetDateRange = mcp.NewTool("set_date_range",
	mcp.WithDescription("Switch the active analytics date range and reload."),
	mcp.WithString("range", mcp.Required(), mcp.Description("Date range"), mcp.Enum("1W", "1M", "3M", "6M", "1Y", "ALL")),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Aggregate statistics about stored training data: session/set counts, tonnage per exercise, and the overall date range."),
)

// --- Tool handlers ---

func (h *handlers) getStrengthCurve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stat, errResult := h.exerciseStat(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	window := req.GetInt("ma_window", 5)
	compareDays := req.GetInt("compare_days", 30)

	series := e1rmSeries(stat)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise_id":    stat.ExerciseID,
		"name":           stat.Name,
		"e1rm_history":   stat.E1RMHistory,
		"moving_average": analytics.MovingAverage(series, window),
		"comparison":     analytics.ComparePeriods(series, compareDays, time.Now().UTC()),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stat, errResult := h.exerciseStat(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise_id":    stat.ExerciseID,
		"name":           stat.Name,
		"volume_history": stat.VolumeHistory,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMuscleVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, errResult := h.loadedData(ctx)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(data.MuscleGroupVolume)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRankProjection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stat, errResult := h.exerciseStat(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	currentRank := scoring.MinRank
	if n := len(stat.RankHistory); n > 0 {
		currentRank = stat.RankHistory[n-1].Rank
	}
	projection := analytics.ProjectRank(stat.RankHistory, currentRank, h.lab.Ranks.NextThreshold)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise_id":  stat.ExerciseID,
		"name":         stat.Name,
		"current_rank": currentRank,
		"projection":   projection,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseCorrelation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	xID, err := req.RequireString("x")
	if err != nil {
		return mcp.NewToolResultError("x parameter is required"), nil
	}
	yID, err := req.RequireString("y")
	if err != nil {
		return mcp.NewToolResultError("y parameter is required"), nil
	}

	data, errResult := h.loadedData(ctx)
	if errResult != nil {
		return errResult, nil
	}

	xv, yv := analytics.AlignByDate(findE1RMSeries(data, xID), findE1RMSeries(data, yID))
	coefficient := analytics.Correlate(xv, yv)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"x":           xID,
		"y":           yID,
		"n":           len(xv),
		"coefficient": coefficient,
		"strength":    analytics.CorrelationStrength(coefficient),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) setDateRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng, err := req.RequireString("range")
	if err != nil {
		return mcp.NewToolResultError("range parameter is required"), nil
	}

	if _, err := h.lab.SetDateRange(ctx, forgelab.DateRange(rng)); err != nil {
		return mcp.NewToolResultError("range switch failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(h.lab.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.db.GetDataStats(ctx)
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Helpers ---

// loadedData ensures the cache is populated and returns the dataset, or an
// error tool result to hand back to the client.
func (h *handlers) loadedData(ctx context.Context) (*models.ForgeLabData, *mcp.CallToolResult) {
	data, err := h.lab.LoadData(ctx)
	if err != nil {
		h.log.Error("mcp analytics load", "error", err)
		return nil, mcp.NewToolResultError("analytics load failed: " + err.Error())
	}
	if data == nil {
		return nil, mcp.NewToolResultError("no analytics data available")
	}
	return data, nil
}

func (h *handlers) exerciseStat(ctx context.Context, req mcp.CallToolRequest) (*models.ExerciseStat, *mcp.CallToolResult) {
	exerciseID, err := req.RequireString("exercise")
	if err != nil {
		return nil, mcp.NewToolResultError("exercise parameter is required")
	}

	data, errResult := h.loadedData(ctx)
	if errResult != nil {
		return nil, errResult
	}

	for i := range data.ExerciseStats {
		if data.ExerciseStats[i].ExerciseID == exerciseID {
			return &data.ExerciseStats[i], nil
		}
	}
	return nil, mcp.NewToolResultError("no data for exercise " + exerciseID)
}

func findE1RMSeries(data *models.ForgeLabData, exerciseID string) []analytics.SeriesPoint {
	for i := range data.ExerciseStats {
		if data.ExerciseStats[i].ExerciseID == exerciseID {
			return e1rmSeries(&data.ExerciseStats[i])
		}
	}
	return nil
}

func e1rmSeries(stat *models.ExerciseStat) []analytics.SeriesPoint {
	series := make([]analytics.SeriesPoint, 0, len(stat.E1RMHistory))
	for _, p := range stat.E1RMHistory {
		series = append(series, analytics.SeriesPoint{Date: p.Date, Value: p.E1RM})
	}
	return series
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
