// Package mcp exposes the Forge Lab analytics as MCP tools so LLM clients
// can query strength curves, volume trends and rank projections directly.
package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/forgelab/internal/forgelab"
	"github.com/claude/forgelab/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(lab *forgelab.Cache, db *storage.DB, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("ForgeLab", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Forge Lab training analytics server. Query derived strength curves, weekly volume, muscle-group stimulus, rank projections and correlations computed from logged workout sessions."),
	)

	h := &handlers{lab: lab, db: db, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetStrengthCurve, Handler: h.getStrengthCurve},
		server.ServerTool{Tool: toolGetVolumeTrend, Handler: h.getVolumeTrend},
		server.ServerTool{Tool: toolGetMuscleVolume, Handler: h.getMuscleVolume},
		server.ServerTool{Tool: toolGetRankProjection, Handler: h.getRankProjection},
		server.ServerTool{Tool: toolGetExerciseCorrelation, Handler: h.getExerciseCorrelation},
		server.ServerTool{Tool: toolSetDateRange, Handler: h.setDateRange},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resSnapshot, Handler: h.snapshot},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	lab *forgelab.Cache
	db  *storage.DB
	log *slog.Logger
}

// --- Resource definitions ---

var resSnapshot = mcp.NewResource(
	"forgelab://snapshot",
	"Forge Lab Snapshot",
	mcp.WithResourceDescription("The full derived analytics dataset for the active date range: weight history, per-exercise stats, and weekly muscle-group volume"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) snapshot(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.lab.Snapshot().Data == nil {
		if _, err := h.lab.LoadData(ctx); err != nil {
			h.log.Error("mcp snapshot load", "error", err)
		}
	}
	return jsonResource(req.Params.URI, h.lab.Snapshot())
}
