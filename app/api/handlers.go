package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/sources"
)

const recordTimeout = 5 * time.Second

func NewHandler(registry *sources.Registry, generator GeneratorInterface, runs database.RunStore, version string) *Handler {
	return &Handler{
		registry:  registry,
		generator: generator,
		runs:      runs,
		version:   version,
	}
}

func (h *Handler) ListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":          "欢迎来到极简RSS服务演示！",
		"availableSources": h.registry.IDs(),
		"instructions":     "通过访问 /rss/{sourceId} 来获取特定的Feed内容。",
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	id := c.Param("id")

	src, ok := h.registry.Get(id)
	if !ok {
		c.String(http.StatusNotFound, "错误：RSS源 '%s' 未找到。可用源：%s", id, strings.Join(h.registry.IDs(), ", "))
		return
	}

	start := time.Now()
	out, err := src.Generate(c.Request.Context())
	if err != nil {
		slog.Error("Feed generation error", "source", id, "error", err)
		h.recordRun(id, start, nil, err)
		c.String(http.StatusInternalServerError, "服务器内部错误！")
		return
	}

	rss, err := h.generator.Run(out)
	if err != nil {
		slog.Error("RSS generation error", "source", id, "error", err)
		h.recordRun(id, start, nil, err)
		c.String(http.StatusInternalServerError, "服务器内部错误！")
		return
	}

	h.recordRun(id, start, out, nil)

	c.Header("X-Feed-Items", strconv.Itoa(len(out.Items)))
	c.Header("X-Feed-Source", id)
	c.Header("X-Feed-Degraded", strconv.FormatBool(out.Degraded))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(rss))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   h.registry.Len(),
		"run_log":   h.runs != nil,
	}

	if h.runs != nil {
		if runCount, err := h.runs.GetRunCount(c.Request.Context()); err == nil {
			health["runs"] = runCount
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run log disabled"})
		return
	}

	stats, err := h.runs.GetSourceStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_source_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	sourceStats := make([]map[string]interface{}, 0, len(stats))
	for _, s := range stats {
		sourceStats = append(sourceStats, map[string]interface{}{
			"source":           s.SourceID,
			"runs":             s.Runs,
			"ok":               s.OK,
			"degraded":         s.Degraded,
			"failed":           s.Failed,
			"last_run_at":      s.LastRunAt.In(time.Local).Format(time.RFC3339),
			"last_status":      s.LastStatus,
			"average_duration": s.AverageDuration.String(),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sourceStats,
		"total":   len(sourceStats),
	})
}

func (h *Handler) GetIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "RSS Press",
		"version":     h.version,
		"description": "On-demand RSS feeds for publications without one",
		"endpoints": map[string]string{
			"sources": "/rss",
			"feed":    "/rss/<id>",
			"health":  "/health",
			"stats":   "/stats",
		},
	})
}

// recordRun stores run metadata. Failures are logged and never reach the client.
func (h *Handler) recordRun(sourceID string, start time.Time, out *feed.Feed, runErr error) {
	if h.runs == nil {
		return
	}

	run := database.Run{
		SourceID:  sourceID,
		StartedAt: start,
		Duration:  time.Since(start),
		Status:    database.RunStatusOK,
	}

	switch {
	case runErr != nil:
		run.Status = database.RunStatusFailed
		run.Error = runErr.Error()
	case out.Degraded:
		run.Status = database.RunStatusDegraded
		run.ItemCount = len(out.Items)
		if len(out.Items) > 0 {
			run.Error = out.Items[0].Title
		}
	default:
		run.ItemCount = len(out.Items)
	}

	// Detached from the request so a disconnected client still gets its run logged.
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := h.runs.RecordRun(ctx, run); err != nil {
		slog.Warn("Failed to record run", "source", sourceID, "error", err)
	}
}
