package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"workorder_dashboard/internal/upstream"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
)

// parseLogQuery reads limit/offset/level/step with bounds. The filters only
// reach the pull API; the live buffer is returned whole.
func parseLogQuery(c *gin.Context) upstream.LogQuery {
	q := upstream.LogQuery{
		Limit: defaultLogLimit,
		Level: strings.TrimSpace(c.Query("level")),
		Step:  strings.TrimSpace(c.Query("step")),
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxLogLimit {
			q.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			q.Offset = v
		}
	}
	return q
}

// @Summary      Effective logs for a work order
// @Description  Returns the live buffer when non-empty, else a historical page from the pull API, else events synthesized from step history.
// @Tags         logs
// @Produce      json
// @Param        id      path   string  true   "Work order id"
// @Param        limit   query  int     false  "Page size for the historical fallback (max 500)"
// @Param        offset  query  int     false  "Page offset for the historical fallback"
// @Param        level   query  string  false  "Level filter"  Enums(debug,info,warning,error)
// @Param        step    query  string  false  "Step filter"
// @Success      200  {object}  map[string]interface{}  "count, events"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/workorders/{id}/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	id := c.Param("id")
	events, err := h.services.Overlay.EffectiveLogs(c.Request.Context(), id, parseLogQuery(c))
	if err != nil {
		if h.log != nil {
			h.log.Errorw("effective_logs_failed", "work_order_id", id, "err", err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Clear buffered logs and progress
// @Description  Empties the live buffer and resets progress without touching the connection.
// @Tags         logs
// @Produce      json
// @Param        id  path  string  true  "Work order id"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/workorders/{id}/logs [delete]
func (h *Handler) clearLogs(c *gin.Context) {
	id := c.Param("id")
	h.services.Streams.Clear(id)
	c.JSON(http.StatusOK, gin.H{"work_order_id": id, "status": "cleared"})
}

// @Summary      Effective progress for a work order
// @Description  Live progress when the stream has data, otherwise a summary replayed from step history. Both paths keep progress_pct within [0,100].
// @Tags         progress
// @Produce      json
// @Param        id  path  string  true  "Work order id"
// @Success      200  {object}  models.LiveProgress
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/workorders/{id}/progress [get]
func (h *Handler) getProgress(c *gin.Context) {
	id := c.Param("id")
	progress, err := h.services.Overlay.EffectiveProgress(c.Request.Context(), id)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("effective_progress_failed", "work_order_id", id, "err", err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load progress"})
		return
	}
	c.JSON(http.StatusOK, progress)
}
