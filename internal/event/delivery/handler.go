package delivery

import (
	"net/http"
	"strconv"

	"mailpilot-backend/internal/event/usecase"

	"github.com/gin-gonic/gin"
)

type ProcessHandler struct {
	runner *usecase.Runner
}

func NewProcessHandler(runner *usecase.Runner) *ProcessHandler {
	return &ProcessHandler{
		runner: runner,
	}
}

// ProcessNow runs the pipeline for the authenticated user over the manual
// trailing window and returns the per-thread outcomes.
func (h *ProcessHandler) ProcessNow(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	result, err := h.runner.RunForUser(c.Request.Context(), userID, h.runner.ManualOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ProcessAll runs the scheduled pipeline over every connected user. Guarded
// by the cron secret, for external schedulers that cannot keep a process
// alive between runs.
func (h *ProcessHandler) ProcessAll(c *gin.Context) {
	results, err := h.runner.RunAll(c.Request.Context(), h.runner.ScheduledOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// RecentRuns returns the trailing run history, newest first.
func (h *ProcessHandler) RecentRuns(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.runner.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": logs})
}
