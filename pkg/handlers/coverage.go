package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCoverage returns the zones-by-sessions fill matrix for a department.
func (h *Handler) GetCoverage(c *gin.Context) {
	departmentID, ok := paramID(c, "departmentId")
	if !ok {
		return
	}

	matrix, err := h.Engine.Coverage.DepartmentMatrix(departmentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// GetGaps returns the unfilled cells of a department's matrix.
func (h *Handler) GetGaps(c *gin.Context) {
	departmentID, ok := paramID(c, "departmentId")
	if !ok {
		return
	}

	gaps, err := h.Engine.Coverage.Gaps(departmentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gaps": gaps})
}

// GetScheduleGrid returns the event-wide zone/session grid with fill totals.
func (h *Handler) GetScheduleGrid(c *gin.Context) {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	grid, err := h.Engine.Coverage.ScheduleGrid(eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

// GetSessionSummary returns the zones still needing coverage in a session.
func (h *Handler) GetSessionSummary(c *gin.Context) {
	sessionID, ok := paramID(c, "sessionId")
	if !ok {
		return
	}

	summary, err := h.Engine.Coverage.SessionSummary(sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
