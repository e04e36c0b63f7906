package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calebreyes/staffing-api-go/pkg/engine"
)

// CheckIn checks the calling volunteer in to their next open assignment.
func (h *Handler) CheckIn(c *gin.Context) {
	claims := h.claims(c)
	checkIn, err := h.Engine.Attendance.CheckInVolunteer(claims.VolunteerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"check_in": checkIn})
}

// CheckOut completes the calling volunteer's active check-in.
func (h *Handler) CheckOut(c *gin.Context) {
	claims := h.claims(c)
	checkIn, err := h.Engine.Attendance.CheckOutVolunteer(claims.VolunteerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"check_in": checkIn})
}

// AdminCheckIn checks in any assignment on a volunteer's behalf.
func (h *Handler) AdminCheckIn(c *gin.Context) {
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		At           *time.Time `json:"at"`
		OverrideLate *bool      `json:"override_late"`
		Notes        string     `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := engine.AdminCheckInOptions{OverrideLate: req.OverrideLate, Notes: req.Notes}
	if req.At != nil {
		opts.At = *req.At
	}

	checkIn, err := h.Engine.Attendance.AdminCheckIn(assignmentID, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"check_in": checkIn})
}

// MarkNoShow records a terminal no-show for an assignment.
func (h *Handler) MarkNoShow(c *gin.Context) {
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, err := h.Engine.Attendance.MarkNoShow(assignmentID, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"check_in": checkIn})
}

// DeleteCheckIn removes a check-in record.
func (h *Handler) DeleteCheckIn(c *gin.Context) {
	checkInID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Engine.Attendance.DeleteCheckIn(checkInID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check-in deleted"})
}

// RecordAttendance stores a session's aggregate headcount, once.
func (h *Handler) RecordAttendance(c *gin.Context) {
	sessionID, ok := paramID(c, "sessionId")
	if !ok {
		return
	}

	var req struct {
		Count int    `json:"count" binding:"min=0"`
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := h.claims(c)
	record, err := h.Engine.Attendance.RecordAttendance(sessionID, req.Count, req.Notes, claims.VolunteerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attendance": record})
}

// UpdateAttendance corrects a session's recorded headcount.
func (h *Handler) UpdateAttendance(c *gin.Context) {
	sessionID, ok := paramID(c, "sessionId")
	if !ok {
		return
	}

	var req struct {
		Count int    `json:"count" binding:"min=0"`
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.Engine.Attendance.UpdateAttendance(sessionID, req.Count, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": record})
}

// DeleteAttendance removes a session's recorded headcount.
func (h *Handler) DeleteAttendance(c *gin.Context) {
	sessionID, ok := paramID(c, "sessionId")
	if !ok {
		return
	}

	if err := h.Engine.Attendance.DeleteAttendance(sessionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance deleted"})
}

// GetAttendanceSummary reports per-assignment attendance states plus the
// recorded headcount for a session.
func (h *Handler) GetAttendanceSummary(c *gin.Context) {
	sessionID, ok := paramID(c, "sessionId")
	if !ok {
		return
	}

	summary, err := h.Engine.Attendance.SessionAttendanceSummary(sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
