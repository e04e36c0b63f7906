package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// CreateAssignment creates one assignment within an event.
func (h *Handler) CreateAssignment(c *gin.Context) {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	var input models.AssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.Engine.Assignments.Create(eventID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// BulkCreateAssignments creates a validated batch, all-or-nothing.
func (h *Handler) BulkCreateAssignments(c *gin.Context) {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	var input models.BulkAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Engine.Assignments.BulkCreate(eventID, input.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignments": created, "count": len(created)})
}

// ListAssignments lists an event's live assignments in display order.
func (h *Handler) ListAssignments(c *gin.Context) {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	assignments, err := h.Engine.Assignments.ListForEvent(eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// RemoveAssignment soft-deletes an assignment.
func (h *Handler) RemoveAssignment(c *gin.Context) {
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Engine.Assignments.Remove(assignmentID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment removed"})
}

// MySchedule lists the calling volunteer's assignments by session start.
func (h *Handler) MySchedule(c *gin.Context) {
	claims := h.claims(c)
	assignments, err := h.Engine.Assignments.ListForVolunteer(claims.VolunteerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// SetAvailability upserts a volunteer's availability for a session.
func (h *Handler) SetAvailability(c *gin.Context) {
	var req struct {
		VolunteerID uint                      `json:"volunteer_id" binding:"required"`
		SessionID   uint                      `json:"session_id" binding:"required"`
		Status      models.AvailabilityStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.Engine.Availability.Set(req.VolunteerID, req.SessionID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": record})
}

// ListSessionAvailability lists explicit availability records for a session.
func (h *Handler) ListSessionAvailability(c *gin.Context) {
	sessionID, ok := paramID(c, "sessionId")
	if !ok {
		return
	}

	records, err := h.Engine.Availability.ListForSession(sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": records})
}
