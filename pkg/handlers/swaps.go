package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateSwap opens a swap request for an assignment.
func (h *Handler) CreateSwap(c *gin.Context) {
	var req struct {
		AssignmentID         uint   `json:"assignment_id" binding:"required"`
		SuggestedVolunteerID *uint  `json:"suggested_volunteer_id"`
		Reason               string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := h.claims(c)
	request, err := h.Engine.Swaps.Create(req.AssignmentID, claims.VolunteerID, req.SuggestedVolunteerID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"swap_request": request})
}

// ApproveSwap approves a pending request and removes its assignment.
func (h *Handler) ApproveSwap(c *gin.Context) {
	requestID, ok := paramID(c, "id")
	if !ok {
		return
	}

	claims := h.claims(c)
	request, err := h.Engine.Swaps.Approve(requestID, claims.VolunteerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"swap_request": request})
}

// DenySwap denies a pending request, leaving the assignment in place.
func (h *Handler) DenySwap(c *gin.Context) {
	requestID, ok := paramID(c, "id")
	if !ok {
		return
	}

	claims := h.claims(c)
	request, err := h.Engine.Swaps.Deny(requestID, claims.VolunteerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"swap_request": request})
}

// ListPendingSwaps lists an event's unresolved swap requests.
func (h *Handler) ListPendingSwaps(c *gin.Context) {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	requests, err := h.Engine.Swaps.ListPending(eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"swap_requests": requests})
}
