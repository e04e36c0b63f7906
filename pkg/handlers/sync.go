package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// FullSync returns the complete live snapshot for an event.
func (h *Handler) FullSync(c *gin.Context) {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	snapshot, err := h.Engine.Sync.Full(eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// DeltaSync returns changes since the client's cursor timestamp.
func (h *Handler) DeltaSync(c *gin.Context) {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	since, err := time.Parse(time.RFC3339, c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
		return
	}

	delta, err := h.Engine.Sync.Delta(eventID, since)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, delta)
}

// ProcessActions replays a batch of offline client actions.
func (h *Handler) ProcessActions(c *gin.Context) {
	var req struct {
		VolunteerID uint                  `json:"volunteer_id" binding:"required"`
		Actions     []models.QueuedAction `json:"actions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.Engine.Sync.ProcessQueue(req.VolunteerID, req.Actions)
	c.JSON(http.StatusOK, result)
}
