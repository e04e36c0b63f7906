package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes builds the full route table.
func (h *Handler) Routes() *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Volunteer Staffing Coordination API",
			"version": "1.0.0",
		})
	})

	r.POST("/login", h.Login)

	// Overseer endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware(), h.RequireAdmin())
	{
		admin.POST("/events/:eventId/assignments", h.CreateAssignment)
		admin.POST("/events/:eventId/assignments/bulk", h.BulkCreateAssignments)
		admin.GET("/events/:eventId/assignments", h.ListAssignments)
		admin.DELETE("/assignments/:id", h.RemoveAssignment)

		admin.GET("/departments/:departmentId/coverage", h.GetCoverage)
		admin.GET("/departments/:departmentId/gaps", h.GetGaps)
		admin.GET("/events/:eventId/grid", h.GetScheduleGrid)
		admin.GET("/sessions/:sessionId/summary", h.GetSessionSummary)

		admin.POST("/assignments/:id/checkin", h.AdminCheckIn)
		admin.POST("/assignments/:id/noshow", h.MarkNoShow)
		admin.DELETE("/checkins/:id", h.DeleteCheckIn)
		admin.POST("/sessions/:sessionId/attendance", h.RecordAttendance)
		admin.PUT("/sessions/:sessionId/attendance", h.UpdateAttendance)
		admin.DELETE("/sessions/:sessionId/attendance", h.DeleteAttendance)
		admin.GET("/sessions/:sessionId/attendance", h.GetAttendanceSummary)

		admin.POST("/swaps", h.CreateSwap)
		admin.POST("/swaps/:id/approve", h.ApproveSwap)
		admin.POST("/swaps/:id/deny", h.DenySwap)
		admin.GET("/events/:eventId/swaps", h.ListPendingSwaps)

		admin.PUT("/availability", h.SetAvailability)
		admin.GET("/sessions/:sessionId/availability", h.ListSessionAvailability)
	}

	// Volunteer endpoints
	me := r.Group("/me")
	me.Use(h.AuthMiddleware(), h.RequireVolunteer())
	{
		me.GET("/schedule", h.MySchedule)
		me.POST("/checkin", h.CheckIn)
		me.POST("/checkout", h.CheckOut)
		me.POST("/swaps", h.CreateSwap)
	}

	// Mobile sync endpoints, authenticated by device key
	sync := r.Group("/sync")
	sync.Use(h.DeviceKeyMiddleware())
	{
		sync.GET("/events/:eventId/full", h.FullSync)
		sync.GET("/events/:eventId/delta", h.DeltaSync)
		sync.POST("/actions", h.ProcessActions)
	}

	return r
}
