package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"hostel-complaint-api/models"
	"hostel-complaint-api/services"
	"hostel-complaint-api/utils"

	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type rejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

// AdminController serves the admin complaint, analytics and student endpoints.
type AdminController struct {
	engine     *services.LifecycleEngine
	complaints services.ComplaintStore
	analytics  *services.AnalyticsAggregator
	students   *services.StudentService
	activity   services.ActivityLogger
}

func NewAdminController(engine *services.LifecycleEngine, complaints services.ComplaintStore, analytics *services.AnalyticsAggregator, students *services.StudentService, activity services.ActivityLogger) *AdminController {
	if activity == nil {
		activity = services.NopActivityLogger{}
	}
	return &AdminController{engine: engine, complaints: complaints, analytics: analytics, students: students, activity: activity}
}

func (ctl *AdminController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Admin routes are operational"})
}

func (ctl *AdminController) Analytics(c *gin.Context) {
	snapshot, err := ctl.analytics.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compute analytics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snapshot})
}

// ListComplaints returns every complaint newest-first, optionally filtered by ?status= and ?userId=.
func (ctl *AdminController) ListComplaints(c *gin.Context) {
	filter := services.ComplaintFilter{UserID: strings.TrimSpace(c.Query("userId"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := utils.ParseComplaintStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": fmt.Sprintf("unknown status %q", raw)})
			return
		}
		filter.Status = status
	}

	complaints, err := ctl.complaints.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to fetch complaints")
		return
	}

	rows := make([]complaintSummary, 0, len(complaints))
	for i := range complaints {
		rows = append(rows, summarize(&complaints[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(rows), "complaints": rows})
}

func (ctl *AdminController) UpdateStatus(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "status is required"})
		return
	}
	target, ok := utils.ParseComplaintStatus(req.Status)
	if !ok {
		target = models.ComplaintStatus(strings.TrimSpace(req.Status))
	}

	complaint, err := ctl.engine.Transition(c.Request.Context(), principal, c.Param("id"), target)
	if err != nil {
		respondError(c, err, "Failed to update complaint status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Complaint status updated to %q", complaint.Status),
		"data":    summarize(complaint),
	})
}

func (ctl *AdminController) Reject(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "rejectionReason is required"})
		return
	}

	complaint, err := ctl.engine.Reject(c.Request.Context(), principal, c.Param("id"), req.RejectionReason)
	if err != nil {
		respondError(c, err, "Failed to reject complaint")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Complaint rejected",
		"data":    summarize(complaint),
	})
}

// Activity returns the audit trail of one complaint, oldest first. Empty when the
// activity log is not configured.
func (ctl *AdminController) Activity(c *gin.Context) {
	ctx := c.Request.Context()
	complaint, err := ctl.complaints.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch complaint activity")
		return
	}

	entries, err := ctl.activity.ForComplaint(ctx, complaint.ComplaintID)
	if err != nil {
		respondError(c, &services.DependencyError{Op: "load activity", Err: err}, "Failed to fetch complaint activity")
		return
	}
	if entries == nil {
		entries = []models.ActivityLog{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries), "data": entries})
}

func (ctl *AdminController) ListStudents(c *gin.Context) {
	students, err := ctl.students.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch students")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(students), "data": students})
}

func (ctl *AdminController) StudentDetail(c *gin.Context) {
	detail, err := ctl.students.Detail(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		respondError(c, err, "Failed to fetch student details")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}
