package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"hostel-complaint-api/models"
	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
)

// ComplaintController serves the student complaint endpoints.
type ComplaintController struct {
	engine     *services.LifecycleEngine
	complaints services.ComplaintStore
	uploader   *services.ImageUploader
}

func NewComplaintController(engine *services.LifecycleEngine, complaints services.ComplaintStore, uploader *services.ImageUploader) *ComplaintController {
	return &ComplaintController{engine: engine, complaints: complaints, uploader: uploader}
}

func (ctl *ComplaintController) MyComplaints(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	complaints, err := ctl.complaints.List(c.Request.Context(), services.ComplaintFilter{UserID: principal.ID})
	if err != nil {
		respondError(c, err, "Failed to fetch complaints")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(complaints), "data": complaints})
}

func (ctl *ComplaintController) GetComplaint(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	complaint, err := ctl.complaints.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch complaint")
		return
	}
	if complaint.UserID != principal.ID && !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to view this complaint"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaint})
}

// CreateComplaint accepts multipart form data: title, description, an optional
// JSON availability array and up to three "images" files.
func (ctl *ComplaintController) CreateComplaint(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	input := services.NewComplaintInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if raw := strings.TrimSpace(c.PostForm("availability")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Availability); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "availability must be a JSON array of {date, startTime, endTime}", "field": "availability"})
			return
		}
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}

	ctx := c.Request.Context()
	keys, err := ctl.uploader.SaveAll(ctx, files)
	if err != nil {
		respondError(c, err, "Failed to store images")
		return
	}
	input.Images = keys

	complaint, err := ctl.engine.Create(ctx, principal, input)
	if err != nil {
		ctl.uploader.Discard(ctx, keys)
		respondError(c, err, "Failed to create complaint")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Complaint submitted successfully",
		"data":    complaint,
	})
}

// complaintSummary is the admin listing row with the owner snapshot grouped under student.
type complaintSummary struct {
	ID              string                          `json:"id"`
	Title           string                          `json:"title"`
	Description     string                          `json:"description"`
	Status          models.ComplaintStatus          `json:"status"`
	Hostel          string                          `json:"hostel"`
	RoomNumber      string                          `json:"roomNumber"`
	Images          []string                        `json:"images"`
	Availability    []models.AvailabilitySlot       `json:"availability"`
	RejectionReason *string                         `json:"rejectionReason,omitempty"`
	RejectedAt      *time.Time                      `json:"rejectedAt,omitempty"`
	DateSubmitted   time.Time                       `json:"dateSubmitted"`
	UpdatedAt       time.Time                       `json:"updatedAt"`
	StatusHistory   []models.ComplaintStatusHistory `json:"statusHistory"`
	Student         studentSnapshot                 `json:"student"`
}

type studentSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Hostel     string `json:"hostel"`
	RoomNumber string `json:"roomNumber"`
}

func summarize(c *models.Complaint) complaintSummary {
	s := complaintSummary{
		ID:              c.ComplaintID,
		Title:           c.Title,
		Description:     c.Description,
		Status:          c.Status,
		Hostel:          c.Hostel,
		RoomNumber:      c.RoomNumber,
		Images:          c.Images,
		Availability:    c.Availability,
		RejectionReason: c.RejectionReason,
		RejectedAt:      c.RejectedAt,
		DateSubmitted:   c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		StatusHistory:   c.StatusHistory,
		Student: studentSnapshot{
			ID:         c.UserID,
			Name:       c.UserName,
			Email:      c.UserEmail,
			Hostel:     c.Hostel,
			RoomNumber: c.RoomNumber,
		},
	}
	if s.Images == nil {
		s.Images = []string{}
	}
	if s.Availability == nil {
		s.Availability = []models.AvailabilitySlot{}
	}
	return s
}
