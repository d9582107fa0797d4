package controllers

import (
	"net/http"

	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
)

type AnnouncementController struct {
	announcements *services.AnnouncementService
}

func NewAnnouncementController(announcements *services.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{announcements: announcements}
}

func (ctl *AnnouncementController) List(c *gin.Context) {
	rows, err := ctl.announcements.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch announcements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

func (ctl *AnnouncementController) UnseenCount(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	count, err := ctl.announcements.UnseenCount(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err, "Failed to fetch unseen count")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (ctl *AnnouncementController) MarkSeen(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if _, err := ctl.announcements.MarkAllSeen(c.Request.Context(), principal.ID); err != nil {
		respondError(c, err, "Failed to mark announcements as seen")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All announcements marked as seen"})
}

func (ctl *AnnouncementController) Create(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req services.AnnouncementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Title and content are required"})
		return
	}

	a, err := ctl.announcements.Create(c.Request.Context(), principal.ID, req)
	if err != nil {
		respondError(c, err, "Failed to create announcement")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": a})
}

func (ctl *AnnouncementController) Delete(c *gin.Context) {
	if err := ctl.announcements.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete announcement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Announcement deleted"})
}
