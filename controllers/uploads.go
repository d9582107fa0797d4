package controllers

import (
	"errors"
	"net/http"
	"path/filepath"

	"hostel-complaint-api/services"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// ImageController serves stored complaint photos to their owner and to admins.
type ImageController struct {
	complaints services.ComplaintStore
	storage    services.ImageStorage
}

func NewImageController(complaints services.ComplaintStore, storage services.ImageStorage) *ImageController {
	return &ImageController{complaints: complaints, storage: storage}
}

func (ctl *ImageController) Serve(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	filename := c.Param("filename")
	if filename == "" || filename != filepath.Base(filename) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Image not found"})
		return
	}

	ctx := c.Request.Context()
	if !principal.IsAdmin() {
		owner, err := ctl.complaints.ImageOwner(ctx, filename)
		if errors.Is(err, services.ErrComplaintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Image not found"})
			return
		}
		if err != nil {
			respondError(c, err, "Failed to load image")
			return
		}
		if owner != principal.ID {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
			return
		}
	}

	data, err := ctl.storage.Load(ctx, filename)
	if err != nil {
		respondError(c, err, "Failed to load image")
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
