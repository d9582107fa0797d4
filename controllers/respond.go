package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"hostel-complaint-api/middleware"
	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Anything unrecognised is
// a 500 with fallback as the message; internals are only logged.
func respondError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	var transitionErr *services.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": validationErr.Error(),
			"field":   validationErr.Field,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success":            false,
			"message":            transitionErr.Error(),
			"currentStatus":      transitionErr.From,
			"allowedTransitions": transitionErr.Allowed,
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrComplaintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Complaint not found"})
	case errors.Is(err, services.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Notification not found"})
	case errors.Is(err, services.ErrAnnouncementNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Announcement not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
	case errors.Is(err, services.ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Image not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
	default:
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
		services.ReportError("api", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": fallback})
	}
}

func requirePrincipal(c *gin.Context) (services.Principal, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
	}
	return principal, ok
}

func queryInt(c *gin.Context, key string, fallback, min, max int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil || v < min || v > max {
		return fallback
	}
	return v
}

func queryBool(c *gin.Context, key string) bool {
	v := strings.TrimSpace(c.Query(key))
	return v == "1" || strings.EqualFold(v, "true")
}
