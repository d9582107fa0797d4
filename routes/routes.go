package routes

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"hostel-complaint-api/config"
	"hostel-complaint-api/controllers"
	"hostel-complaint-api/middleware"
	"hostel-complaint-api/models"
	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Dependencies bundles the controllers and middleware the router needs.
type Dependencies struct {
	Auth          *middleware.Authenticator
	Accounts      *controllers.AuthController
	Complaints    *controllers.ComplaintController
	Admin         *controllers.AdminController
	Notifications *controllers.NotificationController
	Announcements *controllers.AnnouncementController
	Images        *controllers.ImageController

	RateLimitPerSec int
	LogAccessToken  string
}

var registerRules sync.Once

// RegisterBindingRules adds the custom validation tags to gin's binding validator.
func RegisterBindingRules() {
	registerRules.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Println("Warning: gin binding validator is not validator/v10; custom rules not registered")
			return
		}
		services.RegisterValidationRules(v)
	})
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	RegisterBindingRules()

	limit := func() gin.HandlerFunc {
		return middleware.RateLimit(deps.RateLimitPerSec, 2*time.Second)
	}
	requireAuth := middleware.AuthMiddleware(deps.Auth)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Hostel Complaint API is running"})
	})

	if deps.LogAccessToken != "" {
		router.GET("/logs", serveLogs(deps.LogAccessToken))
	}

	auth := router.Group("/auth")
	{
		auth.POST("/register", limit(), deps.Accounts.Register)
		auth.POST("/login", limit(), deps.Accounts.Login)
		auth.GET("/me", requireAuth, deps.Accounts.Me)
	}

	// Images accept the token as a query parameter so <img> tags can load them.
	router.GET("/uploads/complaints/:filename", middleware.QueryTokenAuth(deps.Auth), deps.Images.Serve)

	api := router.Group("/api")
	api.Use(requireAuth)
	{
		complaints := api.Group("/complaints")
		{
			complaints.GET("/my", deps.Complaints.MyComplaints)
			complaints.GET("/:id", deps.Complaints.GetComplaint)
			complaints.POST("", middleware.RequireRole(models.RoleStudent), limit(), deps.Complaints.CreateComplaint)
		}

		admin := api.Group("/admin")
		admin.Use(adminOnly)
		{
			admin.GET("/health", deps.Admin.Health)
			admin.GET("/analytics", deps.Admin.Analytics)
			admin.GET("/complaints", deps.Admin.ListComplaints)
			admin.PUT("/complaints/:id/status", deps.Admin.UpdateStatus)
			admin.PUT("/complaints/:id/reject", deps.Admin.Reject)
			admin.GET("/complaints/:id/activity", deps.Admin.Activity)
			admin.GET("/students", deps.Admin.ListStudents)
			admin.GET("/students/:studentId", deps.Admin.StudentDetail)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", deps.Notifications.List)
			notifications.GET("/unread-count", deps.Notifications.UnreadCount)
			notifications.PUT("/read-all", deps.Notifications.MarkAllRead)
			notifications.PUT("/:id/read", deps.Notifications.MarkRead)
		}

		announcements := api.Group("/announcements")
		{
			announcements.GET("", deps.Announcements.List)
			announcements.GET("/unseen-count", deps.Announcements.UnseenCount)
			announcements.PUT("/mark-seen", deps.Announcements.MarkSeen)
			announcements.POST("", adminOnly, deps.Announcements.Create)
			announcements.DELETE("/:id", adminOnly, deps.Announcements.Delete)
		}
	}

	// Browsers cannot set headers on websocket upgrades.
	router.GET("/api/notifications/stream", middleware.QueryTokenAuth(deps.Auth), deps.Notifications.Stream)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
}

func serveLogs(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	}
}
