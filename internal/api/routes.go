package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// Session
	router.POST("/session/", handler.GoogleLogin)
	router.DELETE("/session/", handler.RequireUser(), handler.DeleteSession)

	// Users
	user := router.Group("/user", handler.RequireUser())
	{
		user.GET("/current/", handler.GetCurrentUser)
		user.GET("/", handler.RequireAdmin(), handler.GetUsers)
		user.POST("/", handler.RequireAdmin(), handler.CreateUser)
		user.PUT("/:id/", handler.RequireAdmin(), handler.UpdateUser)
		user.DELETE("/:id/", handler.RequireAdmin(), handler.DeleteUser)
	}

	// Admin settings
	admin := router.Group("/admin", handler.RequireUser())
	{
		admin.GET("/settings/district", handler.GetDistricts)
		admin.POST("/settings/district", handler.RequireAdmin(), handler.CreateDistrict)
		admin.PUT("/settings/district/:id", handler.RequireAdmin(), handler.UpdateDistrict)

		admin.GET("/settings/moodle", handler.GetMoodleSettings)
		admin.POST("/settings/moodle", handler.RequireAdmin(), handler.CreateMoodleSetting)
		admin.PUT("/settings/moodle/:id", handler.RequireAdmin(), handler.UpdateMoodleSetting)

		admin.GET("/reports/course-builds", handler.RequireAdmin(), handler.ExportCourseBuilds)
	}

	// Moodle
	moodle := router.Group("/moodle", handler.RequireUser())
	{
		moodle.POST("/course/build/", handler.RequireManager(), handler.CreateCourseBuild)
		moodle.GET("/user/", handler.GetMoodleUser)
	}
}
