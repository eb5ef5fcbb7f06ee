package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mindsetu-api/internal/middleware"
	"github.com/noah-isme/mindsetu-api/internal/models"
	"github.com/noah-isme/mindsetu-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Assignment *AssignmentHandler
	Dashboard  *DashboardHandler
	Journal    *JournalHandler
	Reports    *ReportHandler
}

// RegisterRoutes mounts the API surface under the configured prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authSvc *service.AuthService) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
	}

	// download is authenticated by the signed token itself
	api.GET("/reports/download/:token", h.Reports.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		users := authed.Group("/users")
		{
			users.GET("", middleware.RequireRoles(models.UserTypeSuperAdmin), h.Users.List)
			users.POST("/students", middleware.RequireRoles(models.UserTypeTeacher, models.UserTypeSuperAdmin), h.Users.AddStudent)
			users.POST("/teachers", middleware.RequireRoles(models.UserTypeSuperAdmin), h.Users.AddTeacher)
		}

		assignments := authed.Group("/assignments")
		{
			assignments.POST("", middleware.RequireRoles(models.UserTypeTeacher, models.UserTypeSuperAdmin), h.Assignment.Create)
			assignments.GET("", h.Assignment.List)
			assignments.GET("/feed", middleware.RequireRoles(models.UserTypeStudent), h.Assignment.Feed)
			assignments.POST("/:id/submissions", middleware.RequireRoles(models.UserTypeStudent), h.Assignment.Submit)
		}

		authed.GET("/submissions", middleware.RequireRoles(models.UserTypeStudent), h.Assignment.MySubmissions)
		authed.GET("/submissions/institute", middleware.RequireRoles(models.UserTypeTeacher, models.UserTypeSuperAdmin), h.Assignment.InstituteSubmissions)

		journal := authed.Group("/journal")
		{
			journal.POST("", middleware.RequireRoles(models.UserTypeStudent), h.Journal.AddEntry)
			journal.GET("", middleware.RequireRoles(models.UserTypeStudent), h.Journal.ListEntries)
		}

		dashboard := authed.Group("/dashboard")
		dashboard.Use(middleware.RequireRoles(models.UserTypeTeacher, models.UserTypeSuperAdmin))
		{
			dashboard.GET("", h.Dashboard.Overview)
			dashboard.GET("/stats", h.Dashboard.Stats)
			dashboard.GET("/system", h.Dashboard.SystemStatus)
		}

		reports := authed.Group("/reports")
		reports.Use(middleware.RequireRoles(models.UserTypeTeacher, models.UserTypeSuperAdmin))
		{
			reports.POST("", h.Reports.Create)
			reports.GET("/:id", h.Reports.Status)
		}
	}
}
