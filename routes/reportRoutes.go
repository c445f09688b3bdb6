package routes

import (
	"github.com/gin-gonic/gin"

	"civicsync-web/controllers"
)

// ReportRoutes sets up the report pages. limiter caps new submissions.
func ReportRoutes(r *gin.Engine, guard, limiter gin.HandlerFunc, reports *controllers.ReportController) {
	report := r.Group("/", guard)
	{
		report.GET("/dashboard", reports.GetAllReports)
		report.GET("/my-reports", reports.GetReportsByUser)
		report.GET("/heatmap", reports.Heatmap)

		report.GET("/report", reports.NewReportPage)
		report.POST("/report", limiter, reports.CreateReport)
		report.GET("/report/:id/edit", reports.EditReportPage)
		report.POST("/report/:id/edit", reports.UpdateReport)
		report.POST("/report/:id/delete", reports.DeleteReport)

		report.GET("/reports/:id", reports.GetReport)
		report.POST("/reports/:id/upvote", reports.UpvoteReport)
		report.POST("/reports/:id/comments", reports.AddComment)
		report.POST("/comments/:id/edit", reports.UpdateComment)
		report.POST("/comments/:id/delete", reports.DeleteComment)
	}
}
