package routes

import (
	"github.com/gin-gonic/gin"

	"civicsync-web/controllers"
)

// AdminRoutes is guarded by the admin-only variant of the session check.
func AdminRoutes(r *gin.Engine, adminGuard gin.HandlerFunc, admin *controllers.AdminController) {
	panel := r.Group("/admin", adminGuard)
	{
		panel.GET("", admin.GetAdminPanel)
		panel.GET("/reports/:id/reject", admin.RejectPage)
		panel.POST("/reports/:id/status", admin.UpdateReportStatus)
	}
}
