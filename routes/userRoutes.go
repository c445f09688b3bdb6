package routes

import (
	"github.com/gin-gonic/gin"

	"civicsync-web/controllers"
)

func UserRoutes(r *gin.Engine, guard gin.HandlerFunc, user *controllers.UserController) {
	profile := r.Group("/", guard)
	{
		profile.GET("/profile", user.GetMe)
		profile.POST("/profile", user.UpdateMe)
		profile.GET("/change-password", user.ChangePasswordPage)
		profile.POST("/change-password", user.ChangePassword)
	}
}
