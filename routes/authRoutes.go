package routes

import (
	"github.com/gin-gonic/gin"

	"civicsync-web/controllers"
)

// AuthRoutes sets up the public account pages. They never run the session check.
func AuthRoutes(r *gin.Engine, auth *controllers.AuthController) {
	r.GET("/login", auth.LoginPage)
	r.POST("/login", auth.LoginUser)
	r.GET("/register", auth.RegisterPage)
	r.POST("/register", auth.RegisterUser)
	r.GET("/verify-email", auth.VerifyEmail)
	r.POST("/verify-email/resend", auth.ResendVerification)
	r.GET("/forgot-password", auth.ForgotPasswordPage)
	r.POST("/forgot-password", auth.ForgotPassword)
	r.GET("/reset-password", auth.ResetPasswordPage)
	r.POST("/reset-password", auth.ResetPassword)
	r.POST("/logout", auth.LogoutUser)
}
