package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicsync-web/controllers"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Guard      gin.HandlerFunc
	AdminGuard gin.HandlerFunc
	Limiter    gin.HandlerFunc
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Reports    *controllers.ReportController
	Admin      *controllers.AdminController
}

// Register mounts every page on r. Unknown paths go to /login.
func Register(r *gin.Engine, h Handlers) {
	AuthRoutes(r, h.Auth)
	UserRoutes(r, h.Guard, h.User)
	ReportRoutes(r, h.Guard, h.Limiter, h.Reports)
	AdminRoutes(r, h.AdminGuard, h.Admin)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})
}
