package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicsync-web/forms"
	"civicsync-web/middlewares"
	"civicsync-web/services"
	"civicsync-web/session"
	"civicsync-web/views"
)

// UserController serves the signed-in user's profile and password pages.
type UserController struct {
	sessions *session.Manager
	views    *views.Renderer
	log      *zap.Logger
}

func NewUserController(sessions *session.Manager, v *views.Renderer, log *zap.Logger) *UserController {
	return &UserController{sessions: sessions, views: v, log: log}
}

// GetMe renders the profile form prefilled with the cached user.
func (u *UserController) GetMe(c *gin.Context) {
	s := middlewares.CurrentSession(c)
	u.views.Render(c, http.StatusOK, "profile", page(c, "Profile", gin.H{"Form": forms.ProfileFromUser(s.User)}))
}

func (u *UserController) UpdateMe(c *gin.Context) {
	s := middlewares.CurrentSession(c)

	var form forms.ProfileForm
	_ = c.ShouldBind(&form)
	update, err := form.Validate()
	if err != nil {
		u.views.Render(c, http.StatusBadRequest, "profile", page(c, "Profile", gin.H{"Form": form, "Error": err.Error()}))
		return
	}

	user, err := u.sessions.UpdateProfile(c.Request.Context(), s, update)
	if err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(u.log, c, "update profile failed", err)
		u.views.Render(c, failureStatus(err), "profile", page(c, "Profile", gin.H{
			"Form":  form,
			"Error": services.Message(err, "Failed to update profile"),
		}))
		return
	}
	u.views.Render(c, http.StatusOK, "profile", page(c, "Profile", gin.H{
		"User":   user,
		"Form":   forms.ProfileFromUser(user),
		"Notice": "Profile updated",
	}))
}

func (u *UserController) ChangePasswordPage(c *gin.Context) {
	u.views.Render(c, http.StatusOK, "change_password", page(c, "Change password", nil))
}

func (u *UserController) ChangePassword(c *gin.Context) {
	s := middlewares.CurrentSession(c)

	var form forms.PasswordForm
	_ = c.ShouldBind(&form)
	change, err := form.Validate()
	if err != nil {
		u.views.Render(c, http.StatusBadRequest, "change_password", page(c, "Change password", gin.H{"Error": err.Error()}))
		return
	}

	if err := u.sessions.ChangePassword(c.Request.Context(), s, change); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(u.log, c, "change password failed", err)
		u.views.Render(c, failureStatus(err), "change_password", page(c, "Change password", gin.H{
			"Error": services.Message(err, "Failed to change password"),
		}))
		return
	}
	redirectWithMessage(c, "/profile", "notice", "Password changed")
}
