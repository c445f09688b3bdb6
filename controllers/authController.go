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

// AuthController serves the public account pages and logout.
type AuthController struct {
	sessions *session.Manager
	auth     *services.AuthService
	cookies  middlewares.CookieSettings
	views    *views.Renderer
	log      *zap.Logger
}

func NewAuthController(sessions *session.Manager, auth *services.AuthService, cookies middlewares.CookieSettings, v *views.Renderer, log *zap.Logger) *AuthController {
	return &AuthController{sessions: sessions, auth: auth, cookies: cookies, views: v, log: log}
}

func (a *AuthController) LoginPage(c *gin.Context) {
	a.views.Render(c, http.StatusOK, "login", page(c, "Log in", gin.H{"Form": forms.LoginForm{}}))
}

// LoginUser handles user login
func (a *AuthController) LoginUser(c *gin.Context) {
	var form forms.LoginForm
	_ = c.ShouldBind(&form)

	fail := func(status int, msg string) {
		form.Password = ""
		a.views.Render(c, status, "login", page(c, "Log in", gin.H{"Form": form, "Error": msg}))
	}

	if err := form.Validate(); err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}

	s, err := a.sessions.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		status := services.StatusCode(err)
		if status == 0 {
			a.log.Error("login failed", zap.Error(err))
			status = http.StatusBadGateway
		}
		fail(status, services.Message(err, "Login failed"))
		return
	}

	middlewares.SetSessionCookie(c, a.cookies, s.ID)
	if s.IsAdmin() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// LogoutUser discards the stored token, clears the cookie and returns to /login.
func (a *AuthController) LogoutUser(c *gin.Context) {
	sessionID := middlewares.SessionID(c, a.cookies)
	if err := a.sessions.Logout(c.Request.Context(), sessionID); err != nil {
		a.log.Warn("logout failed", zap.Error(err))
	}
	middlewares.ClearSessionCookie(c, a.cookies)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (a *AuthController) RegisterPage(c *gin.Context) {
	a.views.Render(c, http.StatusOK, "register", page(c, "Register", gin.H{"Form": forms.RegisterForm{}}))
}

// RegisterUser handles user registration
func (a *AuthController) RegisterUser(c *gin.Context) {
	var form forms.RegisterForm
	_ = c.ShouldBind(&form)

	render := func(status int, data gin.H) {
		form.Password, form.Confirm = "", ""
		data["Form"] = form
		a.views.Render(c, status, "register", page(c, "Register", data))
	}

	reg, err := form.Validate()
	if err != nil {
		render(http.StatusBadRequest, gin.H{"Error": err.Error()})
		return
	}

	if _, err := a.auth.Register(c.Request.Context(), reg); err != nil {
		logAPIError(a.log, c, "register failed", err)
		render(failureStatus(err), gin.H{"Error": services.Message(err, "Something went wrong. Try again.")})
		return
	}
	render(http.StatusCreated, gin.H{"Notice": "Registration successful! Please verify your email before logging in."})
}

// VerifyEmail confirms the address behind the emailed token.
func (a *AuthController) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		a.views.Render(c, http.StatusBadRequest, "message", page(c, "Verify email", gin.H{
			"Error":      "Verification link is invalid or incomplete",
			"ShowResend": true,
		}))
		return
	}

	res, err := a.auth.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		logAPIError(a.log, c, "verify email failed", err)
		a.views.Render(c, failureStatus(err), "message", page(c, "Verify email", gin.H{
			"Error":      services.Message(err, "Verification failed"),
			"ShowResend": true,
		}))
		return
	}
	a.views.Render(c, http.StatusOK, "message", page(c, "Email verified", gin.H{
		"Message": messageOr(res, "Your email has been verified. You can now log in."),
	}))
}

func (a *AuthController) ResendVerification(c *gin.Context) {
	var form forms.EmailForm
	_ = c.ShouldBind(&form)
	if err := form.Validate(); err != nil {
		a.views.Render(c, http.StatusBadRequest, "message", page(c, "Verify email", gin.H{"Error": err.Error(), "ShowResend": true}))
		return
	}

	res, err := a.auth.ResendVerification(c.Request.Context(), form.Email)
	if err != nil {
		logAPIError(a.log, c, "resend verification failed", err)
		a.views.Render(c, failureStatus(err), "message", page(c, "Verify email", gin.H{
			"Error":      services.Message(err, "Could not resend the verification email"),
			"ShowResend": true,
		}))
		return
	}
	a.views.Render(c, http.StatusOK, "message", page(c, "Check your inbox", gin.H{
		"Message": messageOr(res, "A new verification email has been sent."),
	}))
}

func (a *AuthController) ForgotPasswordPage(c *gin.Context) {
	a.views.Render(c, http.StatusOK, "forgot_password", page(c, "Forgot password", gin.H{"Form": forms.EmailForm{}}))
}

func (a *AuthController) ForgotPassword(c *gin.Context) {
	var form forms.EmailForm
	_ = c.ShouldBind(&form)
	if err := form.Validate(); err != nil {
		a.views.Render(c, http.StatusBadRequest, "forgot_password", page(c, "Forgot password", gin.H{"Form": form, "Error": err.Error()}))
		return
	}

	res, err := a.auth.ForgotPassword(c.Request.Context(), form.Email)
	if err != nil {
		logAPIError(a.log, c, "forgot password failed", err)
		a.views.Render(c, failureStatus(err), "forgot_password", page(c, "Forgot password", gin.H{
			"Form":  form,
			"Error": services.Message(err, "Failed to send reset link"),
		}))
		return
	}
	a.views.Render(c, http.StatusOK, "forgot_password", page(c, "Forgot password", gin.H{
		"Form":   forms.EmailForm{},
		"Notice": messageOr(res, "If that email is registered, a reset link is on its way."),
	}))
}

func (a *AuthController) ResetPasswordPage(c *gin.Context) {
	form := forms.ResetPasswordForm{Token: c.Query("token")}
	a.views.Render(c, http.StatusOK, "reset_password", page(c, "Reset password", gin.H{"Form": form}))
}

func (a *AuthController) ResetPassword(c *gin.Context) {
	var form forms.ResetPasswordForm
	_ = c.ShouldBind(&form)
	if form.Token == "" {
		form.Token = c.Query("token")
	}
	if err := form.Validate(); err != nil {
		form.Password = ""
		a.views.Render(c, http.StatusBadRequest, "reset_password", page(c, "Reset password", gin.H{"Form": form, "Error": err.Error()}))
		return
	}

	if _, err := a.auth.ResetPassword(c.Request.Context(), form.Token, form.Password); err != nil {
		logAPIError(a.log, c, "reset password failed", err)
		form.Password = ""
		a.views.Render(c, failureStatus(err), "reset_password", page(c, "Reset password", gin.H{
			"Form":  form,
			"Error": services.Message(err, "Failed to reset password"),
		}))
		return
	}
	redirectWithMessage(c, "/login", "notice", "Password has been reset. You can now log in.")
}

// failureStatus maps an upstream failure onto the status of the re-rendered page.
func failureStatus(err error) int {
	if status := services.StatusCode(err); status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}

func messageOr(res services.MessageResponse, fallback string) string {
	if res.Msg != "" {
		return res.Msg
	}
	return fallback
}
