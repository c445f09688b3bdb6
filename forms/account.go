package forms

import (
	"strings"

	"civicsync-web/models"
)

type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

func (f *LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return firstError(f, messages{
		"Email":    "Enter a valid email",
		"Password": "Enter your password",
	})
}

// RegisterForm checks run in the same order the sign-up page reports them:
// confirmation, mobile, then password strength.
type RegisterForm struct {
	Name     string `form:"name" json:"name" validate:"required"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Confirm  string `form:"confirm" json:"confirm" validate:"eqfield=Password"`
	Mobile   string `form:"mobile" json:"mobile" validate:"mobile"`
	Password string `form:"password" json:"password" validate:"strongpwd"`
}

var passwordRule = "Password must be at least 6 characters and include uppercase, lowercase, and a number"

func (f *RegisterForm) Validate() (models.Registration, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Mobile = strings.TrimSpace(f.Mobile)
	err := firstError(f, messages{
		"Name":     "Enter your name",
		"Email":    "Enter a valid email",
		"Confirm":  "Passwords do not match",
		"Mobile":   "Mobile number must be exactly 10 digits",
		"Password": passwordRule,
	})
	if err != nil {
		return models.Registration{}, err
	}
	return models.Registration{Name: f.Name, Email: f.Email, Mobile: f.Mobile, Password: f.Password}, nil
}

type ProfileForm struct {
	Name   string `form:"name" json:"name" validate:"required"`
	Mobile string `form:"mobile" json:"mobile" validate:"omitempty,mobile"`
	Bio    string `form:"bio" json:"bio" validate:"max=500"`
}

func (f *ProfileForm) Validate() (models.ProfileUpdate, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Mobile = strings.TrimSpace(f.Mobile)
	err := firstError(f, messages{
		"Name":   "Enter your name",
		"Mobile": "Mobile number must be exactly 10 digits.",
		"Bio":    "Bio must be at most 500 characters",
	})
	if err != nil {
		return models.ProfileUpdate{}, err
	}
	return models.ProfileUpdate{Name: f.Name, Mobile: f.Mobile, Bio: f.Bio}, nil
}

func ProfileFromUser(u *models.User) ProfileForm {
	return ProfileForm{Name: u.Name, Mobile: u.Mobile, Bio: u.Bio}
}

type PasswordForm struct {
	CurrentPassword string `form:"currentPassword" json:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword" json:"newPassword" validate:"strongpwd"`
	Confirm         string `form:"confirm" json:"confirm" validate:"eqfield=NewPassword"`
}

func (f *PasswordForm) Validate() (models.PasswordChange, error) {
	err := firstError(f, messages{
		"CurrentPassword": "Enter your current password",
		"NewPassword":     "New password must be at least 6 characters and include uppercase, lowercase, and a number",
		"Confirm":         "New passwords do not match",
	})
	if err != nil {
		return models.PasswordChange{}, err
	}
	return models.PasswordChange{CurrentPassword: f.CurrentPassword, NewPassword: f.NewPassword}, nil
}

type EmailForm struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

func (f *EmailForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return firstError(f, messages{"Email": "Enter a valid email"})
}

type ResetPasswordForm struct {
	Token    string `form:"token" json:"token" validate:"required"`
	Password string `form:"password" json:"password" validate:"strongpwd"`
}

func (f *ResetPasswordForm) Validate() error {
	return firstError(f, messages{
		"Token":    "Reset link is invalid or incomplete",
		"Password": passwordRule,
	})
}

type CommentForm struct {
	Text string `form:"text" json:"text" validate:"required,max=1000"`
}

func (f *CommentForm) Validate() error {
	f.Text = strings.TrimSpace(f.Text)
	return firstError(f, messages{
		"Text.required": "Comment cannot be empty",
		"Text.max":      "Comment is too long",
	})
}
